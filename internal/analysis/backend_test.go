package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescore/internal/config"
)

func TestBuildRegistryDefaultOrder(t *testing.T) {
	registry := BuildRegistry(config.Default())

	names := make([]string, 0, registry.Len())
	for _, b := range registry.Backends() {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"structural", "security-patterns", "security-tool", "deadcode-tool", "duplicates"}, names)
}

func TestBuildRegistryHonorsEnableFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.EnableSecurity = false
	cfg.Analysis.EnableDeadCode = false

	registry := BuildRegistry(cfg)
	require.Equal(t, 2, registry.Len())

	_, ok := registry.Get("security-patterns")
	assert.False(t, ok)
	_, ok = registry.Get("structural")
	assert.True(t, ok)
	_, ok = registry.Get("duplicates")
	assert.True(t, ok)
}

func TestBuildRegistryIgnoresUnknownNames(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.Backends = []string{"duplicates", "no-such-backend", "structural"}

	registry := BuildRegistry(cfg)
	require.Equal(t, 2, registry.Len())
	// Configured order wins over the default order
	assert.Equal(t, "duplicates", registry.Backends()[0].Name())
	assert.Equal(t, "structural", registry.Backends()[1].Name())
}

func TestRegistryRegisterDeduplicates(t *testing.T) {
	registry := NewRegistry()
	first := NewSecurityPatternBackend()
	registry.Register(first)
	registry.Register(NewSecurityPatternBackend())
	registry.Register(nil)

	require.Equal(t, 1, registry.Len())
	got, ok := registry.Get("security-patterns")
	require.True(t, ok)
	assert.Same(t, first, got)
}
