package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codescore/internal/config"
	"github.com/standardbeagle/codescore/internal/types"
)

const dupSourceA = `def load(path):
    with open(path) as f:
        data = f.read()
    lines = data.splitlines()
    result = []
    for line in lines:
        line = line.strip()
        if not line:
            continue
        result.append(line)
    return result
`

// Same logic with renamed locals and an extra statement
const dupSourceB = `def load(path):
    with open(path) as f:
        data = f.read()
    lines = data.splitlines()
    result = []
    for line in lines:
        line = line.strip()
        if not line:
            continue
        result.append(line)
    result.sort()
    return result
`

const distinctSource = `class Registry:
    def __init__(self):
        self._items = {}

    def register(self, key, value):
        self._items[key] = value

    def lookup(self, key):
        return self._items.get(key)

    def remove(self, key):
        self._items.pop(key, None)
`

func dupConfig() *config.Config {
	cfg := config.Default()
	cfg.Analysis.MinDuplicateLines = 5
	return cfg
}

func sourceFile(path, content string) types.SourceFile {
	lines := strings.Count(content, "\n")
	return types.SourceFile{Path: path, Name: path, Content: content, CodeLines: lines}
}

func TestSimilarityRatioIdentical(t *testing.T) {
	lines := normalizeLines(dupSourceA)
	ratio, matched := SimilarityRatio(lines, lines)
	assert.Equal(t, 1.0, ratio)
	assert.Equal(t, len(lines), matched)
}

func TestSimilarityRatioSymmetric(t *testing.T) {
	a := normalizeLines(dupSourceA)
	b := normalizeLines(dupSourceB)
	abRatio, _ := SimilarityRatio(a, b)
	baRatio, _ := SimilarityRatio(b, a)
	assert.InDelta(t, abRatio, baRatio, 0.001)
	assert.Greater(t, abRatio, 0.9)
}

func TestSimilarityRatioDisjoint(t *testing.T) {
	ratio, matched := SimilarityRatio(
		normalizeLines(dupSourceA),
		normalizeLines(distinctSource),
	)
	assert.Less(t, ratio, 0.3)
	assert.Less(t, matched, 3)
}

func TestDuplicateBackendFindsNearDuplicate(t *testing.T) {
	backend := NewDuplicateBackend(dupConfig())
	result, err := backend.Analyze(context.Background(), []types.SourceFile{
		sourceFile("a.py", dupSourceA),
		sourceFile("b.py", dupSourceB),
		sourceFile("c.py", distinctSource),
	})
	require.NoError(t, err)

	require.Len(t, result.Duplicates, 1)
	block := result.Duplicates[0]
	assert.Greater(t, block.Similarity, 0.9)
	assert.NotEmpty(t, block.ID)
	assert.NotEmpty(t, block.Preview)
	assert.Greater(t, block.LineCount, 5)

	require.Len(t, block.Locations, 2)
	assert.Equal(t, "a.py", block.Locations[0].FilePath)
	assert.Equal(t, "b.py", block.Locations[1].FilePath)
	assert.Equal(t, 1, block.Locations[0].StartLine)
	assert.Equal(t, 11, block.Locations[0].EndLine)
}

func TestDuplicateBackendSkipsSmallFiles(t *testing.T) {
	cfg := dupConfig()
	cfg.Analysis.MinDuplicateLines = 50

	backend := NewDuplicateBackend(cfg)
	result, err := backend.Analyze(context.Background(), []types.SourceFile{
		sourceFile("a.py", dupSourceA),
		sourceFile("b.py", dupSourceB),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Duplicates)
	assert.Equal(t, 0.0, result.Metrics["duplicates.candidate_files"])
}

func TestDuplicateBackendNoFalsePositive(t *testing.T) {
	backend := NewDuplicateBackend(dupConfig())
	result, err := backend.Analyze(context.Background(), []types.SourceFile{
		sourceFile("a.py", dupSourceA),
		sourceFile("c.py", distinctSource),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Duplicates)
}

func TestDuplicateBackendCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := NewDuplicateBackend(dupConfig())
	_, err := backend.Analyze(ctx, []types.SourceFile{
		sourceFile("a.py", dupSourceA),
		sourceFile("b.py", dupSourceB),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeLines(t *testing.T) {
	lines := normalizeLines("  x = 1  \n\n\ty = 2\n   \n")
	assert.Equal(t, []string{"x = 1", "y = 2"}, lines)
}
