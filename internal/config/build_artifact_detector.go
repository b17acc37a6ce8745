// Build artifact detection from project configuration files.
// Parses pyproject.toml, setup.cfg and package.json to find output
// directories that must never enter analysis.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// StaticArtifactDirs are directory names always skipped during file
// discovery, independent of project configuration.
var StaticArtifactDirs = map[string]bool{
	"__pycache__":     true,
	"node_modules":    true,
	"venv":            true,
	"env":             true,
	"build":           true,
	"dist":            true,
	"site-packages":   true,
	"htmlcov":         true,
	"target":          true,
}

// BuildArtifactDetector finds project-specific build output directories
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories scans for build configuration files and
// returns glob patterns to exclude (e.g. "**/dist/**").
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string
	patterns = append(patterns, bad.detectPythonOutputs()...)
	patterns = append(patterns, bad.detectJavaScriptOutputs()...)
	return patterns
}

type pyprojectFile struct {
	Tool struct {
		Poetry struct {
			Packages []struct {
				From string `toml:"from"`
			} `toml:"packages"`
		} `toml:"poetry"`
		Setuptools struct {
			BuildDir string `toml:"build_dir"`
		} `toml:"setuptools"`
		Pytest struct {
			IniOptions struct {
				CacheDir string `toml:"cache_dir"`
			} `toml:"ini_options"`
		} `toml:"pytest"`
	} `toml:"tool"`
}

// detectPythonOutputs finds Python packaging outputs
func (bad *BuildArtifactDetector) detectPythonOutputs() []string {
	var patterns []string

	pyproject := filepath.Join(bad.projectRoot, "pyproject.toml")
	if data, err := os.ReadFile(pyproject); err == nil {
		var parsed pyprojectFile
		if toml.Unmarshal(data, &parsed) == nil {
			// Packaging present at all means wheel/sdist outputs may exist
			patterns = append(patterns, "**/*.egg-info/**")
			if dir := parsed.Tool.Setuptools.BuildDir; dir != "" {
				patterns = append(patterns, dirPattern(dir))
			}
			if dir := parsed.Tool.Pytest.IniOptions.CacheDir; dir != "" {
				patterns = append(patterns, dirPattern(dir))
			}
		}
	}

	// Legacy setuptools projects put artifacts in build/ and dist/
	if _, err := os.Stat(filepath.Join(bad.projectRoot, "setup.py")); err == nil {
		patterns = append(patterns, "**/build/**", "**/dist/**", "**/*.egg-info/**")
	}

	return patterns
}

// detectJavaScriptOutputs covers mixed repos that carry a JS toolchain
// next to the analyzed Python sources
func (bad *BuildArtifactDetector) detectJavaScriptOutputs() []string {
	var patterns []string

	packageJSON := filepath.Join(bad.projectRoot, "package.json")
	data, err := os.ReadFile(packageJSON)
	if err != nil {
		return nil
	}
	var pkg map[string]interface{}
	if json.Unmarshal(data, &pkg) != nil {
		return nil
	}

	patterns = append(patterns, "**/node_modules/**")
	if main, ok := pkg["main"].(string); ok {
		if dir := strings.SplitN(main, "/", 2)[0]; dir != "" && dir != "." && !strings.Contains(dir, ".") {
			patterns = append(patterns, dirPattern(dir))
		}
	}
	for _, key := range []string{"dist", "build", "out"} {
		if _, err := os.Stat(filepath.Join(bad.projectRoot, key)); err == nil {
			patterns = append(patterns, dirPattern(key))
		}
	}

	return patterns
}

func dirPattern(dir string) string {
	dir = strings.Trim(strings.TrimSpace(dir), "/")
	if dir == "" {
		return ""
	}
	return "**/" + dir + "/**"
}
