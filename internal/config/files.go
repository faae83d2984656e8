package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions the extractor can parse. Anything else is dropped from the
// include set even when a glob matches it.
var sourceExtensions = map[string]bool{
	".ts":  true,
	".tsx": true,
	".mts": true,
	".cts": true,
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// ResolveFiles expands the include globs relative to rootPath, drops
// excluded and unsupported files, and returns the sorted result.
func (c *Config) ResolveFiles(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)

	for _, pattern := range c.Include {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			// Silently skip invalid patterns
			continue
		}

		for _, match := range matches {
			if !sourceExtensions[strings.ToLower(filepath.Ext(match))] {
				continue
			}
			if c.excluded(match) {
				continue
			}
			fileSet[match] = true
		}
	}

	result := make([]string, 0, len(fileSet))
	for f := range fileSet {
		result = append(result, f)
	}
	sort.Strings(result)

	return result, nil
}

func (c *Config) excluded(path string) bool {
	for _, pattern := range c.Exclude {
		if matchesPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern matches a path against a glob pattern, with a few extra
// forms filepath.Match alone does not cover: a bare basename pattern
// matches any directory depth, and a "**/dir/**" pattern matches any path
// with that directory segment.
func matchesPattern(path, pattern string) bool {
	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	if strings.Contains(pattern, "**") {
		segment := strings.Trim(strings.ReplaceAll(pattern, "**", ""), "/")
		if segment != "" && !strings.ContainsAny(segment, "*?[") {
			if strings.Contains(path, string(filepath.Separator)+segment+string(filepath.Separator)) {
				return true
			}
		}
		if strings.HasPrefix(pattern, "**/") {
			if matched, _ := filepath.Match(strings.TrimPrefix(pattern, "**/"), filepath.Base(path)); matched {
				return true
			}
		}
	}
	return false
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}

	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := parts[1]
	if strings.HasPrefix(suffix, string(filepath.Separator)) {
		suffix = suffix[1:]
	}

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}

		if info.IsDir() {
			return nil
		}

		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}

		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}

		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	pattern = strings.TrimPrefix(pattern, string(filepath.Separator))

	// If pattern has no directory component, match against filename
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	// Also try matching just the suffix
	if len(path) > len(pattern) {
		suffix := path[len(path)-len(pattern):]
		matched, _ = filepath.Match(pattern, suffix)
		return matched
	}

	return false
}
