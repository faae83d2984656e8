package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"

	"tsdoclint/internal/config"
)

func cacheEnabled(cfg *config.Config) bool {
	if cfg == nil {
		return false
	}
	if cfg.Analysis.Cache.Enabled == nil {
		return false
	}
	return *cfg.Analysis.Cache.Enabled
}

func resolveCacheDir(rootPath string, cfg *config.Config) string {
	baseDir := rootPath
	if info, err := os.Stat(rootPath); err == nil && !info.IsDir() {
		baseDir = filepath.Dir(rootPath)
	}
	cacheDir := cfg.Analysis.Cache.Dir
	if cacheDir == "" {
		cacheDir = ".tsdoc_cache"
	}
	if !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(baseDir, cacheDir)
	}
	return cacheDir
}

// computeCacheVersions derives cache invalidation keys from the sources that
// define extraction behavior. The grammar version hashes go.mod, which pins
// the Tree-sitter grammar modules; the extractor version hashes the walker
// itself. Either changing makes every cached entry stale.
func computeCacheVersions(rootPath string) cacheVersions {
	// Prefer locating the repo root by walking up from this source file.
	repoRoot := findRepoRootForCache()
	if repoRoot == "" {
		repoRoot = rootPath
		if info, err := os.Stat(rootPath); err == nil && !info.IsDir() {
			repoRoot = filepath.Dir(rootPath)
		}
	}
	grammarVersion := hashFileIfExists(filepath.Join(repoRoot, "go.mod"))
	extractorVersion := hashFilesIfExist(
		filepath.Join(repoRoot, "internal", "extractor", "extractor.go"),
		filepath.Join(repoRoot, "internal", "extractor", "walk.go"),
	)

	if grammarVersion == "" {
		grammarVersion = "unknown"
	}
	if extractorVersion == "" {
		extractorVersion = "unknown"
	}

	return cacheVersions{grammar: grammarVersion, extractor: extractorVersion}
}

func findRepoRootForCache() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	dir := filepath.Dir(file)
	for {
		candidate := filepath.Join(dir, "internal", "extractor", "walk.go")
		if _, err := os.Stat(candidate); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func hashFileIfExists(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	h, err := hashFile(path)
	if err != nil {
		return ""
	}
	return h
}

func hashFilesIfExist(paths ...string) string {
	h := sha256.New()
	found := false
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		found = true
		h.Write([]byte(path))
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
	}
	if !found {
		return ""
	}
	return hex.EncodeToString(h.Sum(nil))
}
