package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"tsdoclint/internal/extractor"
)

const cacheIndexVersion = 1

type cacheEntry struct {
	ContentHash      string `json:"content_hash"`
	SourcePath       string `json:"source_path"`
	GrammarVersion   string `json:"grammar_version"`
	ExtractorVersion string `json:"extractor_version"`
}

type cacheIndex struct {
	Version int                   `json:"version"`
	Entries map[string]cacheEntry `json:"entries"`
}

// sourceCache stores per-file extraction results keyed by content hash, so
// unchanged files skip the parse entirely on the next run.
type sourceCache struct {
	dir              string
	grammarVersion   string
	extractorVersion string
	mu               sync.Mutex
	index            cacheIndex
}

func newSourceCache(dir, grammarVersion, extractorVersion string) *sourceCache {
	return &sourceCache{
		dir:              dir,
		grammarVersion:   grammarVersion,
		extractorVersion: extractorVersion,
		index: cacheIndex{
			Version: cacheIndexVersion,
			Entries: make(map[string]cacheEntry),
		},
	}
}

func (c *sourceCache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *sourceCache) sourcesDir() string {
	return filepath.Join(c.dir, "sources")
}

func (c *sourceCache) sourcePathForFile(filePath string) string {
	h := sha256.Sum256([]byte(filePath))
	return filepath.Join(c.sourcesDir(), hex.EncodeToString(h[:])+".json")
}

func (c *sourceCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("cache mkdir: %w", err)
	}
	path := c.indexPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache index: %w", err)
	}
	var idx cacheIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("parse cache index: %w", err)
	}
	if idx.Version != cacheIndexVersion {
		// Reset on version mismatch
		c.index = cacheIndex{Version: cacheIndexVersion, Entries: make(map[string]cacheEntry)}
		return nil
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]cacheEntry)
	}
	c.index = idx
	return nil
}

func (c *sourceCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeJSONAtomic(c.indexPath(), c.index)
}

func (c *sourceCache) Get(filePath, contentHash string) (extractor.FileSource, bool, error) {
	c.mu.Lock()
	entry, ok := c.index.Entries[filePath]
	c.mu.Unlock()
	if !ok {
		return extractor.FileSource{}, false, nil
	}
	if entry.ContentHash != contentHash {
		return extractor.FileSource{}, false, nil
	}
	if entry.GrammarVersion != c.grammarVersion || entry.ExtractorVersion != c.extractorVersion {
		return extractor.FileSource{}, false, nil
	}

	data, err := os.ReadFile(entry.SourcePath)
	if err != nil {
		return extractor.FileSource{}, false, fmt.Errorf("read cached source: %w", err)
	}
	var src extractor.FileSource
	if err := json.Unmarshal(data, &src); err != nil {
		return extractor.FileSource{}, false, fmt.Errorf("parse cached source: %w", err)
	}
	return src, true, nil
}

func (c *sourceCache) Put(filePath, contentHash string, src extractor.FileSource) error {
	sourcePath := c.sourcePathForFile(filePath)
	if err := os.MkdirAll(filepath.Dir(sourcePath), 0o755); err != nil {
		return fmt.Errorf("cache sources dir: %w", err)
	}
	if err := writeJSONAtomic(sourcePath, src); err != nil {
		return err
	}

	c.mu.Lock()
	c.index.Entries[filePath] = cacheEntry{
		ContentHash:      contentHash,
		SourcePath:       sourcePath,
		GrammarVersion:   c.grammarVersion,
		ExtractorVersion: c.extractorVersion,
	}
	c.mu.Unlock()
	return nil
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
