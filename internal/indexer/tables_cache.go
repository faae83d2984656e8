package indexer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tsdoclint/internal/config"
	"tsdoclint/internal/facts"
)

const tablesCacheVersion = 1

type tablesCache struct {
	Version int          `json:"version"`
	Tables  facts.Tables `json:"tables"`
}

func loadTablesCache(dir string) (facts.Tables, bool, error) {
	path := filepath.Join(dir, "doc_tables.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return facts.Tables{}, false, nil
		}
		return facts.Tables{}, false, fmt.Errorf("read doc tables cache: %w", err)
	}
	var cache tablesCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return facts.Tables{}, false, fmt.Errorf("parse doc tables cache: %w", err)
	}
	if cache.Version != tablesCacheVersion {
		return facts.Tables{}, false, nil
	}
	return cache.Tables, true, nil
}

func saveTablesCache(dir string, tables facts.Tables) error {
	cache := tablesCache{
		Version: tablesCacheVersion,
		Tables:  tables,
	}
	if err := writeJSONAtomic(filepath.Join(dir, "doc_tables.json"), cache); err != nil {
		return fmt.Errorf("write doc tables cache: %w", err)
	}
	return nil
}

// CachedTables returns the doc tables saved by the last run over rootPath,
// without re-running the pipeline. The second return is false when caching is
// off or no snapshot exists yet.
func CachedTables(rootPath string, cfg *config.Config) (facts.Tables, bool, error) {
	if cfg == nil || !cacheEnabled(cfg) {
		return facts.Tables{}, false, nil
	}
	return loadTablesCache(resolveCacheDir(rootPath, cfg))
}
