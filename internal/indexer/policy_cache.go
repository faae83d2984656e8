package indexer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tsdoclint/internal/config"
	"tsdoclint/internal/policy"
)

const policyCacheVersion = 1

type policyCacheEntry struct {
	Version    int           `json:"version"`
	ConfigHash string        `json:"config_hash"`
	Files      []string      `json:"files"`
	Result     policy.Result `json:"result"`
}

func loadPolicyCache(dir string) (*policyCacheEntry, error) {
	path := policyCachePath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entry policyCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parse policy cache: %w", err)
	}
	return &entry, nil
}

func savePolicyCache(dir string, entry policyCacheEntry) error {
	path := policyCachePath(dir)
	if err := writeJSONAtomic(path, entry); err != nil {
		return fmt.Errorf("write policy cache: %w", err)
	}
	return nil
}

func policyCachePath(dir string) string {
	return filepath.Join(dir, "policy_cache.json")
}

func policyCacheValid(entry *policyCacheEntry, cfg *config.Config, files []string) (bool, error) {
	if entry == nil {
		return false, nil
	}
	if entry.Version != policyCacheVersion {
		return false, nil
	}
	hash, err := policyConfigHash(cfg)
	if err != nil {
		return false, err
	}
	if entry.ConfigHash != hash {
		return false, nil
	}
	if len(entry.Files) != len(files) {
		return false, nil
	}
	for i := range files {
		if entry.Files[i] != files[i] {
			return false, nil
		}
	}
	return true, nil
}

// policyConfigHash covers everything besides file content that can change a
// policy result: rule overrides, the settings that shape the reflection
// tree, and the compiled rule modules themselves.
func policyConfigHash(cfg *config.Config) (string, error) {
	policyVersion, err := policy.RulesHash()
	if err != nil {
		return "", err
	}
	fileModules := false
	if cfg.FileModules != nil {
		fileModules = *cfg.FileModules
	}
	payload := struct {
		ProjectName   string            `json:"project_name"`
		FileModules   bool              `json:"file_modules"`
		Rules         map[string]string `json:"rules"`
		PolicyVersion string            `json:"policy_version"`
	}{
		ProjectName:   cfg.ProjectName,
		FileModules:   fileModules,
		Rules:         cfg.Lint.Rules,
		PolicyVersion: policyVersion,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal policy config hash: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
