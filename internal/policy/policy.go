package policy

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/open-policy-agent/opa/rego"

	"tsdoclint/internal/facts"
)

// The rule modules ship inside the binary. Edits to them change RulesHash,
// which invalidates any cached policy results.
//
//go:embed rules/*.rego
var ruleModules embed.FS

// Engine evaluates the documentation rules against fact tables.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
}

// Violation is a single rule finding.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	File     string `json:"file"`
	Line     int    `json:"line"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

// Result contains the evaluation results.
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts by severity.
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Input is the data structure passed to OPA.
type Input struct {
	Tables facts.Tables      `json:"tables"`
	Rules  map[string]string `json:"rules"`
}

// New compiles the embedded rule modules into prepared queries.
func New() (*Engine, error) {
	engine := &Engine{
		queries: make(map[string]rego.PreparedEvalQuery),
	}

	var modules []func(*rego.Rego)
	err := fs.WalkDir(ruleModules, "rules", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		content, readErr := ruleModules.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", path, readErr)
		}
		modules = append(modules, rego.Module(path, string(content)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading rule modules: %w", err)
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("no rule modules embedded")
	}

	// Prepare query for all_violations
	opts := append(modules, rego.Query("data.tsdoc.policy.all_violations"))
	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	engine.queries["violations"] = query

	// Prepare query for summary
	opts = append(modules, rego.Query("data.tsdoc.policy.summary"))
	query, err = rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing summary query: %w", err)
	}
	engine.queries["summary"] = query

	// Prepare query for the rule name/default-severity table
	opts = append(modules, rego.Query("data.tsdoc.policy.default_severities"))
	query, err = rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing defaults query: %w", err)
	}
	engine.queries["defaults"] = query

	return engine, nil
}

// Evaluate runs the rules against the input tables.
func (e *Engine) Evaluate(input Input) (*Result, error) {
	ctx := context.Background()

	// Convert input to map for OPA
	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	result := &Result{Violations: []Violation{}}

	// Get violations
	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		violations, ok := rs[0].Expressions[0].Value.([]interface{})
		if ok {
			for _, v := range violations {
				vmap, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				violation := Violation{
					Rule:     getString(vmap, "rule"),
					Severity: getString(vmap, "severity"),
					File:     getString(vmap, "file"),
					Line:     getInt(vmap, "line"),
					Name:     getString(vmap, "name"),
					Message:  getString(vmap, "message"),
				}
				result.Violations = append(result.Violations, violation)
			}
		}
	}

	// Rego sets carry no order; sort here so output is stable across runs.
	sort.Slice(result.Violations, func(i, j int) bool {
		a, b := result.Violations[i], result.Violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Name < b.Name
	})

	// Get summary
	rs, err = e.queries["summary"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating summary: %w", err)
	}

	if len(rs) > 0 && len(rs[0].Expressions) > 0 {
		smap, ok := rs[0].Expressions[0].Value.(map[string]interface{})
		if ok {
			result.Summary = Summary{
				TotalViolations: getInt(smap, "total_violations"),
				Errors:          getInt(smap, "errors"),
				Warnings:        getInt(smap, "warnings"),
				Info:            getInt(smap, "info"),
			}
		}
	}

	return result, nil
}

// Rules returns the known rule names mapped to their default severities.
func (e *Engine) Rules() (map[string]string, error) {
	rs, err := e.queries["defaults"].Eval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("evaluating rule defaults: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, fmt.Errorf("rule defaults query returned nothing")
	}
	raw, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("rule defaults query returned %T", rs[0].Expressions[0].Value)
	}
	rules := make(map[string]string, len(raw))
	for name := range raw {
		rules[name] = getString(raw, name)
	}
	return rules, nil
}

// RuleNames returns the known rule names, sorted.
func (e *Engine) RuleNames() ([]string, error) {
	rules, err := e.Rules()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// RulesHash returns a digest over the embedded rule modules.
func RulesHash() (string, error) {
	var names []string
	err := fs.WalkDir(ruleModules, "rules", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		names = append(names, path)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("rules hash walk: %w", err)
	}
	sort.Strings(names)

	hasher := sha256.New()
	for _, name := range names {
		data, err := ruleModules.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("rules hash read: %w", err)
		}
		if _, err := hasher.Write([]byte(name)); err != nil {
			return "", fmt.Errorf("rules hash: %w", err)
		}
		if _, err := hasher.Write([]byte{0}); err != nil {
			return "", fmt.Errorf("rules hash: %w", err)
		}
		if _, err := hasher.Write(data); err != nil {
			return "", fmt.Errorf("rules hash: %w", err)
		}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Helper functions
func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case json.Number:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
