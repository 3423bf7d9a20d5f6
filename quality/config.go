// Package quality evaluates declarative data quality rules against silver
// datasets and produces structured reports. Rules are configured per
// logical entity; each rule is evaluated independently, and a broken rule
// becomes a failed result rather than aborting the batch.
package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleType names a quality check kind. Unknown types are preserved as-is
// and reported as failed results, keeping pipelines running on config
// typos.
type RuleType string

const (
	RuleNotNull      RuleType = "not_null"
	RuleUnique       RuleType = "unique"
	RuleReferential  RuleType = "referential"
	RuleRange        RuleType = "range"
	RuleLength       RuleType = "length"
	RulePattern      RuleType = "pattern"
	RuleCompleteness RuleType = "completeness"
)

// Severity classifies a failed rule.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Config is a parsed quality rule document.
type Config struct {
	Entities map[string]EntityRules `yaml:"entities"`
}

// EntityRules holds one logical entity's ordered rule list.
type EntityRules struct {
	Rules []Rule `yaml:"rules"`
}

// Rule is one declarative quality check. Min, Max, Threshold, Pattern and
// References apply per type; absent bounds are unbounded.
type Rule struct {
	Name       string     `yaml:"name"`
	Type       RuleType   `yaml:"type"`
	Column     string     `yaml:"column"`
	Severity   Severity   `yaml:"severity"`
	Min        *float64   `yaml:"min"`
	Max        *float64   `yaml:"max"`
	Threshold  *float64   `yaml:"threshold"`
	Pattern    string     `yaml:"pattern"`
	References *Reference `yaml:"references"`
}

// Reference names the entity/column a referential rule checks against.
type Reference struct {
	Entity string `yaml:"entity"`
	Column string `yaml:"column"`
}

// severity returns the rule's severity, defaulting to warning.
func (r Rule) severity() Severity {
	if r.Severity == "" {
		return SeverityWarning
	}
	return r.Severity
}

// LoadConfig reads and parses a quality rule YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("quality: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses quality rule YAML.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("quality: parse config: %w", err)
	}
	return &cfg, nil
}
