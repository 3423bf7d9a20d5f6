// Package transform applies config-driven bronze-to-silver column
// transformations: optional deduplication, ordered column mappings through a
// registry of named transforms, derived fields, and final schema
// enforcement. Changing a mapping means editing YAML, not engine code.
package transform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is a parsed entity mapping document.
type Config struct {
	Entities map[string]EntityConfig `yaml:"entities"`
}

// EntityConfig holds one logical entity's mapping configuration.
type EntityConfig struct {
	CDMSchema   string         `yaml:"cdm_schema"`
	Description string         `yaml:"description"`
	Bronze      BronzeConfig   `yaml:"bronze"`
	Mappings    Mappings       `yaml:"mappings"`
	Derived     []DerivedField `yaml:"derived"`
}

// BronzeConfig carries the optional dedup instruction for raw input: keep,
// per DedupKey partition, the row with the greatest DedupOrder value.
type BronzeConfig struct {
	DedupKey   string `yaml:"dedup_key"`
	DedupOrder string `yaml:"dedup_order"`
}

// FieldMapping describes how one target field is produced. An empty Source
// fills the field with Default; an empty Transform passes the source column
// through unchanged; FallbackSources feed composite transforms.
type FieldMapping struct {
	Source          string   `yaml:"source"`
	Transform       string   `yaml:"transform"`
	Default         any      `yaml:"default"`
	FallbackSources []string `yaml:"fallback_sources"`
}

// DerivedField computes an extra field from an already-mapped column via the
// derived-transform registry.
type DerivedField struct {
	Name      string `yaml:"name"`
	From      string `yaml:"from"`
	Transform string `yaml:"transform"`
}

// Mappings is an order-preserving targetField -> FieldMapping map. Mapping
// order drives output column construction order, so the YAML document order
// is kept.
type Mappings struct {
	order  []string
	byName map[string]FieldMapping
}

// UnmarshalYAML decodes a YAML mapping node keeping key order.
func (m *Mappings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("transform: mappings: expected a mapping node, got %v", node.Kind)
	}
	m.order = nil
	m.byName = make(map[string]FieldMapping, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var fm FieldMapping
		if err := node.Content[i+1].Decode(&fm); err != nil {
			return fmt.Errorf("transform: mapping %q: %w", key, err)
		}
		if _, dup := m.byName[key]; dup {
			return fmt.Errorf("transform: duplicate mapping %q", key)
		}
		m.order = append(m.order, key)
		m.byName[key] = fm
	}
	return nil
}

// Fields returns the target field names in document order.
func (m Mappings) Fields() []string { return append([]string(nil), m.order...) }

// Get returns the mapping for a target field.
func (m Mappings) Get(name string) (FieldMapping, bool) {
	fm, ok := m.byName[name]
	return fm, ok
}

// Len returns the number of mappings.
func (m Mappings) Len() int { return len(m.order) }

// LoadConfig reads and parses an entity mapping YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transform: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses entity mapping YAML.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("transform: parse config: %w", err)
	}
	return &cfg, nil
}
