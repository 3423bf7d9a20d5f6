// Package cdm loads CDM .cdm.json entity definitions, resolves entity
// inheritance chains, and compiles canonical silver schemas from the result.
//
// Layout consumed:
//
//	cdm_schemas/
//	├── manifest.cdm.json           lists all in-scope entities
//	├── standard/                   standard CDM entities
//	│   └── Bank.cdm.json
//	└── extensions/                 org-specific extensions
//	    ├── BankExtended.cdm.json   extends standard/Bank.cdm.json/Bank
//	    └── KYCCheck.cdm.json       net-new custom entity
package cdm

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Document is a parsed .cdm.json schema document.
type Document struct {
	JSONSchemaSemanticVersion string       `json:"jsonSchemaSemanticVersion"`
	Definitions               []Definition `json:"definitions"`
}

// Definition is one raw entity definition within a document.
type Definition struct {
	EntityName     string      `json:"entityName"`
	ExtendsEntity  string      `json:"extendsEntity,omitempty"`
	Description    string      `json:"description,omitempty"`
	HasAttributes  []Attribute `json:"hasAttributes,omitempty"`
	ExhibitsTraits []Trait     `json:"exhibitsTraits,omitempty"`
}

// EntityNames lists the entity names defined in the document, in order.
func (d *Document) EntityNames() []string {
	var names []string
	for _, def := range d.Definitions {
		if def.EntityName != "" {
			names = append(names, def.EntityName)
		}
	}
	return names
}

// Attribute is one attribute of an entity definition. IsNullable defaults to
// true when absent from the document.
type Attribute struct {
	Name        string     `json:"name"`
	DataType    string     `json:"dataType"`
	IsNullable  *bool      `json:"isNullable,omitempty"`
	Description string     `json:"description,omitempty"`
	Traits      []Trait    `json:"traits,omitempty"`
	OptionSet   *OptionSet `json:"optionSet,omitempty"`
}

// Nullable reports the attribute's nullability, defaulting to true.
func (a Attribute) Nullable() bool {
	return a.IsNullable == nil || *a.IsNullable
}

// Trait is auxiliary attribute metadata. CDM documents write traits either
// as a bare reference string or as an object with arguments; both decode
// into this shape.
type Trait struct {
	TraitReference string     `json:"traitReference"`
	Arguments      []TraitArg `json:"arguments,omitempty"`
}

func (t *Trait) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &t.TraitReference)
	}
	type plain Trait
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("cdm: trait: %w", err)
	}
	*t = Trait(p)
	return nil
}

// TraitArg is a named trait argument. Value stays untyped; documents carry
// both string and numeric argument values.
type TraitArg struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// OptionSet is a closed enumeration attached to a lookup attribute.
type OptionSet struct {
	Values []OptionValue `json:"values"`
}

// OptionValue maps an integer code to its display text.
type OptionValue struct {
	Value       int    `json:"value"`
	DisplayText string `json:"displayText"`
}

// Manifest enumerates the entities and relationships of a deployment.
type Manifest struct {
	ManifestName  string          `json:"manifestName"`
	Entities      []ManifestEntry `json:"entities"`
	Relationships []Relationship  `json:"relationships"`
}

// ManifestEntry points a logical entity name at its definition via an entity
// reference string.
type ManifestEntry struct {
	EntityName  string `json:"entityName"`
	EntityPath  string `json:"entityPath"`
	Explanation string `json:"explanation,omitempty"`
}

// Relationship declares a foreign-key style link between two entities. The
// core records these; it does not enforce them (the quality engine's
// referential rules do that, driven by their own config).
type Relationship struct {
	FromEntity    string `json:"fromEntity"`
	FromAttribute string `json:"fromAttribute"`
	ToEntity      string `json:"toEntity"`
	ToAttribute   string `json:"toAttribute"`
}
