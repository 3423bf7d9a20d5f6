package cdm

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// cdmTypeMap maps CDM semantic data types onto canonical field types,
// following the official CDM type system. Unknown data types degrade to
// string rather than failing the compile.
var cdmTypeMap = map[string]cdmsilver.Type{
	"entityId":            cdmsilver.String,
	"guid":                cdmsilver.String,
	"string":              cdmsilver.String,
	"name":                cdmsilver.String,
	"integer":             cdmsilver.Integer,
	"bigInteger":          cdmsilver.Long,
	"double":              cdmsilver.Double,
	"decimal":             cdmsilver.Decimal(defaultPrecision, defaultScale),
	"currency":            cdmsilver.Decimal(defaultPrecision, defaultScale),
	"boolean":             cdmsilver.Boolean,
	"dateTime":            cdmsilver.Timestamp,
	"date":                cdmsilver.Date,
	"listLookup":          cdmsilver.Integer,
	"listLookupWellKnown": cdmsilver.Integer,
}

const (
	defaultPrecision = 18
	defaultScale     = 2

	// shapedNumericTrait carries decimal precision/scale arguments.
	shapedNumericTrait = "is.dataFormat.numeric.shaped"
)

// Compiler turns resolved entities into canonical schemas and exposes
// read-only projections (option sets, descriptions) of the same resolution.
// Compiled schemas are cached per (path, entity). Safe for concurrent
// readers.
type Compiler struct {
	resolver *Resolver

	mu    sync.RWMutex
	cache map[string]cdmsilver.Schema
}

// NewCompiler returns a Compiler over the given resolver.
func NewCompiler(resolver *Resolver) *Compiler {
	return &Compiler{resolver: resolver, cache: make(map[string]cdmsilver.Schema)}
}

// Compile resolves an entity and produces its canonical schema: one field
// per resolved attribute, in resolved order, with the CDM data type mapped
// to a semantic type. Decimal attributes take precision and scale from a
// shaped-numeric trait when present, defaulting to (18,2).
func (c *Compiler) Compile(path, entity string) (cdmsilver.Schema, error) {
	key := cacheKey(path, entity)
	c.mu.RLock()
	schema, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return schema, nil
	}

	resolved, err := c.resolver.ResolveEntity(path, entity)
	if err != nil {
		return nil, err
	}

	schema = make(cdmsilver.Schema, 0, len(resolved.Attributes))
	seen := make(map[string]bool, len(resolved.Attributes))
	for _, attr := range resolved.Attributes {
		if seen[attr.Name] {
			continue
		}
		seen[attr.Name] = true
		schema = append(schema, cdmsilver.Field{
			Name:     attr.Name,
			Type:     fieldType(attr),
			Nullable: attr.Nullable(),
		})
	}

	c.mu.Lock()
	c.cache[key] = schema
	c.mu.Unlock()
	return schema, nil
}

// CompileRef compiles from a single entity reference string.
func (c *Compiler) CompileRef(ref string) (cdmsilver.Schema, error) {
	path, entity := ParseEntityRef(ref)
	return c.Compile(path, entity)
}

func fieldType(attr Attribute) cdmsilver.Type {
	if attr.DataType == "decimal" && len(attr.Traits) > 0 {
		precision, scale := defaultPrecision, defaultScale
		for _, trait := range attr.Traits {
			if trait.TraitReference != shapedNumericTrait {
				continue
			}
			for _, arg := range trait.Arguments {
				switch arg.Name {
				case "precision":
					if v, ok := intArg(arg.Value); ok {
						precision = v
					}
				case "scale":
					if v, ok := intArg(arg.Value); ok {
						scale = v
					}
				}
			}
		}
		return cdmsilver.Decimal(precision, scale)
	}
	if t, ok := cdmTypeMap[attr.DataType]; ok {
		return t
	}
	return cdmsilver.String
}

// intArg reads a trait argument value that documents write as either a JSON
// number or a numeric string.
func intArg(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case int:
		return x, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// OptionSets returns the merged option sets of a resolved entity, keyed by
// attribute name.
func (c *Compiler) OptionSets(path, entity string) (map[string][]OptionValue, error) {
	resolved, err := c.resolver.ResolveEntity(path, entity)
	if err != nil {
		return nil, err
	}
	return resolved.OptionSets, nil
}

// ColumnDescriptions returns the non-empty attribute descriptions of a
// resolved entity, keyed by attribute name.
func (c *Compiler) ColumnDescriptions(path, entity string) (map[string]string, error) {
	resolved, err := c.resolver.ResolveEntity(path, entity)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, attr := range resolved.Attributes {
		if attr.Description != "" {
			out[attr.Name] = attr.Description
		}
	}
	return out, nil
}

// EntityDescription returns the entity-level description of a resolved
// entity.
func (c *Compiler) EntityDescription(path, entity string) (string, error) {
	resolved, err := c.resolver.ResolveEntity(path, entity)
	if err != nil {
		return "", err
	}
	return resolved.Description, nil
}

// Descriptions bundles an entity's description with its column
// descriptions.
type Descriptions struct {
	Entity  string
	Columns map[string]string
}

// CompileManifest compiles every entity listed in a manifest, keyed by the
// manifest's logical entity name.
func (c *Compiler) CompileManifest(manifestFile string) (map[string]cdmsilver.Schema, error) {
	m, err := c.resolver.Store().LoadManifest(manifestFile)
	if err != nil {
		return nil, err
	}
	schemas := make(map[string]cdmsilver.Schema, len(m.Entities))
	for _, entry := range m.Entities {
		schema, err := c.CompileRef(entry.EntityPath)
		if err != nil {
			return nil, fmt.Errorf("cdm: manifest entity %q: %w", entry.EntityName, err)
		}
		schemas[entry.EntityName] = schema
	}
	return schemas, nil
}

// DescribeManifest loads entity and column descriptions for every entity in
// a manifest, keyed by the manifest's logical entity name.
func (c *Compiler) DescribeManifest(manifestFile string) (map[string]Descriptions, error) {
	m, err := c.resolver.Store().LoadManifest(manifestFile)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Descriptions, len(m.Entities))
	for _, entry := range m.Entities {
		path, entity := ParseEntityRef(entry.EntityPath)
		ed, err := c.EntityDescription(path, entity)
		if err != nil {
			return nil, fmt.Errorf("cdm: manifest entity %q: %w", entry.EntityName, err)
		}
		cd, err := c.ColumnDescriptions(path, entity)
		if err != nil {
			return nil, fmt.Errorf("cdm: manifest entity %q: %w", entry.EntityName, err)
		}
		out[entry.EntityName] = Descriptions{Entity: ed, Columns: cd}
	}
	return out, nil
}

// EntitySummary renders a human-readable summary of a resolved entity: its
// fields, types, required markers, and option sets.
func (c *Compiler) EntitySummary(path, entity string) (string, error) {
	resolved, err := c.resolver.ResolveEntity(path, entity)
	if err != nil {
		return "", err
	}
	schema, err := c.Compile(path, entity)
	if err != nil {
		return "", err
	}

	b := &strings.Builder{}
	rule := strings.Repeat("=", 60)
	ext := ""
	if resolved.IsExtension {
		ext = " [EXTENSION]"
	}
	fmt.Fprintf(b, "%s\nEntity: %s%s\n", rule, resolved.EntityName, ext)
	if resolved.ExtendsEntity != "" {
		fmt.Fprintf(b, "Extends: %s\n", resolved.ExtendsEntity)
	}
	if resolved.Description != "" {
		fmt.Fprintf(b, "Description: %s\n", resolved.Description)
	}
	fmt.Fprintf(b, "Fields: %d\n%s\n", len(schema), rule)
	for _, f := range schema {
		required := ""
		if !f.Nullable {
			required = " [REQUIRED]"
		}
		fmt.Fprintf(b, "  %-40s %-20s%s\n", f.Name, f.Type.String(), required)
	}
	if len(resolved.OptionSets) > 0 {
		fmt.Fprintf(b, "\n  Option Sets:\n")
		for _, f := range schema {
			values, ok := resolved.OptionSets[f.Name]
			if !ok {
				continue
			}
			fmt.Fprintf(b, "    %s:\n", f.Name)
			for _, v := range values {
				fmt.Fprintf(b, "      %10d = %s\n", v.Value, v.DisplayText)
			}
		}
	}
	return b.String(), nil
}
