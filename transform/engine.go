package transform

import (
	"fmt"
	"sort"

	cs "github.com/cdmsilver/cdmsilver"
)

// rankCol is the scratch column RankRows writes during deduplication.
const rankCol = "_row_num"

// Engine applies config-driven bronze-to-silver transformations. One engine
// serves many entities; per-entity behavior lives entirely in the config and
// the registries.
type Engine struct {
	cfg        *Config
	transforms *Registry
	derived    *Registry
	composites *CompositeRegistry
	store      cs.TableStore
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the column-transform registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) { e.transforms = r }
}

// WithDerivedRegistry replaces the derived-transform registry.
func WithDerivedRegistry(r *Registry) Option {
	return func(e *Engine) { e.derived = r }
}

// WithCompositeRegistry replaces the composite-transform registry.
func WithCompositeRegistry(r *CompositeRegistry) Option {
	return func(e *Engine) { e.composites = r }
}

// WithTableStore wires the store WriteSilver persists through.
func WithTableStore(store cs.TableStore) Option {
	return func(e *Engine) { e.store = store }
}

// NewEngine builds an engine over a mapping config. Registries default to
// the built-in sets.
func NewEngine(cfg *Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		transforms: DefaultRegistry(),
		derived:    DefaultDerivedRegistry(),
		composites: DefaultCompositeRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EntityConfig returns the mapping configuration for a logical entity, or a
// ConfigError naming the configured entities when absent.
func (e *Engine) EntityConfig(entity string) (EntityConfig, error) {
	cfg, ok := e.cfg.Entities[entity]
	if !ok {
		return EntityConfig{}, &cs.ConfigError{Entity: entity, Available: e.entityNames()}
	}
	return cfg, nil
}

// Entities lists the configured logical entity names, sorted.
func (e *Engine) Entities() []string { return e.entityNames() }

func (e *Engine) entityNames() []string {
	names := make([]string, 0, len(e.cfg.Entities))
	for name := range e.cfg.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Transform applies an entity's configured transformations to a bronze
// dataset and coerces the result to the target schema:
//
//  1. deduplicate when the config names a dedup key/order,
//  2. build one column per mapping, in config order,
//  3. append derived fields,
//  4. cast every schema field, synthesizing null columns for absent ones.
//
// Unknown transform names degrade to a trimmed pass-through recorded on the
// returned Diag; the pipeline keeps running.
func (e *Engine) Transform(entity string, bronze cs.Dataset, target cs.Schema) (cs.Dataset, *cs.Diag, error) {
	cfg, err := e.EntityConfig(entity)
	if err != nil {
		return nil, nil, err
	}
	diag := &cs.Diag{}

	ds := bronze
	if cfg.Bronze.DedupKey != "" && cfg.Bronze.DedupOrder != "" {
		ds, err = e.deduplicate(ds, cfg.Bronze.DedupKey, cfg.Bronze.DedupOrder)
		if err != nil {
			return nil, diag, fmt.Errorf("transform: %s: dedup: %w", entity, err)
		}
	}

	if cfg.Mappings.Len() > 0 {
		cols := make([]cs.NamedExpr, 0, cfg.Mappings.Len())
		for _, targetField := range cfg.Mappings.Fields() {
			fm, _ := cfg.Mappings.Get(targetField)
			cols = append(cols, cs.As(e.mappingExpr(targetField, fm, diag), targetField))
		}
		ds, err = ds.Select(cols...)
		if err != nil {
			return nil, diag, fmt.Errorf("transform: %s: mappings: %w", entity, err)
		}
	}

	for _, df := range cfg.Derived {
		fn, ok := e.derived.Lookup(df.Transform)
		if !ok {
			diag.Warnf(cs.CodeUnknownTransform, df.Name,
				"unknown derived transform %q, field skipped", df.Transform)
			continue
		}
		ds, err = ds.WithColumn(df.Name, fn(df.From))
		if err != nil {
			return nil, diag, fmt.Errorf("transform: %s: derived %s: %w", entity, df.Name, err)
		}
	}

	ds, err = enforceSchema(ds, target)
	if err != nil {
		return nil, diag, fmt.Errorf("transform: %s: enforce schema: %w", entity, err)
	}
	return ds, diag, nil
}

// mappingExpr builds the column expression for one target field.
func (e *Engine) mappingExpr(target string, fm FieldMapping, diag *cs.Diag) cs.Expr {
	if fm.Transform != "" && len(fm.FallbackSources) > 0 {
		if fn, ok := e.composites.Lookup(fm.Transform); ok {
			return fn(fm.Source, fm.FallbackSources)
		}
	}
	if fm.Source == "" {
		return cs.Lit(fm.Default)
	}
	if fm.Transform == "" {
		return cs.Col(fm.Source)
	}
	if fn, ok := e.transforms.Lookup(fm.Transform); ok {
		return fn(fm.Source)
	}
	diag.Warnf(cs.CodeUnknownTransform, target,
		"unknown transform %q, using trim", fm.Transform)
	return cs.Trim(cs.Col(fm.Source))
}

// deduplicate keeps, per key partition, the row ranked newest by the order
// column (nulls rank last, so never-modified rows count as oldest).
func (e *Engine) deduplicate(ds cs.Dataset, key, order string) (cs.Dataset, error) {
	keep := ds.Columns()
	ranked, err := ds.RankRows(key, order, rankCol)
	if err != nil {
		return nil, err
	}
	first, err := ranked.Filter(cs.Eq(cs.Col(rankCol), cs.Lit(1)))
	if err != nil {
		return nil, err
	}
	cols := make([]cs.NamedExpr, len(keep))
	for i, name := range keep {
		cols[i] = cs.As(cs.Col(name), name)
	}
	return first.Select(cols...)
}

// enforceSchema projects the dataset onto the target schema: present
// columns are cast to their semantic type, absent ones become all-null
// columns. Output order matches schema order exactly; extra columns drop.
func enforceSchema(ds cs.Dataset, schema cs.Schema) (cs.Dataset, error) {
	have := make(map[string]bool)
	for _, name := range ds.Columns() {
		have[name] = true
	}
	cols := make([]cs.NamedExpr, len(schema))
	for i, f := range schema {
		if have[f.Name] {
			cols[i] = cs.As(cs.Cast(cs.Col(f.Name), f.Type), f.Name)
		} else {
			cols[i] = cs.As(cs.Cast(cs.Lit(nil), f.Type), f.Name)
		}
	}
	return ds.Select(cols...)
}
