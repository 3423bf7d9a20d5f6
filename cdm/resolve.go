package cdm

import (
	"slices"
	"sync"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// Resolved is the flattened, immutable view of an entity after walking its
// extendsEntity chain. Attributes are parent-first and deduplicated by name
// keeping the first occurrence, so on a name collision the parent's
// attribute wins. OptionSets are merged the same way: a child never
// overrides a key the parent already contributed.
type Resolved struct {
	EntityName    string
	Description   string
	Attributes    []Attribute
	OptionSets    map[string][]OptionValue
	IsExtension   bool
	ExtendsEntity string
}

// Resolver resolves entity inheritance chains on top of a Store. Resolution
// is referentially transparent, so results are cached per (path, entity)
// exactly like raw definitions. Safe for concurrent readers.
type Resolver struct {
	store *Store

	mu    sync.RWMutex
	cache map[string]*Resolved
}

// NewResolver returns a Resolver over the given store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store, cache: make(map[string]*Resolved)}
}

// Store returns the underlying definition store.
func (r *Resolver) Store() *Store { return r.store }

// ResolveEntity loads an entity and merges in every attribute inherited
// through its extendsEntity chain (depth-first, single-parent). A recurring
// (path, entity) pair in the chain fails with CycleError instead of
// recursing forever.
func (r *Resolver) ResolveEntity(path, entity string) (*Resolved, error) {
	return r.resolve(path, entity, nil)
}

func (r *Resolver) resolve(path, entity string, chain []string) (*Resolved, error) {
	key := cacheKey(path, entity)
	if slices.Contains(chain, key) {
		return nil, &cdmsilver.CycleError{Chain: append(chain, key)}
	}

	r.mu.RLock()
	res, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return res, nil
	}

	def, err := r.store.LoadEntity(path, entity)
	if err != nil {
		return nil, err
	}

	res = &Resolved{
		EntityName:    def.EntityName,
		Description:   def.Description,
		OptionSets:    make(map[string][]OptionValue),
		IsExtension:   def.ExtendsEntity != "",
		ExtendsEntity: def.ExtendsEntity,
	}

	if def.ExtendsEntity != "" {
		parentPath, parentName := ParseEntityRef(def.ExtendsEntity)
		parent, err := r.resolve(parentPath, parentName, append(chain, key))
		if err != nil {
			return nil, err
		}
		res.Attributes = append(res.Attributes, parent.Attributes...)
		for name, values := range parent.OptionSets {
			res.OptionSets[name] = values
		}
	}

	seen := make(map[string]bool, len(res.Attributes))
	for _, attr := range res.Attributes {
		seen[attr.Name] = true
	}
	for _, attr := range def.HasAttributes {
		if seen[attr.Name] {
			continue
		}
		seen[attr.Name] = true
		if attr.OptionSet != nil {
			if _, ok := res.OptionSets[attr.Name]; !ok {
				res.OptionSets[attr.Name] = attr.OptionSet.Values
			}
		}
		res.Attributes = append(res.Attributes, attr)
	}

	r.mu.Lock()
	r.cache[key] = res
	r.mu.Unlock()
	return res, nil
}
