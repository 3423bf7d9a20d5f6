package cdmsilver

import (
	"fmt"
	"strings"
)

// Warning codes carried by Issue values (exported consts for type safety by
// convention).
const (
	CodeUnknownTransform = "unknown_transform"
	CodeUnknownRuleType  = "unknown_rule_type"
	CodeCatalogFallback  = "catalog_write_fallback"
	CodeConfigMissing    = "config_missing"
)

// Issue is a single non-fatal diagnostic produced while transforming or
// writing. Issues degrade gracefully by design: they report what the engine
// worked around instead of aborting a pipeline.
type Issue struct {
	Code    string // One of the codes listed above.
	Path    string // The entity, target field, or location concerned.
	Message string
}

func (it Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

// Diag accumulates non-fatal warnings across an engine operation.
type Diag struct {
	issues []Issue
}

// Warnf records a warning.
func (d *Diag) Warnf(code, path, format string, a ...any) {
	d.issues = append(d.issues, Issue{Code: code, Path: path, Message: fmt.Sprintf(format, a...)})
}

// HasWarnings reports whether any warnings were recorded.
func (d *Diag) HasWarnings() bool { return len(d.issues) > 0 }

// Issues returns a copy of the recorded warnings.
func (d *Diag) Issues() []Issue { return append([]Issue(nil), d.issues...) }

// NotFoundError reports a missing schema document, manifest, or entity. When
// the document exists but the entity does not, Available enumerates the
// entity names the document does define.
type NotFoundError struct {
	Path      string
	Entity    string
	Available []string
	Err       error
}

func (e *NotFoundError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("cdm: entity %q not found in %s (available: %s)",
			e.Entity, e.Path, strings.Join(e.Available, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("cdm: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cdm: no entity definition in %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ConfigError reports an entity absent from a mapping or rule configuration.
// Fatal to that entity, non-fatal to sibling entities in a batch.
type ConfigError struct {
	Entity    string
	Available []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: entity %q not configured (available: %s)",
		e.Entity, strings.Join(e.Available, ", "))
}

// CycleError reports a cyclic extendsEntity chain. Chain lists the
// document/entity keys in resolution order, ending with the repeated one.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cdm: cyclic entity inheritance: %s", strings.Join(e.Chain, " -> "))
}
