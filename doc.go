// Package cdmsilver turns CDM entity definitions into canonical silver-layer
// schemas and applies config-driven transformations and quality rules to
// tabular data on its way from the bronze layer to the silver layer.
//
// The package is organized around three pillars:
//
//   - cdm: loads .cdm.json documents, resolves entity inheritance and
//     compiles canonical typed schemas (see the cdm subpackage).
//   - transform: maps raw columns onto canonical fields through a registry
//     of named column transforms, then enforces the target schema (see the
//     transform subpackage).
//   - quality: evaluates declarative rules (null, uniqueness, referential
//     integrity, range, length, pattern, completeness) and produces a
//     structured report (see the quality subpackage).
//
// The root package defines the pieces the pillars share: the semantic type
// system (Type, Field, Schema), the Dataset boundary the engines issue work
// against, the column expression builders, the TableStore boundary for
// persisted output, and the error/diagnostic model. Execution of Dataset
// operations belongs to an external engine; memds ships a small in-memory
// reference implementation used by tests and the CLI.
package cdmsilver
