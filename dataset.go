package cdmsilver

// NamedExpr is an expression with the output column name it is selected as.
type NamedExpr struct {
	Name string
	Expr Expr
}

// As aliases an expression for selection.
func As(e Expr, name string) NamedExpr { return NamedExpr{Name: name, Expr: e} }

// Dataset is the boundary to an external columnar execution engine. The core
// issues sequences of these operations and assumes nothing about their
// internal parallelism or row ordering, except where it imposes one itself
// (RankRows). Implementations return fresh datasets; inputs are never
// mutated.
type Dataset interface {
	// Columns returns the column names in dataset order.
	Columns() []string
	// Schema returns the engine's best-known schema for the dataset.
	Schema() Schema
	// Count returns the number of rows.
	Count() (int64, error)
	// Select projects the dataset onto the given expressions, in order.
	Select(cols ...NamedExpr) (Dataset, error)
	// Filter keeps rows for which pred evaluates to true.
	Filter(pred Expr) (Dataset, error)
	// WithColumn appends (or replaces) a column computed per row.
	WithColumn(name string, e Expr) (Dataset, error)
	// Distinct removes duplicate rows, keeping first occurrences.
	Distinct() (Dataset, error)
	// Subtract removes rows that also occur in other (set difference over
	// identical column layouts).
	Subtract(other Dataset) (Dataset, error)
	// RankRows appends an integer column rankCol holding the 1-based rank of
	// each row within its partitionCol partition, ordered by orderCol
	// descending with nulls last. Ties rank in a deterministic engine order.
	RankRows(partitionCol, orderCol, rankCol string) (Dataset, error)
	// Rows materializes the dataset row-major, null as nil. Intended for
	// stores and report rendering, not for transform logic.
	Rows() ([][]any, error)
}
