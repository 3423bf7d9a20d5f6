package cdmsilver

// Expr is a column-level expression tree. Expressions are built by the
// transform and quality engines and handed to a Dataset engine for
// evaluation; the core never evaluates them itself.
type Expr interface {
	exprNode()
}

// ColumnExpr references a column of the dataset by name.
type ColumnExpr struct{ Name string }

// LiteralExpr is a constant value. A nil Value is the SQL null literal.
type LiteralExpr struct{ Value any }

// CastExpr converts its operand to a semantic type. Conversion semantics for
// unparseable values belong to the Dataset engine's contract.
type CastExpr struct {
	Expr Expr
	To   Type
}

// CoalesceExpr yields the first non-null operand.
type CoalesceExpr struct{ Exprs []Expr }

// WhenExpr is an ordered list of condition/value branches with an optional
// otherwise. A missing otherwise yields null.
type WhenExpr struct {
	Branches []WhenBranch
	Else     Expr
}

// WhenBranch pairs a boolean condition with the value produced when it holds.
type WhenBranch struct {
	Cond Expr
	Then Expr
}

// CallOp names the built-in single-argument string functions.
type CallOp int

const (
	OpTrim CallOp = iota
	OpLower
	OpUpper
	OpInitCap
	OpLength
)

// CallExpr applies a built-in string function to its operand.
type CallExpr struct {
	Op   CallOp
	Expr Expr
}

// ConcatWSExpr joins the non-null operands with a separator.
type ConcatWSExpr struct {
	Sep   string
	Exprs []Expr
}

// ParseTimeExpr parses a string operand with an ordered list of candidate
// layouts, yielding the first successful parse or null. AsDate truncates the
// result to a date.
type ParseTimeExpr struct {
	Expr    Expr
	Layouts []string
	AsDate  bool
}

// CmpOp enumerates comparison operators.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpLt
	CmpGt
)

// CompareExpr compares two operands. Comparisons involving null yield null.
type CompareExpr struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

// InExpr tests membership of the operand in a literal set.
type InExpr struct {
	Expr   Expr
	Values []any
}

// NullCheckExpr tests the operand for null (Negate false) or non-null
// (Negate true).
type NullCheckExpr struct {
	Expr   Expr
	Negate bool
}

// NotExpr negates a boolean operand; null stays null.
type NotExpr struct{ Expr Expr }

// BoolOp enumerates binary boolean operators.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
)

// BoolExpr combines two boolean operands.
type BoolExpr struct {
	Op    BoolOp
	Left  Expr
	Right Expr
}

// RegexpExpr tests whether the string operand matches an RE2 pattern.
type RegexpExpr struct {
	Expr    Expr
	Pattern string
}

func (ColumnExpr) exprNode()    {}
func (LiteralExpr) exprNode()   {}
func (CastExpr) exprNode()      {}
func (CoalesceExpr) exprNode()  {}
func (*WhenExpr) exprNode()     {}
func (CallExpr) exprNode()      {}
func (ConcatWSExpr) exprNode()  {}
func (ParseTimeExpr) exprNode() {}
func (CompareExpr) exprNode()   {}
func (InExpr) exprNode()        {}
func (NullCheckExpr) exprNode() {}
func (NotExpr) exprNode()       {}
func (BoolExpr) exprNode()      {}
func (RegexpExpr) exprNode()    {}

// ---- Constructors ----

// Col references a column by name.
func Col(name string) Expr { return ColumnExpr{Name: name} }

// Lit builds a literal. Lit(nil) is the null literal.
func Lit(v any) Expr { return LiteralExpr{Value: v} }

// Cast converts e to the semantic type t.
func Cast(e Expr, t Type) Expr { return CastExpr{Expr: e, To: t} }

// Coalesce yields the first non-null of its operands.
func Coalesce(exprs ...Expr) Expr { return CoalesceExpr{Exprs: exprs} }

// When starts a conditional chain. Append further branches with
// (*WhenExpr).When and terminate with Otherwise; an unterminated chain
// yields null when no branch matches.
func When(cond, then Expr) *WhenExpr {
	return &WhenExpr{Branches: []WhenBranch{{Cond: cond, Then: then}}}
}

// When appends a branch to the chain.
func (w *WhenExpr) When(cond, then Expr) *WhenExpr {
	w.Branches = append(w.Branches, WhenBranch{Cond: cond, Then: then})
	return w
}

// Otherwise sets the fallback value and returns the finished expression.
func (w *WhenExpr) Otherwise(e Expr) Expr {
	w.Else = e
	return w
}

// Trim removes leading and trailing whitespace.
func Trim(e Expr) Expr { return CallExpr{Op: OpTrim, Expr: e} }

// Lower lowercases the operand.
func Lower(e Expr) Expr { return CallExpr{Op: OpLower, Expr: e} }

// Upper uppercases the operand.
func Upper(e Expr) Expr { return CallExpr{Op: OpUpper, Expr: e} }

// InitCap title-cases each whitespace-separated word of the operand.
func InitCap(e Expr) Expr { return CallExpr{Op: OpInitCap, Expr: e} }

// Length yields the character length of the operand.
func Length(e Expr) Expr { return CallExpr{Op: OpLength, Expr: e} }

// ConcatWS joins the non-null operands with sep.
func ConcatWS(sep string, exprs ...Expr) Expr {
	return ConcatWSExpr{Sep: sep, Exprs: exprs}
}

// ParseTimestamp tries each layout in order and yields the first successful
// parse as a timestamp, or null.
func ParseTimestamp(e Expr, layouts ...string) Expr {
	return ParseTimeExpr{Expr: e, Layouts: layouts}
}

// ParseDate tries each layout in order and yields the first successful parse
// truncated to a date, or null.
func ParseDate(e Expr, layouts ...string) Expr {
	return ParseTimeExpr{Expr: e, Layouts: layouts, AsDate: true}
}

// Eq compares for equality.
func Eq(l, r Expr) Expr { return CompareExpr{Op: CmpEq, Left: l, Right: r} }

// Lt compares less-than.
func Lt(l, r Expr) Expr { return CompareExpr{Op: CmpLt, Left: l, Right: r} }

// Gt compares greater-than.
func Gt(l, r Expr) Expr { return CompareExpr{Op: CmpGt, Left: l, Right: r} }

// In tests membership in a literal set.
func In(e Expr, values ...any) Expr { return InExpr{Expr: e, Values: values} }

// IsNull tests the operand for null.
func IsNull(e Expr) Expr { return NullCheckExpr{Expr: e} }

// IsNotNull tests the operand for non-null.
func IsNotNull(e Expr) Expr { return NullCheckExpr{Expr: e, Negate: true} }

// Not negates a boolean operand.
func Not(e Expr) Expr { return NotExpr{Expr: e} }

// And combines two boolean operands.
func And(l, r Expr) Expr { return BoolExpr{Op: BoolAnd, Left: l, Right: r} }

// Or combines two boolean operands.
func Or(l, r Expr) Expr { return BoolExpr{Op: BoolOr, Left: l, Right: r} }

// Regexp tests the operand against an RE2 pattern.
func Regexp(e Expr, pattern string) Expr {
	return RegexpExpr{Expr: e, Pattern: pattern}
}
