package cdmsilver

import "fmt"

// Kind enumerates the semantic field kinds a silver schema is built from.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindLong
	KindDouble
	KindDecimal
	KindBoolean
	KindTimestamp
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindLong:
		return "long"
	case KindDouble:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type is a semantic field type. Precision and Scale are meaningful only for
// KindDecimal.
type Type struct {
	Kind      Kind
	Precision int
	Scale     int
}

// Pre-built types for every non-parameterized kind.
var (
	String    = Type{Kind: KindString}
	Integer   = Type{Kind: KindInteger}
	Long      = Type{Kind: KindLong}
	Double    = Type{Kind: KindDouble}
	Boolean   = Type{Kind: KindBoolean}
	Timestamp = Type{Kind: KindTimestamp}
	Date      = Type{Kind: KindDate}
)

// Decimal returns a fixed-point type with the given precision and scale.
func Decimal(precision, scale int) Type {
	return Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}

func (t Type) String() string {
	if t.Kind == KindDecimal {
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	}
	return t.Kind.String()
}

// Field is a single named, typed schema slot.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
}

// Schema is an ordered list of fields. Field order is stable and significant:
// enforced output matches schema order exactly.
type Schema []Field

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Field returns the field with the given name, if present.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
