package memds

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// evaluator evaluates expression trees row by row. One evaluator serves one
// dataset operation; regex patterns are compiled once per operation.
type evaluator struct {
	index map[string]int
	types map[string]cdmsilver.Type
	res   map[string]*regexp.Regexp
}

func newEvaluator(fields []cdmsilver.Field) (*evaluator, error) {
	ev := &evaluator{
		index: make(map[string]int, len(fields)),
		types: make(map[string]cdmsilver.Type, len(fields)),
		res:   make(map[string]*regexp.Regexp),
	}
	for i, f := range fields {
		ev.index[f.Name] = i
		ev.types[f.Name] = f.Type
	}
	return ev, nil
}

func (ev *evaluator) eval(e cdmsilver.Expr, row []any) (any, error) {
	switch x := e.(type) {
	case cdmsilver.ColumnExpr:
		i, ok := ev.index[x.Name]
		if !ok {
			return nil, fmt.Errorf("memds: unknown column %q", x.Name)
		}
		return row[i], nil

	case cdmsilver.LiteralExpr:
		return normalize(x.Value), nil

	case cdmsilver.CastExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		return castValue(v, x.To), nil

	case cdmsilver.CoalesceExpr:
		for _, sub := range x.Exprs {
			v, err := ev.eval(sub, row)
			if err != nil {
				return nil, err
			}
			if v != nil {
				return v, nil
			}
		}
		return nil, nil

	case *cdmsilver.WhenExpr:
		for _, br := range x.Branches {
			c, err := ev.eval(br.Cond, row)
			if err != nil {
				return nil, err
			}
			if c == true {
				return ev.eval(br.Then, row)
			}
		}
		if x.Else == nil {
			return nil, nil
		}
		return ev.eval(x.Else, row)

	case cdmsilver.CallExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		s := formatValue(v)
		switch x.Op {
		case cdmsilver.OpTrim:
			return strings.TrimSpace(s), nil
		case cdmsilver.OpLower:
			return strings.ToLower(s), nil
		case cdmsilver.OpUpper:
			return strings.ToUpper(s), nil
		case cdmsilver.OpInitCap:
			return initCap(s), nil
		case cdmsilver.OpLength:
			return int64(utf8.RuneCountInString(s)), nil
		}
		return nil, fmt.Errorf("memds: unknown call op %d", int(x.Op))

	case cdmsilver.ConcatWSExpr:
		var parts []string
		for _, sub := range x.Exprs {
			v, err := ev.eval(sub, row)
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			parts = append(parts, formatValue(v))
		}
		return strings.Join(parts, x.Sep), nil

	case cdmsilver.ParseTimeExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		s := strings.TrimSpace(formatValue(v))
		for _, layout := range x.Layouts {
			ts, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			if x.AsDate {
				y, m, d := ts.Date()
				return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
			}
			return ts, nil
		}
		return nil, nil

	case cdmsilver.CompareExpr:
		l, err := ev.eval(x.Left, row)
		if err != nil {
			return nil, err
		}
		r, err := ev.eval(x.Right, row)
		if err != nil {
			return nil, err
		}
		if l == nil || r == nil {
			return nil, nil
		}
		c, ok := compareValues(l, r)
		if !ok {
			return nil, nil
		}
		switch x.Op {
		case cdmsilver.CmpEq:
			return c == 0, nil
		case cdmsilver.CmpLt:
			return c < 0, nil
		case cdmsilver.CmpGt:
			return c > 0, nil
		}
		return nil, fmt.Errorf("memds: unknown compare op %d", int(x.Op))

	case cdmsilver.InExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		for _, cand := range x.Values {
			if looseEqual(v, normalize(cand)) {
				return true, nil
			}
		}
		return false, nil

	case cdmsilver.NullCheckExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		return (v == nil) != x.Negate, nil

	case cdmsilver.NotExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		b, ok := v.(bool)
		if !ok {
			return nil, nil
		}
		return !b, nil

	case cdmsilver.BoolExpr:
		l, err := ev.eval(x.Left, row)
		if err != nil {
			return nil, err
		}
		r, err := ev.eval(x.Right, row)
		if err != nil {
			return nil, err
		}
		// Three-valued: null poisons unless the other side decides.
		if x.Op == cdmsilver.BoolOr {
			if l == true || r == true {
				return true, nil
			}
			if l == nil || r == nil {
				return nil, nil
			}
			return false, nil
		}
		if l == false || r == false {
			return false, nil
		}
		if l == nil || r == nil {
			return nil, nil
		}
		return true, nil

	case cdmsilver.RegexpExpr:
		v, err := ev.eval(x.Expr, row)
		if err != nil {
			return nil, err
		}
		re, ok := ev.res[x.Pattern]
		if !ok {
			re, err = regexp.Compile(x.Pattern)
			if err != nil {
				return nil, fmt.Errorf("memds: pattern %q: %w", x.Pattern, err)
			}
			ev.res[x.Pattern] = re
		}
		if v == nil {
			return nil, nil
		}
		return re.MatchString(formatValue(v)), nil
	}
	return nil, fmt.Errorf("memds: unsupported expression %T", e)
}

// inferType gives the engine's best-known output type for an expression,
// used to tag derived columns.
func (ev *evaluator) inferType(e cdmsilver.Expr) cdmsilver.Type {
	switch x := e.(type) {
	case cdmsilver.ColumnExpr:
		if t, ok := ev.types[x.Name]; ok {
			return t
		}
	case cdmsilver.LiteralExpr:
		return typeOfValue(normalize(x.Value))
	case cdmsilver.CastExpr:
		return x.To
	case cdmsilver.CoalesceExpr:
		if len(x.Exprs) > 0 {
			return ev.inferType(x.Exprs[0])
		}
	case *cdmsilver.WhenExpr:
		if len(x.Branches) > 0 {
			return ev.inferType(x.Branches[0].Then)
		}
	case cdmsilver.CallExpr:
		if x.Op == cdmsilver.OpLength {
			return cdmsilver.Integer
		}
		return cdmsilver.String
	case cdmsilver.ParseTimeExpr:
		if x.AsDate {
			return cdmsilver.Date
		}
		return cdmsilver.Timestamp
	case cdmsilver.ConcatWSExpr:
		return cdmsilver.String
	case cdmsilver.CompareExpr, cdmsilver.InExpr, cdmsilver.NullCheckExpr,
		cdmsilver.NotExpr, cdmsilver.BoolExpr, cdmsilver.RegexpExpr:
		return cdmsilver.Boolean
	}
	return cdmsilver.String
}

// normalize reduces literal values to the engine's canonical runtime types.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}

func typeOfValue(v any) cdmsilver.Type {
	switch v.(type) {
	case int64:
		return cdmsilver.Integer
	case float64:
		return cdmsilver.Double
	case bool:
		return cdmsilver.Boolean
	case time.Time:
		return cdmsilver.Timestamp
	}
	return cdmsilver.String
}

// castLayouts are the layouts a bare string-to-time cast accepts.
var castLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// castValue converts a value to a semantic type. Unparseable values become
// null; this mirrors the cast contract of distributed SQL engines so that a
// bad bronze cell degrades to null instead of failing a pipeline.
func castValue(v any, t cdmsilver.Type) any {
	if v == nil {
		return nil
	}
	v = normalize(v)
	switch t.Kind {
	case cdmsilver.KindString:
		return formatValue(v)

	case cdmsilver.KindInteger, cdmsilver.KindLong:
		switch x := v.(type) {
		case int64:
			return x
		case float64:
			return int64(x)
		case bool:
			if x {
				return int64(1)
			}
			return int64(0)
		case string:
			s := strings.TrimSpace(x)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return int64(f)
			}
		}
		return nil

	case cdmsilver.KindDouble:
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil

	case cdmsilver.KindDecimal:
		f, ok := toFloat(v)
		if !ok {
			return nil
		}
		p := math.Pow10(t.Scale)
		return math.Round(f*p) / p

	case cdmsilver.KindBoolean:
		switch x := v.(type) {
		case bool:
			return x
		case int64:
			return x != 0
		case float64:
			return x != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "true", "t", "yes", "y", "1":
				return true
			case "false", "f", "no", "n", "0":
				return false
			}
		}
		return nil

	case cdmsilver.KindTimestamp, cdmsilver.KindDate:
		var ts time.Time
		switch x := v.(type) {
		case time.Time:
			ts = x
		case string:
			s := strings.TrimSpace(x)
			ok := false
			for _, layout := range castLayouts {
				if parsed, err := time.Parse(layout, s); err == nil {
					ts, ok = parsed, true
					break
				}
			}
			if !ok {
				return nil
			}
		default:
			return nil
		}
		if t.Kind == cdmsilver.KindDate {
			y, m, d := ts.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		}
		return ts
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch x := normalize(v).(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// compareValues orders two non-null values. Numbers compare numerically
// (numeric strings included, so untyped bronze columns order sensibly),
// times chronologically, everything else lexically.
func compareValues(a, b any) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), true
		}
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	return strings.Compare(formatValue(a), formatValue(b)), true
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		return fa == fb
	}
	return formatValue(a) == formatValue(b)
}

// formatValue renders a value the way a string cast would.
func formatValue(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%v", v)
}

func initCap(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = strings.ToUpper(string(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
