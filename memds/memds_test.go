package memds_test

import (
	"testing"
	"time"

	cs "github.com/cdmsilver/cdmsilver"
	"github.com/cdmsilver/cdmsilver/memds"
)

func mustCount(t *testing.T, ds cs.Dataset) int64 {
	t.Helper()
	n, err := ds.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	return n
}

func mustRows(t *testing.T, ds cs.Dataset) [][]any {
	t.Helper()
	rows, err := ds.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	return rows
}

func TestSelectAndFilter(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"id", "status"},
		[][]any{
			{"1", "active"},
			{"2", "closed"},
			{"3", nil},
		})

	active, err := tbl.Filter(cs.Eq(cs.Col("status"), cs.Lit("active")))
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if n := mustCount(t, active); n != 1 {
		t.Errorf("active count = %d, want 1", n)
	}

	// A null status compares to null, which is not true, so the row drops.
	notActive, err := tbl.Filter(cs.Not(cs.Eq(cs.Col("status"), cs.Lit("active"))))
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if n := mustCount(t, notActive); n != 1 {
		t.Errorf("not-active count = %d, want 1", n)
	}

	upper, err := tbl.Select(cs.As(cs.Upper(cs.Col("status")), "status"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	rows := mustRows(t, upper)
	if rows[0][0] != "ACTIVE" {
		t.Errorf("rows[0] = %v, want ACTIVE", rows[0][0])
	}
	if rows[2][0] != nil {
		t.Errorf("rows[2] = %v, want nil through Upper", rows[2][0])
	}
}

func TestWithColumnReplaces(t *testing.T) {
	tbl := memds.FromRecords([]string{"a"}, [][]any{{"x"}})
	ds, err := tbl.WithColumn("b", cs.Lit(int64(1)))
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	ds, err = ds.WithColumn("b", cs.Lit(int64(2)))
	if err != nil {
		t.Fatalf("WithColumn (replace): %v", err)
	}
	if cols := ds.Columns(); len(cols) != 2 {
		t.Fatalf("columns = %v, want [a b]", cols)
	}
	if rows := mustRows(t, ds); rows[0][1] != int64(2) {
		t.Errorf("b = %v, want 2", rows[0][1])
	}
}

func TestDistinctAndSubtract(t *testing.T) {
	tbl := memds.FromRecords([]string{"v"}, [][]any{{"a"}, {"b"}, {"a"}, {nil}, {nil}})
	distinct, err := tbl.Distinct()
	if err != nil {
		t.Fatalf("Distinct: %v", err)
	}
	if n := mustCount(t, distinct); n != 3 {
		t.Errorf("distinct count = %d, want 3 (a, b, null)", n)
	}

	other := memds.FromRecords([]string{"v"}, [][]any{{"a"}})
	diff, err := distinct.Subtract(other)
	if err != nil {
		t.Fatalf("Subtract: %v", err)
	}
	if n := mustCount(t, diff); n != 2 {
		t.Errorf("difference count = %d, want 2", n)
	}
}

func TestRankRows(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"key", "modified"},
		[][]any{
			{"k1", "2024-01-05"},
			{"k1", "2024-01-09"},
			{"k1", nil},
			{"k2", "2024-02-01"},
		})

	ranked, err := tbl.RankRows("key", "modified", "_row_num")
	if err != nil {
		t.Fatalf("RankRows: %v", err)
	}
	rows := mustRows(t, ranked)
	wantRanks := []int64{2, 1, 3, 1} // newest first, null last
	for i, want := range wantRanks {
		if got := rows[i][2]; got != want {
			t.Errorf("row %d rank = %v, want %d", i, got, want)
		}
	}
}

func TestRankRowsTiesKeepInputOrder(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"key", "ord"},
		[][]any{
			{"k", "5"},
			{"k", "5"},
		})
	ranked, err := tbl.RankRows("key", "ord", "r")
	if err != nil {
		t.Fatalf("RankRows: %v", err)
	}
	rows := mustRows(t, ranked)
	if rows[0][2] != int64(1) || rows[1][2] != int64(2) {
		t.Errorf("tie ranks = %v, %v; want 1, 2", rows[0][2], rows[1][2])
	}
}

func TestCastLenient(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"v"},
		[][]any{{"12"}, {"12.9"}, {"oops"}, {nil}})

	ds, err := tbl.Select(cs.As(cs.Cast(cs.Col("v"), cs.Integer), "v"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	rows := mustRows(t, ds)
	want := []any{int64(12), int64(12), nil, nil}
	for i, w := range want {
		if rows[i][0] != w {
			t.Errorf("row %d = %v, want %v", i, rows[i][0], w)
		}
	}
}

func TestCastDecimalRounds(t *testing.T) {
	tbl := memds.FromRecords([]string{"v"}, [][]any{{"10.555"}})
	ds, err := tbl.Select(cs.As(cs.Cast(cs.Col("v"), cs.Decimal(18, 2)), "v"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := mustRows(t, ds)[0][0]; got != 10.56 {
		t.Errorf("decimal(18,2) cast = %v, want 10.56", got)
	}
}

func TestCastTimestampAndDate(t *testing.T) {
	tbl := memds.FromRecords([]string{"v"}, [][]any{{"2024-03-10 14:30:00"}})
	ds, err := tbl.Select(
		cs.As(cs.Cast(cs.Col("v"), cs.Timestamp), "ts"),
		cs.As(cs.Cast(cs.Col("v"), cs.Date), "d"),
	)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	row := mustRows(t, ds)[0]
	ts, ok := row[0].(time.Time)
	if !ok || ts.Hour() != 14 {
		t.Errorf("ts = %v, want 2024-03-10 14:30:00", row[0])
	}
	d, ok := row[1].(time.Time)
	if !ok || d.Hour() != 0 || d.Day() != 10 {
		t.Errorf("d = %v, want 2024-03-10 truncated", row[1])
	}
}

func TestCastBooleanWords(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"v"},
		[][]any{{"yes"}, {"0"}, {"maybe"}})
	ds, err := tbl.Select(cs.As(cs.Cast(cs.Col("v"), cs.Boolean), "v"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	rows := mustRows(t, ds)
	want := []any{true, false, nil}
	for i, w := range want {
		if rows[i][0] != w {
			t.Errorf("row %d = %v, want %v", i, rows[i][0], w)
		}
	}
}

func TestCoalesceAndConcat(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"full", "first", "last"},
		[][]any{
			{nil, "jan", "peeters"},
			{"Ann Smith", "x", "y"},
		})
	ds, err := tbl.Select(cs.As(
		cs.Coalesce(
			cs.InitCap(cs.Trim(cs.Col("full"))),
			cs.ConcatWS(" ", cs.InitCap(cs.Col("first")), cs.InitCap(cs.Col("last"))),
		), "name"))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	rows := mustRows(t, ds)
	if rows[0][0] != "Jan Peeters" {
		t.Errorf("row 0 = %v, want Jan Peeters", rows[0][0])
	}
	if rows[1][0] != "Ann Smith" {
		t.Errorf("row 1 = %v, want Ann Smith", rows[1][0])
	}
}

func TestThreeValuedBool(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"v"},
		[][]any{{nil}})
	// Eq against null yields null, but true OR null is still true.
	kept, err := tbl.Filter(cs.Or(cs.IsNull(cs.Col("v")), cs.Eq(cs.Col("v"), cs.Lit("x"))))
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if n := mustCount(t, kept); n != 1 {
		t.Errorf("count = %d, want 1 (true OR null is true)", n)
	}
}
