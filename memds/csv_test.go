package memds_test

import (
	"strings"
	"testing"

	"github.com/cdmsilver/cdmsilver/memds"
)

func TestReadCSV(t *testing.T) {
	in := "id,name,balance\n1,Alice,100.50\n2,,75\n"
	tbl, err := memds.ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if cols := tbl.Columns(); len(cols) != 3 || cols[1] != "name" {
		t.Fatalf("columns = %v", cols)
	}
	rows := mustRows(t, tbl)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][1] != "Alice" {
		t.Errorf("rows[0][1] = %v", rows[0][1])
	}
	if rows[1][1] != nil {
		t.Errorf("empty cell = %v, want nil", rows[1][1])
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := memds.FromRecords(
		[]string{"id", "note"},
		[][]any{
			{"1", "hello"},
			{"2", nil},
		})
	var b strings.Builder
	if err := memds.WriteCSV(&b, tbl); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "id,note\n1,hello\n2,\n"
	if b.String() != want {
		t.Errorf("output = %q, want %q", b.String(), want)
	}

	back, err := memds.ReadCSV(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	rows := mustRows(t, back)
	if rows[1][1] != nil {
		t.Errorf("null did not survive the round trip: %v", rows[1][1])
	}
}
