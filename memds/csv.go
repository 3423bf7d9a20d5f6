package memds

import (
	"encoding/csv"
	"fmt"
	"io"

	cdmsilver "github.com/cdmsilver/cdmsilver"
)

// ReadCSV loads a headered CSV stream into an untyped table. Empty cells
// become null.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("memds: csv header: %w", err)
	}
	var rows [][]any
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("memds: csv row %d: %w", len(rows)+2, err)
		}
		row := make([]any, len(record))
		for i, cell := range record {
			if cell == "" {
				continue
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}
	return FromRecords(header, rows), nil
}

// WriteCSV renders any dataset as headered CSV. Null renders as an empty
// cell.
func WriteCSV(w io.Writer, ds cdmsilver.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns()); err != nil {
		return err
	}
	rows, err := ds.Rows()
	if err != nil {
		return err
	}
	record := make([]string, len(ds.Columns()))
	for _, row := range rows {
		for i, v := range row {
			if v == nil {
				record[i] = ""
				continue
			}
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
