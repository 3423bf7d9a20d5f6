// Package sqlite persists silver datasets into a SQLite database, standing
// in for a governed table catalog in local deployments. Managed tables get
// entity and column descriptions recorded in a cdm_comments side table,
// the local analogue of catalog COMMENT metadata.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	cs "github.com/cdmsilver/cdmsilver"
)

const commentsDDL = `CREATE TABLE IF NOT EXISTS cdm_comments (
	table_name  TEXT NOT NULL,
	column_name TEXT NOT NULL DEFAULT '',
	comment     TEXT NOT NULL,
	PRIMARY KEY (table_name, column_name)
)`

// Store is a TableStore over a SQLite database. It also implements
// ManagedTableStore and CommentStore.
type Store struct {
	db *sql.DB
}

// Open opens (creating when absent) a SQLite-backed store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	if _, err := db.Exec(commentsDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init comments table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Write persists the dataset under a table named after the location path.
func (s *Store) Write(ctx context.Context, ds cs.Dataset, location string) error {
	return s.replaceTable(ctx, ds, tableName(location))
}

// WriteManaged persists the dataset under the given table name.
func (s *Store) WriteManaged(ctx context.Context, ds cs.Dataset, name string) error {
	return s.replaceTable(ctx, ds, tableName(name))
}

// SetTableComment records an entity-level description.
func (s *Store) SetTableComment(ctx context.Context, table, comment string) error {
	return s.setComment(ctx, tableName(table), "", comment)
}

// SetColumnComment records a column-level description.
func (s *Store) SetColumnComment(ctx context.Context, table, column, comment string) error {
	return s.setComment(ctx, tableName(table), column, comment)
}

func (s *Store) setComment(ctx context.Context, table, column, comment string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cdm_comments (table_name, column_name, comment) VALUES (?, ?, ?)
		 ON CONFLICT (table_name, column_name) DO UPDATE SET comment = excluded.comment`,
		table, column, comment)
	if err != nil {
		return fmt.Errorf("catalog: set comment on %s: %w", table, err)
	}
	return nil
}

// replaceTable drops and recreates the table from the dataset's schema,
// then loads every row in one transaction (mode overwrite).
func (s *Store) replaceTable(ctx context.Context, ds cs.Dataset, table string) error {
	schema := ds.Schema()
	if len(schema) == 0 {
		return fmt.Errorf("catalog: %s: dataset has no columns", table)
	}
	rows, err := ds.Rows()
	if err != nil {
		return fmt.Errorf("catalog: %s: materialize: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: %s: begin: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		return fmt.Errorf("catalog: %s: drop: %w", table, err)
	}
	cols := make([]string, len(schema))
	for i, f := range schema {
		cols[i] = fmt.Sprintf("%q %s", f.Name, affinity(f.Type))
	}
	ddl := fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("catalog: %s: create: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(schema)), ", ")
	insert := fmt.Sprintf("INSERT INTO %q VALUES (%s)", table, placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("catalog: %s: prepare: %w", table, err)
	}
	defer stmt.Close()
	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = driverValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("catalog: %s: insert: %w", table, err)
		}
	}
	return tx.Commit()
}

// affinity maps semantic types onto SQLite column affinities.
func affinity(t cs.Type) string {
	switch t.Kind {
	case cs.KindInteger, cs.KindLong, cs.KindBoolean:
		return "INTEGER"
	case cs.KindDouble, cs.KindDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func driverValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

// tableName reduces a location path or qualified name to a bare SQLite
// table identifier: path separators and dots become underscores.
func tableName(location string) string {
	name := strings.Trim(location, "/")
	name = strings.NewReplacer("/", "_", ".", "_", "`", "").Replace(name)
	if name == "" {
		return "silver"
	}
	return name
}
