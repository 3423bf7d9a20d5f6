package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	cs "github.com/cdmsilver/cdmsilver"
	"github.com/cdmsilver/cdmsilver/catalog/sqlite"
	"github.com/cdmsilver/cdmsilver/memds"
)

func openStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silver.db")
	store, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func accountDataset() cs.Dataset {
	schema := cs.Schema{
		{Name: "accountId", Type: cs.String, Nullable: false},
		{Name: "balance", Type: cs.Decimal(18, 2), Nullable: true},
		{Name: "isActive", Type: cs.Boolean, Nullable: true},
		{Name: "openedOn", Type: cs.Date, Nullable: true},
	}
	return memds.New(schema, [][]any{
		{"A1", 100.50, true, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"A2", nil, false, nil},
	})
}

func TestWriteManagedAndComments(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()

	if err := store.WriteManaged(ctx, accountDataset(), "silver.account"); err != nil {
		t.Fatalf("WriteManaged: %v", err)
	}
	if err := store.SetTableComment(ctx, "silver.account", "Customer accounts"); err != nil {
		t.Fatalf("SetTableComment: %v", err)
	}
	if err := store.SetColumnComment(ctx, "silver.account", "balance", "Current balance"); err != nil {
		t.Fatalf("SetColumnComment: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "silver_account"`).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 2 {
		t.Errorf("row count = %d, want 2", n)
	}

	var active int
	var balance float64
	err = db.QueryRow(`SELECT "isActive", "balance" FROM "silver_account" WHERE "accountId" = 'A1'`).
		Scan(&active, &balance)
	if err != nil {
		t.Fatalf("read A1: %v", err)
	}
	if active != 1 || balance != 100.50 {
		t.Errorf("A1 = (%d, %v)", active, balance)
	}

	var comment string
	err = db.QueryRow(`SELECT comment FROM cdm_comments WHERE table_name = 'silver_account' AND column_name = ''`).
		Scan(&comment)
	if err != nil {
		t.Fatalf("read table comment: %v", err)
	}
	if comment != "Customer accounts" {
		t.Errorf("table comment = %q", comment)
	}
}

func TestWriteOverwrites(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, accountDataset(), "/silver/account"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// A second write replaces the table, it does not append.
	if err := store.Write(ctx, accountDataset(), "/silver/account"); err != nil {
		t.Fatalf("Write (second): %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "silver_account"`).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 2 {
		t.Errorf("row count after rewrite = %d, want 2", n)
	}
}

func TestCommentUpsert(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()

	if err := store.SetTableComment(ctx, "t", "first"); err != nil {
		t.Fatalf("SetTableComment: %v", err)
	}
	if err := store.SetTableComment(ctx, "t", "second"); err != nil {
		t.Fatalf("SetTableComment (update): %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var comment string
	if err := db.QueryRow(`SELECT comment FROM cdm_comments WHERE table_name = 't'`).Scan(&comment); err != nil {
		t.Fatalf("read comment: %v", err)
	}
	if comment != "second" {
		t.Errorf("comment = %q, want the updated value", comment)
	}
}
