package cdmsilver

import "context"

// TableStore is the boundary to a persisted table layer. Write is the only
// required operation; richer catalogs additionally implement
// ManagedTableStore and CommentStore, which callers discover by type
// assertion.
type TableStore interface {
	// Write persists the dataset at a location path, replacing any previous
	// contents.
	Write(ctx context.Context, ds Dataset, location string) error
}

// ManagedTableStore persists datasets as catalog-managed, schema-tagged
// tables addressed by a fully qualified name.
type ManagedTableStore interface {
	WriteManaged(ctx context.Context, ds Dataset, name string) error
}

// CommentStore attaches descriptive metadata to managed tables after a
// write.
type CommentStore interface {
	SetTableComment(ctx context.Context, table, comment string) error
	SetColumnComment(ctx context.Context, table, column, comment string) error
}
