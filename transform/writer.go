package transform

import (
	"context"
	"fmt"

	cs "github.com/cdmsilver/cdmsilver"
)

// WriteRequest describes one silver write. Location is the plain path the
// write falls back to; ManagedName, when set, requests a catalog-managed
// table with the descriptions attached as comments.
type WriteRequest struct {
	Location           string
	ManagedName        string
	EntityDescription  string
	ColumnDescriptions map[string]string
}

// WriteSilver persists a transformed dataset through the engine's table
// store. A managed write is attempted first when requested and supported;
// if it fails for any reason the engine records a warning and falls back to
// the plain location write instead of aborting. The fallback is a
// resilience feature, visible on the Diag, not silent data loss.
func (e *Engine) WriteSilver(ctx context.Context, ds cs.Dataset, req WriteRequest) (*cs.Diag, error) {
	diag := &cs.Diag{}
	if e.store == nil {
		return diag, fmt.Errorf("transform: write silver: no table store configured")
	}

	if req.ManagedName != "" {
		if managed, ok := e.store.(cs.ManagedTableStore); ok {
			err := e.writeManaged(ctx, managed, ds, req)
			if err == nil {
				return diag, nil
			}
			diag.Warnf(cs.CodeCatalogFallback, req.ManagedName,
				"catalog write failed (%v), falling back to %s", err, req.Location)
		} else {
			diag.Warnf(cs.CodeCatalogFallback, req.ManagedName,
				"store does not support managed tables, falling back to %s", req.Location)
		}
	}

	if err := e.store.Write(ctx, ds, req.Location); err != nil {
		return diag, fmt.Errorf("transform: write silver to %s: %w", req.Location, err)
	}
	return diag, nil
}

// writeManaged writes the managed table and attaches descriptive metadata.
// Comment attachment failures fail the managed path as a whole so the
// caller falls back to a plain write.
func (e *Engine) writeManaged(ctx context.Context, store cs.ManagedTableStore, ds cs.Dataset, req WriteRequest) error {
	if err := store.WriteManaged(ctx, ds, req.ManagedName); err != nil {
		return err
	}
	comments, ok := e.store.(cs.CommentStore)
	if !ok {
		return nil
	}
	if req.EntityDescription != "" {
		if err := comments.SetTableComment(ctx, req.ManagedName, req.EntityDescription); err != nil {
			return fmt.Errorf("table comment: %w", err)
		}
	}
	if len(req.ColumnDescriptions) > 0 {
		for _, name := range ds.Columns() {
			desc := req.ColumnDescriptions[name]
			if desc == "" {
				continue
			}
			if err := comments.SetColumnComment(ctx, req.ManagedName, name, desc); err != nil {
				return fmt.Errorf("column comment %s: %w", name, err)
			}
		}
	}
	return nil
}
