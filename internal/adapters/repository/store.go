// Package repository holds normalized tables keyed by upload identity.
package repository

import (
	"context"

	"github.com/okian/mailboard/internal/domain/model"
)

// Store provides access to normalized tables by dataset id (the hex
// SHA-256 of the uploaded bytes).
type Store interface {
	// Get returns the table for id or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Table, error)

	// Put stores t under t.Source.ID and returns the ids evicted to stay
	// within capacity.
	Put(ctx context.Context, t *model.Table) ([]string, error)

	// Delete drops id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Len returns the number of cached tables.
	Len(ctx context.Context) int
}
