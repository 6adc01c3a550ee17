package repository

import (
	"context"

	"github.com/eslsoft/wordbook/internal/entity"
)

// EntryRepository mirrors the ordered entry list to durable storage.
// Implementations always read and write the whole sequence; position is identity.
type EntryRepository interface {
	// Load returns the stored entries in order. A store that has never been
	// written yields an empty slice and a nil error.
	Load(ctx context.Context) ([]entity.Entry, error)
	// Save overwrites the stored sequence with entries.
	Save(ctx context.Context, entries []entity.Entry) error
}
