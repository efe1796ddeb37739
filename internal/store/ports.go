package store

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for record storage backends.
type (
	RecordWriter interface {
		// Add appends r after every record already stored.
		Add(ctx context.Context, r core.Record) error
	}

	RecordRemover interface {
		// Remove drops the record with the given id. Unknown ids are not an error.
		Remove(ctx context.Context, id string) (removed bool, err error)
	}

	RecordLister interface {
		// List returns a copy of all records in insertion order.
		List(ctx context.Context) ([]core.Record, error)
	}

	Store interface {
		RecordWriter
		RecordRemover
		RecordLister
	}
)
