package repository

import (
	"context"

	"TelescopeStatus/internal/domain/models"
)

// Archive is the remote observation archive.
type Archive interface {
	// Login authenticates subsequent queries with a token.
	Login(ctx context.Context, token string) error
	// ListMissions returns the archive's current collection identifiers.
	ListMissions(ctx context.Context) ([]string, error)
	QueryObservations(ctx context.Context, q models.ObservationQuery) (*models.Table, error)
}

// TableStore persists observation tables to local files.
type TableStore interface {
	Load(path string, format Format) (*models.Table, error)
	Save(t *models.Table, path string, format Format) error
}

type Metrics interface {
	RecordFetch(telescope string, rows int, seconds float64)
	RecordError(kind string)
	RecordCacheLookup(source string, hit bool)
}

// RefreshNotifier is told whenever a telescope table is replaced.
type RefreshNotifier interface {
	Publish(ev models.RefreshEvent)
}
