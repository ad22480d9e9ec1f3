package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/people-finder/internal/model"
)

// ErrNotFound is returned for lookups of missing persons or sessions.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence interface for persons and funnel sessions.
//
// UpsertPerson is keyed on (full_name, social.linkedin) and enriches:
// an existing row is merged with the incoming candidate field by field,
// values are added but never removed. The returned person carries the
// stable ID.
type Store interface {
	// Persons
	UpsertPerson(ctx context.Context, p model.Person) (*model.Person, error)
	GetPerson(ctx context.Context, id string) (*model.Person, error)
	GetPersons(ctx context.Context, ids []string) ([]model.Person, error)

	// Sessions
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	UpdateSession(ctx context.Context, s *model.Session) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
