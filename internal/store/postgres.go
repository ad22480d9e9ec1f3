package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/people-finder/internal/merge"
	"github.com/sells-group/people-finder/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, small enough for
// pgxmock to stand in during tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS persons (
	id         TEXT PRIMARY KEY,
	full_name  TEXT NOT NULL,
	linkedin   TEXT NOT NULL DEFAULT '',
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (full_name, linkedin)
);

CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	candidate_ids JSONB NOT NULL,
	answers       JSONB NOT NULL,
	flow_state    TEXT NOT NULL,
	cache_key     TEXT NOT NULL,
	from_cache    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_persons_full_name ON persons(full_name);
CREATE INDEX IF NOT EXISTS idx_sessions_flow_state ON sessions(flow_state);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertPerson(ctx context.Context, p model.Person) (*model.Person, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, doc FROM persons WHERE full_name = $1 AND linkedin = $2`,
		p.FullName, p.Social.LinkedIn,
	)

	var existingID string
	var existingDoc []byte
	err := row.Scan(&existingID, &existingDoc)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return s.insertPerson(ctx, p)
	case err != nil:
		return nil, eris.Wrap(err, "postgres: lookup person")
	}

	var existing model.Person
	if err := json.Unmarshal(existingDoc, &existing); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal person")
	}

	merged := merge.Merge(existing, p)
	merged.ID = existingID

	doc, err := json.Marshal(merged)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal person")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE persons SET doc = $1, updated_at = now() WHERE id = $2`,
		doc, existingID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update person %s", existingID)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Errorf("person not found: %s", existingID)
	}
	return &merged, nil
}

func (s *PostgresStore) insertPerson(ctx context.Context, p model.Person) (*model.Person, error) {
	p.ID = uuid.New().String()

	doc, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal person")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO persons (id, full_name, linkedin, doc) VALUES ($1, $2, $3, $4)`,
		p.ID, p.FullName, p.Social.LinkedIn, doc,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert person")
	}
	return &p, nil
}

func (s *PostgresStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	row := s.pool.QueryRow(ctx, `SELECT doc FROM persons WHERE id = $1`, id)

	var doc []byte
	err := row.Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get person %s", id)
	}
	return unmarshalPerson(string(doc), id)
}

func (s *PostgresStore) GetPersons(ctx context.Context, ids []string) ([]model.Person, error) {
	persons := make([]model.Person, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetPerson(ctx, id)
		if eris.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		persons = append(persons, *p)
	}
	return persons, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *model.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	sess.CreatedAt = now
	sess.UpdatedAt = now

	ids, answers, err := marshalSessionFields(sess)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (id, query, candidate_ids, answers, flow_state, cache_key, from_cache, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sess.ID, sess.Query, ids, answers, string(sess.FlowState), sess.CacheKey, sess.FromCache, now, now,
	)
	return eris.Wrap(err, "postgres: insert session")
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, query, candidate_ids, answers, flow_state, cache_key, from_cache, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	)

	var sess model.Session
	var ids, answers []byte
	var state string
	err := row.Scan(&sess.ID, &sess.Query, &ids, &answers, &state, &sess.CacheKey,
		&sess.FromCache, &sess.CreatedAt, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan session")
	}

	if err := json.Unmarshal(ids, &sess.CandidateIDs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal candidate ids")
	}
	if err := json.Unmarshal(answers, &sess.Answers); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal answers")
	}
	sess.FlowState = model.FlowState(state)
	return &sess, nil
}

func (s *PostgresStore) UpdateSession(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = time.Now().UTC()

	ids, answers, err := marshalSessionFields(sess)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET candidate_ids = $1, answers = $2, flow_state = $3, updated_at = $4 WHERE id = $5`,
		ids, answers, string(sess.FlowState), sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update session %s", sess.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("session not found: %s", sess.ID)
	}
	return nil
}
