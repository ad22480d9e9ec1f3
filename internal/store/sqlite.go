package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/people-finder/internal/merge"
	"github.com/sells-group/people-finder/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS persons (
	id         TEXT PRIMARY KEY,
	full_name  TEXT NOT NULL,
	linkedin   TEXT NOT NULL DEFAULT '',
	doc        TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (full_name, linkedin)
);

CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	candidate_ids TEXT NOT NULL,
	answers       TEXT NOT NULL,
	flow_state    TEXT NOT NULL,
	cache_key     TEXT NOT NULL,
	from_cache    INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_persons_full_name ON persons(full_name);
CREATE INDEX IF NOT EXISTS idx_sessions_flow_state ON sessions(flow_state);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertPerson(ctx context.Context, p model.Person) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, doc FROM persons WHERE full_name = ? AND linkedin = ?`,
		p.FullName, p.Social.LinkedIn,
	)

	var existingID, existingDoc string
	err := row.Scan(&existingID, &existingDoc)
	switch {
	case err == sql.ErrNoRows:
		return s.insertPerson(ctx, p)
	case err != nil:
		return nil, eris.Wrap(err, "sqlite: lookup person")
	}

	var existing model.Person
	if err := json.Unmarshal([]byte(existingDoc), &existing); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal person")
	}

	merged := merge.Merge(existing, p)
	merged.ID = existingID

	doc, err := json.Marshal(merged)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal person")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE persons SET doc = ?, updated_at = ? WHERE id = ?`,
		string(doc), time.Now().UTC(), existingID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update person %s", existingID)
	}
	if err := checkRowsAffected(res, "person", existingID); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *SQLiteStore) insertPerson(ctx context.Context, p model.Person) (*model.Person, error) {
	p.ID = uuid.New().String()
	now := time.Now().UTC()

	doc, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal person")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO persons (id, full_name, linkedin, doc, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.FullName, p.Social.LinkedIn, string(doc), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert person")
	}
	return &p, nil
}

func (s *SQLiteStore) GetPerson(ctx context.Context, id string) (*model.Person, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM persons WHERE id = ?`, id)

	var doc string
	err := row.Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get person %s", id)
	}
	return unmarshalPerson(doc, id)
}

func (s *SQLiteStore) GetPersons(ctx context.Context, ids []string) ([]model.Person, error) {
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

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.Session) error {
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
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, query, candidate_ids, answers, flow_state, cache_key, from_cache, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Query, ids, answers, string(sess.FlowState), sess.CacheKey, sess.FromCache, now, now,
	)
	return eris.Wrap(err, "sqlite: insert session")
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, candidate_ids, answers, flow_state, cache_key, from_cache, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	return scanSession(row)
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *model.Session) error {
	sess.UpdatedAt = time.Now().UTC()

	ids, answers, err := marshalSessionFields(sess)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET candidate_ids = ?, answers = ?, flow_state = ?, updated_at = ? WHERE id = ?`,
		ids, answers, string(sess.FlowState), sess.UpdatedAt, sess.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update session %s", sess.ID)
	}
	return checkRowsAffected(res, "session", sess.ID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func unmarshalPerson(doc, id string) (*model.Person, error) {
	var p model.Person
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal person %s", id)
	}
	p.ID = id
	return &p, nil
}

func marshalSessionFields(sess *model.Session) (ids, answers string, err error) {
	idsJSON, err := json.Marshal(sess.CandidateIDs)
	if err != nil {
		return "", "", eris.Wrap(err, "store: marshal candidate ids")
	}
	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return "", "", eris.Wrap(err, "store: marshal answers")
	}
	return string(idsJSON), string(answersJSON), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSession(row scannable) (*model.Session, error) {
	var sess model.Session
	var ids, answers, state string

	err := row.Scan(&sess.ID, &sess.Query, &ids, &answers, &state, &sess.CacheKey,
		&sess.FromCache, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan session")
	}

	if err := json.Unmarshal([]byte(ids), &sess.CandidateIDs); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal candidate ids")
	}
	if err := json.Unmarshal([]byte(answers), &sess.Answers); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal answers")
	}
	sess.FlowState = model.FlowState(state)
	return &sess, nil
}
