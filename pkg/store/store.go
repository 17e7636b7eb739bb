// Package store persists monitored subreddits, their posts and the tokens
// extracted from each post.
//
// Every write that extraction can repeat is an upsert against a unique
// constraint, so re-running extraction never duplicates rows and never
// clobbers review state.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/daniel-butler/whoisthat/pkg/reference"
)

// Column widths.
const (
	MaxSourceNameLen  = 21
	MaxExternalIDLen  = 20
	MaxTitleLen       = 300
	MaxPermalinkLen   = 255
	MaxTokenLen       = 100
	MaxTranslationLen = 100
)

// Driver selects the SQL backend.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "postgres"
)

// Store is the SQL-backed post and token store.
type Store struct {
	db     *sql.DB
	driver Driver
}

// Open connects to dsn with the given driver and creates any missing
// tables. For SQLite, dsn is a file path or ":memory:".
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	switch driver {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, driver: driver}
	if driver == SQLite {
		// One connection keeps ":memory:" databases shared and pragmas applied.
		db.SetMaxOpenConns(1)
		// Other processes may write the same file; wait for their locks
		// instead of failing with SQLITE_BUSY.
		for _, pragma := range []string{
			"PRAGMA busy_timeout=5000",
			"PRAGMA journal_mode=WAL",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("%s: %w", pragma, err)
			}
		}
	}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the backend in use.
func (s *Store) Driver() Driver {
	return s.driver
}

func (s *Store) initSchema(ctx context.Context) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == Postgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}
	statusLen := reference.MaxCodeLen(reference.RedditStatuses())
	posLen := reference.MaxCodeLen(reference.PartsOfSpeech())

	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS sources (
			id %[1]s,
			name VARCHAR(%[2]d) NOT NULL CHECK (length(name) <= %[2]d),
			status VARCHAR(%[3]d) NOT NULL DEFAULT 'A' CHECK (length(status) <= %[3]d),
			auto_post BOOLEAN NOT NULL DEFAULT FALSE,
			listen BOOLEAN NOT NULL DEFAULT TRUE,
			allow_multiple_replies_in_post BOOLEAN NOT NULL DEFAULT FALSE,
			max_post_age_days INTEGER NOT NULL DEFAULT 7 CHECK (max_post_age_days >= 0),
			CONSTRAINT uq_sources_name UNIQUE (name)
		);

		CREATE TABLE IF NOT EXISTS posts (
			id %[1]s,
			source_id BIGINT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
			external_id VARCHAR(%[4]d) NOT NULL CHECK (length(external_id) <= %[4]d),
			title VARCHAR(%[5]d) NOT NULL,
			permalink VARCHAR(%[6]d) NOT NULL,
			created_at BIGINT NOT NULL,
			tokenized SMALLINT,
			CONSTRAINT uq_posts_external_id UNIQUE (external_id)
		);

		CREATE INDEX IF NOT EXISTS idx_posts_pending ON posts(source_id, tokenized, created_at);

		CREATE TABLE IF NOT EXISTS person_tokens (
			id %[1]s,
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			token VARCHAR(%[7]d) NOT NULL CHECK (length(token) <= %[7]d),
			confirmed SMALLINT,
			corrected SMALLINT,
			CONSTRAINT uq_person_tokens_post_token UNIQUE (post_id, token)
		);

		CREATE INDEX IF NOT EXISTS idx_person_tokens_token ON person_tokens(token);

		CREATE TABLE IF NOT EXISTS non_person_tokens (
			id %[1]s,
			post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			token VARCHAR(%[7]d) NOT NULL CHECK (length(token) <= %[7]d),
			pos_tag VARCHAR(%[8]d) NOT NULL DEFAULT '',
			pos_reviewed BOOLEAN NOT NULL DEFAULT FALSE,
			person_translation VARCHAR(%[7]d),
			CONSTRAINT uq_non_person_tokens_post_token UNIQUE (post_id, token)
		);

		CREATE INDEX IF NOT EXISTS idx_non_person_tokens_token ON non_person_tokens(token);
	`, idColumn, MaxSourceNameLen, statusLen, MaxExternalIDLen, MaxTitleLen, MaxPermalinkLen, MaxTokenLen, posLen)

	// lib/pq runs multi-statement strings only without parameters, which is
	// the case here; sqlite accepts them as-is.
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}
