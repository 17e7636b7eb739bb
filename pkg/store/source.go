package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/daniel-butler/whoisthat/pkg/errs"
	"github.com/daniel-butler/whoisthat/pkg/reference"
)

// DefaultMaxPostAgeDays bounds how old a post may be and still be worked on.
const DefaultMaxPostAgeDays = 7

// Source is a monitored subreddit and the flags that gate the bot on it.
type Source struct {
	ID                         int64
	Name                       string
	Status                     reference.RedditStatus
	AutoPost                   bool
	Listen                     bool
	AllowMultipleRepliesInPost bool
	MaxPostAgeDays             int
}

// NewSource returns a source with the default flags.
func NewSource(name string) Source {
	return Source{
		Name:           name,
		Status:         reference.StatusActive,
		Listen:         true,
		MaxPostAgeDays: DefaultMaxPostAgeDays,
	}
}

func (s Source) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Status.Label())
}

// Validate checks the bounded and enumerated fields.
func (s Source) Validate() error {
	if s.Name == "" {
		return errs.Validation("source name is required")
	}
	if utf8.RuneCountInString(s.Name) > MaxSourceNameLen {
		return errs.Validation("source name %q exceeds %d characters", s.Name, MaxSourceNameLen)
	}
	if !s.Status.Valid() {
		return errs.Validation("source %q has unknown status %q", s.Name, s.Status)
	}
	if s.MaxPostAgeDays < 0 {
		return errs.Validation("source %q has negative max_post_age_days %d", s.Name, s.MaxPostAgeDays)
	}
	return nil
}

// IsActive reports whether the source is in the Active state.
func (s Source) IsActive() bool {
	return s.Status == reference.StatusActive
}

// ShouldListen reports whether new posts should be ingested.
func (s Source) ShouldListen() bool {
	return s.IsActive() && s.Listen
}

// ShouldPost reports whether replies may be published automatically.
func (s Source) ShouldPost() bool {
	return s.IsActive() && s.AutoPost
}

// CanReply reports whether another reply may go to a post that already
// has unconfirmed replies pending.
func (s Source) CanReply(unconfirmed int) bool {
	return s.AllowMultipleRepliesInPost || unconfirmed == 0
}

// Cutoff returns the creation time before which posts are too old.
func (s Source) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -s.MaxPostAgeDays)
}

const sourceColumns = `id, name, status, auto_post, listen, allow_multiple_replies_in_post, max_post_age_days`

// CreateSource inserts src and sets its ID. A name already in use is a
// validation error.
func (s *Store) CreateSource(ctx context.Context, src *Source) error {
	if err := src.Validate(); err != nil {
		return err
	}

	err := s.queryRow(ctx,
		`INSERT INTO sources (name, status, auto_post, listen, allow_multiple_replies_in_post, max_post_age_days)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id`,
		src.Name, string(src.Status), src.AutoPost, src.Listen, src.AllowMultipleRepliesInPost, src.MaxPostAgeDays,
	).Scan(&src.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Validation("source %q already exists", src.Name)
	}
	return err
}

// UpdateSource writes every field of src except its name.
func (s *Store) UpdateSource(ctx context.Context, src Source) error {
	if err := src.Validate(); err != nil {
		return err
	}
	res, err := s.exec(ctx,
		`UPDATE sources SET status = ?, auto_post = ?, listen = ?, allow_multiple_replies_in_post = ?, max_post_age_days = ?
		 WHERE id = ?`,
		string(src.Status), src.AutoPost, src.Listen, src.AllowMultipleRepliesInPost, src.MaxPostAgeDays, src.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(res, "source", src.ID)
}

// SyncSources creates or updates each source by name in one transaction and
// returns them with IDs set.
func (s *Store) SyncSources(ctx context.Context, sources []Source) ([]Source, error) {
	for _, src := range sources {
		if err := src.Validate(); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]Source, len(sources))
	for i, src := range sources {
		err := tx.QueryRowContext(ctx, s.rebind(
			`INSERT INTO sources (name, status, auto_post, listen, allow_multiple_replies_in_post, max_post_age_days)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET
				status = excluded.status,
				auto_post = excluded.auto_post,
				listen = excluded.listen,
				allow_multiple_replies_in_post = excluded.allow_multiple_replies_in_post,
				max_post_age_days = excluded.max_post_age_days
			 RETURNING id`),
			src.Name, string(src.Status), src.AutoPost, src.Listen, src.AllowMultipleRepliesInPost, src.MaxPostAgeDays,
		).Scan(&src.ID)
		if err != nil {
			return nil, fmt.Errorf("syncing source %s: %w", src.Name, err)
		}
		out[i] = src
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSource retrieves a source by ID, or nil if there is none.
func (s *Store) GetSource(ctx context.Context, id int64) (*Source, error) {
	return scanSource(s.queryRow(ctx, `SELECT `+sourceColumns+` FROM sources WHERE id = ?`, id))
}

// GetSourceByName retrieves a source by name, or nil if there is none.
func (s *Store) GetSourceByName(ctx context.Context, name string) (*Source, error) {
	return scanSource(s.queryRow(ctx, `SELECT `+sourceColumns+` FROM sources WHERE name = ?`, name))
}

// ListSources returns all sources ordered by name.
func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.query(ctx, `SELECT `+sourceColumns+` FROM sources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		var status string
		if err := rows.Scan(&src.ID, &src.Name, &status, &src.AutoPost, &src.Listen, &src.AllowMultipleRepliesInPost, &src.MaxPostAgeDays); err != nil {
			return nil, err
		}
		src.Status = reference.RedditStatus(status)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source together with its posts and their tokens.
func (s *Store) DeleteSource(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res, "source", id)
}

func scanSource(row *sql.Row) (*Source, error) {
	src := &Source{}
	var status string
	err := row.Scan(&src.ID, &src.Name, &status, &src.AutoPost, &src.Listen, &src.AllowMultipleRepliesInPost, &src.MaxPostAgeDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	src.Status = reference.RedditStatus(status)
	return src, nil
}

func expectRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", errs.ErrNotFound, what, id)
	}
	return nil
}
