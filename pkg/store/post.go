package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/daniel-butler/whoisthat/pkg/errs"
	"github.com/daniel-butler/whoisthat/pkg/reference"
)

// Post is one submission ingested from a source.
type Post struct {
	ID         int64
	SourceID   int64
	ExternalID string // reddit's base36 id, e.g. "1abcd2"
	Title      string
	Permalink  string
	CreatedAt  time.Time
	Tokenized  reference.Tristate
}

func (p Post) validate() error {
	if p.ExternalID == "" {
		return errs.Validation("post id is required")
	}
	if utf8.RuneCountInString(p.ExternalID) > MaxExternalIDLen {
		return errs.Validation("post id %q exceeds %d characters", p.ExternalID, MaxExternalIDLen)
	}
	if utf8.RuneCountInString(p.Title) > MaxTitleLen {
		return errs.Validation("post %s title exceeds %d characters", p.ExternalID, MaxTitleLen)
	}
	if utf8.RuneCountInString(p.Permalink) > MaxPermalinkLen {
		return errs.Validation("post %s permalink exceeds %d characters", p.ExternalID, MaxPermalinkLen)
	}
	return nil
}

const postColumns = `id, source_id, external_id, title, permalink, created_at, tokenized`

// UpsertPost creates the post identified by in.ExternalID under src, or
// fetches it if it already exists. Post ids are global on reddit, so an id
// already stored under another source is a validation error.
func (s *Store) UpsertPost(ctx context.Context, src Source, in Post) (*Post, error) {
	if src.ID == 0 {
		return nil, errs.Validation("post %s has no stored source", in.ExternalID)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	_, err := s.exec(ctx,
		`INSERT INTO posts (source_id, external_id, title, permalink, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (external_id) DO NOTHING`,
		src.ID, in.ExternalID, in.Title, in.Permalink, in.CreatedAt.Unix(),
	)
	if err != nil {
		return nil, err
	}

	post, err := s.GetPostByExternalID(ctx, in.ExternalID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, errs.ErrNotFound
	}
	if post.SourceID != src.ID {
		return nil, errs.Validation("post %s already belongs to source %d, not %s", in.ExternalID, post.SourceID, src.Name)
	}
	return post, nil
}

// GetPost retrieves a post by ID, or nil if there is none.
func (s *Store) GetPost(ctx context.Context, id int64) (*Post, error) {
	return scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// GetPostByExternalID retrieves a post by its reddit id, or nil if there is none.
func (s *Store) GetPostByExternalID(ctx context.Context, externalID string) (*Post, error) {
	return scanPost(s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE external_id = ?`, externalID))
}

// MarkTokenized records that extraction finished for the post.
func (s *Store) MarkTokenized(ctx context.Context, postID int64) error {
	res, err := s.exec(ctx, `UPDATE posts SET tokenized = ? WHERE id = ?`, reference.True, postID)
	if err != nil {
		return err
	}
	return expectRow(res, "post", postID)
}

// PendingPosts returns the posts of src still awaiting extraction that are
// no older than src.MaxPostAgeDays at now, oldest first.
func (s *Store) PendingPosts(ctx context.Context, src Source, now time.Time) ([]Post, error) {
	rows, err := s.query(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE source_id = ? AND (tokenized IS NULL OR tokenized = 0) AND created_at >= ?
		 ORDER BY created_at, id`,
		src.ID, src.Cutoff(now).Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var created int64
		if err := rows.Scan(&p.ID, &p.SourceID, &p.ExternalID, &p.Title, &p.Permalink, &created, &p.Tokenized); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(created, 0).UTC()
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(row *sql.Row) (*Post, error) {
	p := &Post{}
	var created int64
	err := row.Scan(&p.ID, &p.SourceID, &p.ExternalID, &p.Title, &p.Permalink, &created, &p.Tokenized)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(created, 0).UTC()
	return p, nil
}
