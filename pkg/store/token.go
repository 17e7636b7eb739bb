package store

import (
	"context"
	"database/sql"
	"errors"
	"unicode/utf8"

	"github.com/daniel-butler/whoisthat/pkg/errs"
	"github.com/daniel-butler/whoisthat/pkg/reference"
)

// PersonToken is a candidate person name found in a post.
// Confirmed and Corrected belong to review and are never set by extraction.
type PersonToken struct {
	ID        int64
	PostID    int64
	Token     string
	Confirmed reference.Tristate
	Corrected reference.Tristate
}

// NonPersonToken is any other entity found in a post.
type NonPersonToken struct {
	ID                int64
	PostID            int64
	Token             string
	PartOfSpeech      reference.PartOfSpeech
	PosReviewed       bool   // review has fixed PartOfSpeech
	PersonTranslation string // person name the token stands for, if any
}

func validateToken(token string) error {
	if token == "" {
		return errs.Validation("token is required")
	}
	if utf8.RuneCountInString(token) > MaxTokenLen {
		return errs.Validation("token %q exceeds %d characters", token, MaxTokenLen)
	}
	return nil
}

// RecordPersonToken creates the (post, token) row or fetches the existing
// one, leaving its review flags alone.
func (s *Store) RecordPersonToken(ctx context.Context, postID int64, token string) (*PersonToken, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}

	_, err := s.exec(ctx,
		`INSERT INTO person_tokens (post_id, token) VALUES (?, ?)
		 ON CONFLICT (post_id, token) DO NOTHING`,
		postID, token,
	)
	if err != nil {
		return nil, err
	}

	t := &PersonToken{}
	err = s.queryRow(ctx,
		`SELECT id, post_id, token, confirmed, corrected FROM person_tokens WHERE post_id = ? AND token = ?`,
		postID, token,
	).Scan(&t.ID, &t.PostID, &t.Token, &t.Confirmed, &t.Corrected)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// RecordNonPersonToken creates the (post, token) row or fetches the existing
// one. An existing row takes the new tag only while review has not
// corrected it; the person translation is never touched.
func (s *Store) RecordNonPersonToken(ctx context.Context, postID int64, token string, pos reference.PartOfSpeech) (*NonPersonToken, error) {
	if err := validateToken(token); err != nil {
		return nil, err
	}
	if !pos.Valid() {
		return nil, errs.Validation("token %q has unknown part of speech %q", token, pos)
	}

	_, err := s.exec(ctx,
		`INSERT INTO non_person_tokens (post_id, token, pos_tag) VALUES (?, ?, ?)
		 ON CONFLICT (post_id, token) DO UPDATE SET pos_tag = excluded.pos_tag
		 WHERE NOT non_person_tokens.pos_reviewed`,
		postID, token, string(pos),
	)
	if err != nil {
		return nil, err
	}

	return scanNonPersonToken(s.queryRow(ctx,
		`SELECT `+nonPersonColumns+` FROM non_person_tokens WHERE post_id = ? AND token = ?`,
		postID, token,
	))
}

// ReviewPersonToken sets the review flags of a person token.
func (s *Store) ReviewPersonToken(ctx context.Context, id int64, confirmed, corrected reference.Tristate) error {
	res, err := s.exec(ctx,
		`UPDATE person_tokens SET confirmed = ?, corrected = ? WHERE id = ?`,
		confirmed, corrected, id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, "person token", id)
}

// CorrectNonPersonToken fixes the tag and translation of a non-person token.
// Later extraction runs keep the corrected tag. An empty translation clears it.
func (s *Store) CorrectNonPersonToken(ctx context.Context, id int64, pos reference.PartOfSpeech, translation string) error {
	if !pos.Valid() {
		return errs.Validation("unknown part of speech %q", pos)
	}
	if utf8.RuneCountInString(translation) > MaxTranslationLen {
		return errs.Validation("translation %q exceeds %d characters", translation, MaxTranslationLen)
	}

	var tr any
	if translation != "" {
		tr = translation
	}
	res, err := s.exec(ctx,
		`UPDATE non_person_tokens SET pos_tag = ?, pos_reviewed = ?, person_translation = ? WHERE id = ?`,
		string(pos), true, tr, id,
	)
	if err != nil {
		return err
	}
	return expectRow(res, "non-person token", id)
}

// SetPersonTranslation records the person a non-person token stands for
// without touching its tag. An empty translation clears it.
func (s *Store) SetPersonTranslation(ctx context.Context, id int64, translation string) error {
	if utf8.RuneCountInString(translation) > MaxTranslationLen {
		return errs.Validation("translation %q exceeds %d characters", translation, MaxTranslationLen)
	}

	var tr any
	if translation != "" {
		tr = translation
	}
	res, err := s.exec(ctx, `UPDATE non_person_tokens SET person_translation = ? WHERE id = ?`, tr, id)
	if err != nil {
		return err
	}
	return expectRow(res, "non-person token", id)
}

// GetPersonToken retrieves a person token by ID, or nil if there is none.
func (s *Store) GetPersonToken(ctx context.Context, id int64) (*PersonToken, error) {
	t := &PersonToken{}
	err := s.queryRow(ctx,
		`SELECT id, post_id, token, confirmed, corrected FROM person_tokens WHERE id = ?`, id,
	).Scan(&t.ID, &t.PostID, &t.Token, &t.Confirmed, &t.Corrected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetNonPersonToken retrieves a non-person token by ID, or nil if there is none.
func (s *Store) GetNonPersonToken(ctx context.Context, id int64) (*NonPersonToken, error) {
	t, err := scanNonPersonToken(s.queryRow(ctx,
		`SELECT `+nonPersonColumns+` FROM non_person_tokens WHERE id = ?`, id))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return t, err
}

// PersonTokens returns the person tokens of a post in insertion order.
func (s *Store) PersonTokens(ctx context.Context, postID int64) ([]PersonToken, error) {
	return s.queryPersonTokens(ctx,
		`SELECT id, post_id, token, confirmed, corrected FROM person_tokens WHERE post_id = ? ORDER BY id`, postID)
}

// FindPersonTokens returns every person token with the given text.
func (s *Store) FindPersonTokens(ctx context.Context, token string) ([]PersonToken, error) {
	return s.queryPersonTokens(ctx,
		`SELECT id, post_id, token, confirmed, corrected FROM person_tokens WHERE token = ? ORDER BY id`, token)
}

// CountUnconfirmedPersonTokens counts the person tokens of a post that
// review has not decided yet.
func (s *Store) CountUnconfirmedPersonTokens(ctx context.Context, postID int64) (int, error) {
	var n int
	err := s.queryRow(ctx,
		`SELECT COUNT(*) FROM person_tokens WHERE post_id = ? AND confirmed IS NULL`, postID,
	).Scan(&n)
	return n, err
}

// NonPersonTokens returns the non-person tokens of a post in insertion order.
func (s *Store) NonPersonTokens(ctx context.Context, postID int64) ([]NonPersonToken, error) {
	rows, err := s.query(ctx,
		`SELECT `+nonPersonColumns+` FROM non_person_tokens WHERE post_id = ? ORDER BY id`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []NonPersonToken
	for rows.Next() {
		var t NonPersonToken
		var pos string
		var tr sql.NullString
		if err := rows.Scan(&t.ID, &t.PostID, &t.Token, &pos, &t.PosReviewed, &tr); err != nil {
			return nil, err
		}
		t.PartOfSpeech = reference.PartOfSpeech(pos)
		t.PersonTranslation = tr.String
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

const nonPersonColumns = `id, post_id, token, pos_tag, pos_reviewed, person_translation`

func (s *Store) queryPersonTokens(ctx context.Context, query string, args ...any) ([]PersonToken, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []PersonToken
	for rows.Next() {
		var t PersonToken
		if err := rows.Scan(&t.ID, &t.PostID, &t.Token, &t.Confirmed, &t.Corrected); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func scanNonPersonToken(row *sql.Row) (*NonPersonToken, error) {
	t := &NonPersonToken{}
	var pos string
	var tr sql.NullString
	err := row.Scan(&t.ID, &t.PostID, &t.Token, &pos, &t.PosReviewed, &tr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.PartOfSpeech = reference.PartOfSpeech(pos)
	t.PersonTranslation = tr.String
	return t, nil
}
