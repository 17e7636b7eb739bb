package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daniel-butler/whoisthat/pkg/errs"
	"github.com/daniel-butler/whoisthat/pkg/reference"
)

func TestOpen_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(context.Background(), SQLite, dbPath)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(ctx, SQLite, dbPath)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	src := NewSource("pics")
	if err := s.CreateSource(ctx, &src); err != nil {
		t.Fatalf("CreateSource error: %v", err)
	}
	s.Close()

	s, err = Open(ctx, SQLite, dbPath)
	if err != nil {
		t.Fatalf("Second Open error: %v", err)
	}
	defer s.Close()

	found, err := s.GetSourceByName(ctx, "pics")
	if err != nil {
		t.Fatalf("GetSourceByName error: %v", err)
	}
	if found == nil || found.ID != src.ID {
		t.Errorf("Expected source %d after reopen, got %+v", src.ID, found)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Driver("mysql"), "x"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: Postgres}
	got := pg.rebind("SELECT id FROM posts WHERE source_id = ? AND created_at >= ?")
	want := "SELECT id FROM posts WHERE source_id = $1 AND created_at >= $2"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	lite := &Store{driver: SQLite}
	if q := lite.rebind("a = ?"); q != "a = ?" {
		t.Errorf("SQLite queries should be unchanged, got %q", q)
	}
}

func TestStore_CascadeDelete(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()
	ctx := context.Background()

	src := mustSource(t, s, "pics")
	post := mustPost(t, s, src, "abc123", time.Now())
	if _, err := s.RecordPersonToken(ctx, post.ID, "Alice"); err != nil {
		t.Fatalf("RecordPersonToken error: %v", err)
	}
	if _, err := s.RecordNonPersonToken(ctx, post.ID, "Acme", reference.PosOrg); err != nil {
		t.Fatalf("RecordNonPersonToken error: %v", err)
	}

	if err := s.DeleteSource(ctx, src.ID); err != nil {
		t.Fatalf("DeleteSource error: %v", err)
	}

	found, err := s.GetPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPost error: %v", err)
	}
	if found != nil {
		t.Error("Expected post to be deleted with its source")
	}
	tokens, _ := s.FindPersonTokens(ctx, "Alice")
	if len(tokens) != 0 {
		t.Errorf("Expected person tokens to be deleted, got %d", len(tokens))
	}
	others, _ := s.NonPersonTokens(ctx, post.ID)
	if len(others) != 0 {
		t.Errorf("Expected non-person tokens to be deleted, got %d", len(others))
	}
}

// Helper to create in-memory test store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return s
}

func mustSource(t *testing.T, s *Store, name string) Source {
	t.Helper()
	src := NewSource(name)
	if err := s.CreateSource(context.Background(), &src); err != nil {
		t.Fatalf("CreateSource(%s) error: %v", name, err)
	}
	return src
}

func mustPost(t *testing.T, s *Store, src Source, externalID string, created time.Time) *Post {
	t.Helper()
	post, err := s.UpsertPost(context.Background(), src, Post{
		ExternalID: externalID,
		Title:      "Who is this?",
		Permalink:  "/r/" + src.Name + "/comments/" + externalID + "/",
		CreatedAt:  created,
	})
	if err != nil {
		t.Fatalf("UpsertPost(%s) error: %v", externalID, err)
	}
	return post
}

func expectValidation(t *testing.T, err error) {
	t.Helper()
	if !errors.Is(err, errs.ErrValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}
