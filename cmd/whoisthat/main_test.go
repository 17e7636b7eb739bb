package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/daniel-butler/whoisthat/pkg/reference"
	"github.com/daniel-butler/whoisthat/pkg/store"
)

func TestRun_Version(t *testing.T) {
	if err := run(context.Background(), []string{"version"}); err != nil {
		t.Errorf("version error: %v", err)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	setupEnv(t)
	if err := run(context.Background(), []string{"frobnicate"}); err == nil {
		t.Error("Expected error for unknown command")
	}
}

func TestRun_SourcesSyncAndList(t *testing.T) {
	dir := setupEnv(t)
	sourcesPath := filepath.Join(dir, "sources.yaml")
	if err := os.WriteFile(sourcesPath, []byte("sources:\n  - name: pics\n  - name: aww\n    listen: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := run(ctx, []string{"sources", "sync", "-file", sourcesPath}); err != nil {
		t.Fatalf("sources sync error: %v", err)
	}
	if err := run(ctx, []string{"sources", "list"}); err != nil {
		t.Fatalf("sources list error: %v", err)
	}
	if err := run(ctx, []string{"tokens", "nosuchpost"}); err == nil {
		t.Error("Expected error for unknown post")
	}
}

func TestRun_ReviewValidation(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	if err := run(ctx, []string{"review", "person", "abc"}); err == nil {
		t.Error("Expected error for non-numeric id")
	}
	if err := run(ctx, []string{"review", "nonperson", "1", "-pos", "SPACESHIP"}); err == nil {
		t.Error("Expected error for unknown tag")
	}
	if err := run(ctx, []string{"review", "person", "1", "-confirmed", "true"}); err == nil {
		t.Error("Expected not-found error for missing token")
	}
}

func TestRun_ReviewPersonKeepsOtherFlag(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	s, post := seedPost(t)
	tok, _ := s.RecordPersonToken(ctx, post.ID, "Alice")
	if err := s.ReviewPersonToken(ctx, tok.ID, reference.Unknown, reference.True); err != nil {
		t.Fatalf("ReviewPersonToken error: %v", err)
	}
	s.Close()

	if err := run(ctx, []string{"review", "person", itoa(tok.ID), "-confirmed", "true"}); err != nil {
		t.Fatalf("review error: %v", err)
	}

	s = reopen(t)
	defer s.Close()
	got, _ := s.GetPersonToken(ctx, tok.ID)
	if got.Confirmed != reference.True || got.Corrected != reference.True {
		t.Errorf("Expected confirmed=true corrected=true, got %+v", got)
	}

	if err := run(ctx, []string{"review", "person", itoa(tok.ID)}); err == nil {
		t.Error("Expected error when no review flag is given")
	}
}

func TestRun_ReviewNonPersonTranslationOnly(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	s, post := seedPost(t)
	tok, _ := s.RecordNonPersonToken(ctx, post.ID, "The Rock", reference.PosOrg)
	s.Close()

	if err := run(ctx, []string{"review", "nonperson", itoa(tok.ID), "-translation", "Dwayne Johnson"}); err != nil {
		t.Fatalf("review error: %v", err)
	}

	s = reopen(t)
	got, _ := s.GetNonPersonToken(ctx, tok.ID)
	s.Close()
	if got.PartOfSpeech != reference.PosOrg || got.PosReviewed {
		t.Errorf("Expected tag ORG untouched, got %+v", got)
	}
	if got.PersonTranslation != "Dwayne Johnson" {
		t.Errorf("Expected translation set, got %q", got.PersonTranslation)
	}

	// Correcting the tag keeps the translation that was already there.
	if err := run(ctx, []string{"review", "nonperson", itoa(tok.ID), "-pos", "PERSON"}); err != nil {
		t.Fatalf("review error: %v", err)
	}

	s = reopen(t)
	defer s.Close()
	got, _ = s.GetNonPersonToken(ctx, tok.ID)
	if got.PartOfSpeech != reference.PosPerson || !got.PosReviewed || got.PersonTranslation != "Dwayne Johnson" {
		t.Errorf("Expected PERSON, reviewed, translation kept; got %+v", got)
	}
}

func TestRun_Find(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	s, post := seedPost(t)
	s.RecordPersonToken(ctx, post.ID, "Alice")
	s.Close()

	if err := run(ctx, []string{"find", "Alice"}); err != nil {
		t.Errorf("find error: %v", err)
	}
	if err := run(ctx, []string{"find"}); err == nil {
		t.Error("Expected usage error without a name")
	}
}

func TestRun_ReplyNotAllowed(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()

	// auto_post defaults to false, so no request reaches reddit.
	s, _ := seedPost(t)
	s.Close()

	if err := run(ctx, []string{"reply", "abc123", "That is Alice"}); err != nil {
		t.Errorf("reply error: %v", err)
	}
	if err := run(ctx, []string{"reply", "nosuchpost", "hi"}); err == nil {
		t.Error("Expected error for unknown post")
	}
}

func TestParseTristate(t *testing.T) {
	if v, err := parseTristate("true"); err != nil || v != reference.True {
		t.Errorf("parseTristate(true) = %s, %v", v, err)
	}
	if v, err := parseTristate(""); err != nil || v != reference.Unknown {
		t.Errorf("parseTristate(\"\") = %s, %v", v, err)
	}
	if _, err := parseTristate("maybe"); err == nil {
		t.Error("Expected error for maybe")
	}
}

// setupEnv points the CLI at a fresh database in a temp dir.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WHOISTHAT_DB_DRIVER", "sqlite")
	t.Setenv("WHOISTHAT_DB", filepath.Join(dir, "db", "whoisthat.db"))
	t.Setenv("WHOISTHAT_LOG_LEVEL", "error")
	return dir
}

// seedPost stores one source and post in the database setupEnv configured.
func seedPost(t *testing.T) (*store.Store, *store.Post) {
	t.Helper()
	s := reopen(t)
	src := store.NewSource("pics")
	if err := s.CreateSource(context.Background(), &src); err != nil {
		t.Fatalf("CreateSource error: %v", err)
	}
	post, err := s.UpsertPost(context.Background(), src, store.Post{
		ExternalID: "abc123",
		Title:      "Who is this?",
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertPost error: %v", err)
	}
	return s, post
}

func reopen(t *testing.T) *store.Store {
	t.Helper()
	dbPath := os.Getenv("WHOISTHAT_DB")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatal(err)
	}
	s, err := store.Open(context.Background(), store.SQLite, dbPath)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return s
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
