package ner

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestProseParser_People(t *testing.T) {
	p := newTestParser(t)

	text := `I've been impressed by Hamel Husain's work on LLM evals.
	Simon Willison built amazing tools. Nathan Lambert wrote the RLHF book.`

	entities, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	names := entityNames(filterByLabel(entities, "PERSON"))
	if !contains(names, "Hamel Husain") {
		t.Errorf("Expected to find Hamel Husain in %v", names)
	}
	if !contains(names, "Simon Willison") {
		t.Errorf("Expected to find Simon Willison in %v", names)
	}
}

func TestProseParser_Empty(t *testing.T) {
	p := newTestParser(t)

	entities, err := p.Parse("")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("Expected 0 entities for empty input, got %d", len(entities))
	}
}

func TestProseParser_StripsHTML(t *testing.T) {
	p := newTestParser(t)

	entities, err := p.Parse(`<p>Simon Willison wrote about <b>datasette</b>.</p>`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	for _, e := range entities {
		if e.Text == "" || strings.ContainsRune(e.Text, '<') {
			t.Errorf("Unexpected entity text %q", e.Text)
		}
	}
}

func TestProseParser_Name(t *testing.T) {
	p := newTestParser(t)
	if p.Name() != DefaultModel {
		t.Errorf("Expected %s, got %s", DefaultModel, p.Name())
	}
}

func TestLoad_MissingModel(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "no-such-model"))
	if err == nil {
		t.Error("Expected error for missing model directory")
	}
}

func TestLoad_NotAModel(t *testing.T) {
	p, err := Load(t.TempDir())
	if err == nil {
		t.Fatalf("Expected error for directory without a model, got %+v", p)
	}
}

func TestParserFunc(t *testing.T) {
	boom := errors.New("boom")
	p := ParserFunc(func(text string) ([]Entity, error) {
		if text == "fail" {
			return nil, boom
		}
		return []Entity{{Text: text, Label: "ORG"}}, nil
	})

	if _, err := p.Parse("fail"); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	got, _ := p.Parse("Acme")
	if len(got) != 1 || got[0].Label != "ORG" {
		t.Errorf("Unexpected result %v", got)
	}
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<p>Hello <b>world</b></p>")
	if strings.ContainsAny(got, "<>") {
		t.Errorf("Expected tags removed, got %q", got)
	}
}

// Helper functions
func newTestParser(t *testing.T) *ProseParser {
	t.Helper()
	p, err := Load(DefaultModel)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return p
}

func filterByLabel(entities []Entity, label string) []Entity {
	var filtered []Entity
	for _, e := range entities {
		if e.Label == label {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func entityNames(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Text
	}
	return names
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
