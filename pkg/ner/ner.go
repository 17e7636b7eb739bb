// Package ner provides the named entity parsing capability, backed by prose.
package ner

import (
	"fmt"
	"os"
	"strings"

	"github.com/jdkato/prose/v2"
)

// DefaultModel names the model bundled with prose.
const DefaultModel = "prose/v2"

// Entity represents a named entity found in text.
type Entity struct {
	Text  string
	Label string // PERSON, GPE, etc.
}

// Parser turns text into the entities detected in it, in detection order.
type Parser interface {
	Parse(text string) ([]Entity, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(text string) ([]Entity, error)

// Parse calls f(text).
func (f ParserFunc) Parse(text string) ([]Entity, error) {
	return f(text)
}

// ProseParser is a Parser over a prose model that is loaded once and
// shared read-only between calls.
type ProseParser struct {
	name  string
	model *prose.Model
}

// Load prepares the named model. DefaultModel (or "") selects the bundled
// prose model; anything else is treated as a directory written by
// prose's Model.Write.
func Load(name string) (*ProseParser, error) {
	if name == "" || name == DefaultModel {
		// prose has no loader for its bundled model, so build one document
		// and keep the model it was given.
		doc, err := prose.NewDocument("Warm up.", prose.WithSegmentation(false))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", DefaultModel, err)
		}
		return &ProseParser{name: DefaultModel, model: doc.Model}, nil
	}

	info, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", name, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("loading model %s: not a directory", name)
	}
	model, err := modelFromDisk(name)
	if err != nil {
		return nil, err
	}
	return &ProseParser{name: name, model: model}, nil
}

// modelFromDisk wraps prose.ModelFromDisk, which panics when the directory
// does not hold a model.
func modelFromDisk(dir string) (model *prose.Model, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loading model %s: %v", dir, r)
		}
	}()
	return prose.ModelFromDisk(dir), nil
}

// Name returns the model identifier the parser was loaded from.
func (p *ProseParser) Name() string {
	return p.name
}

// Parse extracts all named entities from text.
func (p *ProseParser) Parse(text string) ([]Entity, error) {
	if text == "" {
		return []Entity{}, nil
	}

	// Strip HTML tags for cleaner NER
	text = stripHTML(text)

	opts := []prose.DocOpt{prose.WithSegmentation(false)}
	if p.model != nil {
		opts = append(opts, prose.UsingModel(p.model))
	}
	doc, err := prose.NewDocument(text, opts...)
	if err != nil {
		return nil, err
	}

	entities := []Entity{}
	for _, ent := range doc.Entities() {
		entities = append(entities, Entity{
			Text:  strings.TrimSpace(ent.Text),
			Label: ent.Label,
		})
	}
	return entities, nil
}

// stripHTML removes HTML tags from text.
func stripHTML(s string) string {
	var result strings.Builder
	inTag := false
	for _, r := range s {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			result.WriteRune(' ')
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	return result.String()
}
