// Package extractor splits the entities a parser finds in a post into person
// candidates and other tagged tokens.
package extractor

import (
	"github.com/daniel-butler/whoisthat/pkg/ner"
)

// PersonLabel is the entity label that marks a person candidate.
const PersonLabel = "PERSON"

// Tagged is a non-person token and the label the parser gave it.
type Tagged struct {
	Text  string
	Label string
}

// Result holds the tokens extracted from one text, each in detection order.
type Result struct {
	People []string
	Others []Tagged
}

// Extract parses text once and partitions the entities by label.
// Duplicates are kept; the store collapses them per post. A parser error is
// returned unchanged.
func Extract(p ner.Parser, text string) (Result, error) {
	res := Result{People: []string{}, Others: []Tagged{}}
	if text == "" {
		return res, nil
	}

	entities, err := p.Parse(text)
	if err != nil {
		return Result{}, err
	}

	for _, ent := range entities {
		if ent.Label == PersonLabel {
			res.People = append(res.People, ent.Text)
			continue
		}
		res.Others = append(res.Others, Tagged{Text: ent.Text, Label: ent.Label})
	}
	return res, nil
}

// Extractor binds a parser so callers do not pass it on every call.
type Extractor struct {
	parser ner.Parser
}

// New returns an Extractor using p.
func New(p ner.Parser) *Extractor {
	return &Extractor{parser: p}
}

// Extract runs Extract with the bound parser.
func (e *Extractor) Extract(text string) (Result, error) {
	return Extract(e.parser, text)
}
