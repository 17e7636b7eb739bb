package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/daniel-butler/whoisthat/pkg/errs"
	"github.com/daniel-butler/whoisthat/pkg/reference"
	"github.com/daniel-butler/whoisthat/pkg/store"
)

// SourceFile is the YAML layout of the monitored-source list.
type SourceFile struct {
	Sources []SourceEntry `yaml:"sources"`
}

// SourceEntry is one source as written in YAML. Unset fields take the
// store defaults.
type SourceEntry struct {
	Name                       string `yaml:"name"`
	Status                     string `yaml:"status"`
	AutoPost                   *bool  `yaml:"auto_post"`
	Listen                     *bool  `yaml:"listen"`
	AllowMultipleRepliesInPost *bool  `yaml:"allow_multiple_replies_in_post"`
	MaxPostAgeDays             *int   `yaml:"max_post_age_days"`
}

// LoadSources reads and validates a source list from a YAML file.
func LoadSources(path string) ([]store.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a YAML source list.
func ParseSources(data []byte) ([]store.Source, error) {
	var file SourceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	sources := make([]store.Source, 0, len(file.Sources))
	for i, entry := range file.Sources {
		src, err := entry.toSource()
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		if seen[src.Name] {
			return nil, errs.Validation("source %q listed twice", src.Name)
		}
		seen[src.Name] = true
		sources = append(sources, src)
	}
	return sources, nil
}

func (e SourceEntry) toSource() (store.Source, error) {
	src := store.NewSource(e.Name)
	if e.Status != "" {
		status, err := reference.ParseRedditStatus(e.Status)
		if err != nil {
			return store.Source{}, fmt.Errorf("%w: %v", errs.ErrValidation, err)
		}
		src.Status = status
	}
	if e.AutoPost != nil {
		src.AutoPost = *e.AutoPost
	}
	if e.Listen != nil {
		src.Listen = *e.Listen
	}
	if e.AllowMultipleRepliesInPost != nil {
		src.AllowMultipleRepliesInPost = *e.AllowMultipleRepliesInPost
	}
	if e.MaxPostAgeDays != nil {
		src.MaxPostAgeDays = *e.MaxPostAgeDays
	}
	return src, src.Validate()
}
