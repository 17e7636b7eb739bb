// Command posgen renders a pinned entity-tag inventory into Go source for
// the reference package.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"go/format"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// untagged is used when the inventory gives a tag no description.
const untagged = "Untagged"

// Inventory is the YAML tag inventory.
type Inventory struct {
	Version string `yaml:"version"`
	Package string `yaml:"package"`
	Tags    []Tag  `yaml:"tags"`
}

// Tag is one inventory entry.
type Tag struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("posgen", flag.ContinueOnError)
	in := fs.String("in", "", "Inventory YAML path")
	out := fs.String("out", "pos_gen.go", "Output Go file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("usage: posgen -in <inventory.yaml> [-out pos_gen.go]")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	inv, err := parseInventory(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", *in, err)
	}
	src, err := render(inv)
	if err != nil {
		return err
	}
	return os.WriteFile(*out, src, 0644)
}

func parseInventory(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	if inv.Version == "" {
		return nil, errors.New("inventory has no version")
	}
	if inv.Package == "" {
		inv.Package = "reference"
	}

	seen := make(map[string]bool)
	for i, tag := range inv.Tags {
		if seen[tag.Code] {
			return nil, fmt.Errorf("duplicate tag %q", tag.Code)
		}
		seen[tag.Code] = true
		if strings.TrimSpace(tag.Description) == "" {
			inv.Tags[i].Description = untagged
		}
	}
	if !seen[""] {
		// Tokens default to the untagged code, so it is always present.
		inv.Tags = append([]Tag{{Code: "", Description: untagged}}, inv.Tags...)
	}
	return &inv, nil
}

var fileTemplate = template.Must(template.New("pos").Funcs(template.FuncMap{
	"ident": ident,
}).Parse(`// Code generated by posgen from {{.Version}}; DO NOT EDIT.

package {{.Package}}

// PosInventoryVersion identifies the tag inventory this file was built from.
const PosInventoryVersion = {{printf "%q" .Version}}

const (
{{- range .Tags}}
	{{ident .Code}} PartOfSpeech = {{printf "%q" .Code}}
{{- end}}
)

var posOrder = []PartOfSpeech{
{{- range .Tags}}
	{{ident .Code}},
{{- end}}
}

var posDescriptions = map[PartOfSpeech]string{
{{- range .Tags}}
	{{ident .Code}}: {{printf "%q" .Description}},
{{- end}}
}
`))

func render(inv *Inventory) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, inv); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

// ident turns a tag code such as WORK_OF_ART into PosWorkOfArt.
func ident(code string) string {
	if code == "" {
		return "PosNone"
	}
	var b strings.Builder
	b.WriteString("Pos")
	for _, part := range strings.FieldsFunc(code, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	}) {
		lower := strings.ToLower(part)
		b.WriteString(strings.ToUpper(lower[:1]) + lower[1:])
	}
	return b.String()
}
