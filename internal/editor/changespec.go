package editor

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/amonks/changespec/changespec"
)

// Fields are the user-editable parts of a ChangeSpec. Status is absent:
// it only moves through the transition table.
type Fields struct {
	Parent      string `toml:"parent"`
	Description string `toml:"-"`
}

var changeSpecTemplate = template.Must(template.New("changespec").Parse(`# {{ .Name }} ({{ .Project }}, {{ .Status.DisplayName }})
parent = {{ printf "%q" .Parent }} # name of the changespec this one is stacked on
---
{{ .Description }}
`))

// Render formats cs as TOML front matter followed by the description.
func Render(cs changespec.ChangeSpec) (string, error) {
	var buf bytes.Buffer
	if err := changeSpecTemplate.Execute(&buf, cs); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// Parse reads editor output produced from Render.
func Parse(content string) (Fields, error) {
	frontmatter, body := splitFrontmatter(content)

	var fields Fields
	if _, err := toml.Decode(frontmatter, &fields); err != nil {
		return Fields{}, fmt.Errorf("parse TOML: %w", err)
	}
	fields.Parent = strings.TrimSpace(fields.Parent)
	fields.Description = strings.TrimRight(strings.TrimLeft(body, "\n"), "\n")
	return fields, nil
}

// Apply copies fields onto cs and validates the result.
func (f Fields) Apply(cs changespec.ChangeSpec) (changespec.ChangeSpec, error) {
	cs.Parent = strings.TrimSpace(f.Parent)
	cs.Description = f.Description
	if err := changespec.ValidateChangeSpec(&cs); err != nil {
		return changespec.ChangeSpec{}, err
	}
	return cs, nil
}

func splitFrontmatter(content string) (string, string) {
	content = strings.TrimLeft(content, "\n")
	if content == "" {
		return "", ""
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return content, ""
}

// EditChangeSpec opens cs in the editor and returns the edited fields.
func EditChangeSpec(cs changespec.ChangeSpec) (Fields, error) {
	content, err := Render(cs)
	if err != nil {
		return Fields{}, err
	}

	tmpfile, err := os.CreateTemp("", "cs-"+cs.Name+"-*.md")
	if err != nil {
		return Fields{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpfile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpfile.WriteString(content); err != nil {
		tmpfile.Close()
		return Fields{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpfile.Close(); err != nil {
		return Fields{}, fmt.Errorf("close temp file: %w", err)
	}

	if err := Edit(tmpPath); err != nil {
		return Fields{}, err
	}

	edited, err := os.ReadFile(tmpPath)
	if err != nil {
		return Fields{}, fmt.Errorf("read edited file: %w", err)
	}
	return Parse(string(edited))
}
