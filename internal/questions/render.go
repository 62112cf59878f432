package questions

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// processMeta is the YAML metadata block at the top of a process document.
type processMeta struct {
	Title string `yaml:"title"`
	Kind  Kind   `yaml:"kind"`
	Type  string `yaml:"type"`
	Story string `yaml:"story,omitempty"`
}

// RenderProcessDoc renders an answered document as markdown with a YAML
// metadata block, one section per question in template order.
func RenderProcessDoc(doc *Document) ([]byte, error) {
	meta, err := yaml.Marshal(processMeta{
		Title: doc.Name(),
		Kind:  doc.Kind,
		Type:  doc.Type,
		Story: doc.Story,
	})
	if err != nil {
		return nil, fmt.Errorf("render metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n", doc.Name())
	if doc.Summary != "" {
		fmt.Fprintf(&buf, "\n_%s_\n", doc.Summary)
	}

	for _, q := range doc.Questions {
		if q.Field == FieldName {
			continue
		}
		answer := strings.TrimSpace(q.Answer)
		if answer == "" {
			answer = "_No answer._"
		}
		fmt.Fprintf(&buf, "\n## %s\n\n%s\n", q.Prompt, answer)
	}
	return buf.Bytes(), nil
}

// FileName is the process document name for doc.
func FileName(doc *Document) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, doc.Name())
	return name + ".md"
}
