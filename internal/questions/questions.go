// Package questions implements the question/answer workflow that feeds the
// store.
//
// Pattern produces a JSON question document for a story or task type. The
// same document with answers filled in is a QandA file; LoadAnswers reads
// and validates one, and RenderProcessDoc turns it into a markdown process
// document.
package questions

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// Kind is the record kind a question document describes.
type Kind string

const (
	KindStory Kind = "story"
	KindTask  Kind = "task"
)

// Answer fields that map onto record columns.
const (
	FieldName        = "name"
	FieldDescription = "description"
)

var (
	// ErrUnknownType is returned for a story or task type with no template.
	ErrUnknownType = errors.New("unknown type")

	// ErrInvalidAnswers is returned when a QandA document fails validation.
	ErrInvalidAnswers = errors.New("invalid answers")
)

// Document is a question pattern or, once answered, a QandA file.
type Document struct {
	Kind      Kind       `json:"kind" yaml:"kind"`
	Type      string     `json:"type" yaml:"type"`
	Story     string     `json:"story,omitempty" yaml:"story,omitempty"`
	Summary   string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question is one prompt and its answer.
type Question struct {
	ID     string `json:"id" yaml:"id"`
	Prompt string `json:"prompt" yaml:"prompt"`
	Field  string `json:"field,omitempty" yaml:"field,omitempty"`
	Answer string `json:"answer" yaml:"answer"`
}

type template struct {
	Summary   string     `yaml:"summary"`
	Questions []Question `yaml:"questions"`
}

// templates is keyed by kind, then type.
var templates = mustLoadTemplates(templatesYAML)

func mustLoadTemplates(data []byte) map[Kind]map[string]template {
	var out map[Kind]map[string]template
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("questions: parse embedded templates: %v", err))
	}
	return out
}

// Types returns the known types for kind, sorted.
func Types(kind Kind) []string {
	types := make([]string, 0, len(templates[kind]))
	for typ := range templates[kind] {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// Pattern returns an unanswered question document for kind and typ.
// For tasks, story names the story the task will be filed under and may be
// left empty for the person answering to fill in.
func Pattern(kind Kind, typ, story string) (*Document, error) {
	tmpl, ok := templates[kind][typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q (known: %s)", ErrUnknownType, kind, typ, strings.Join(Types(kind), ", "))
	}

	doc := &Document{
		Kind:      kind,
		Type:      typ,
		Summary:   tmpl.Summary,
		Questions: make([]Question, len(tmpl.Questions)),
	}
	if kind == KindTask {
		doc.Story = story
	}
	copy(doc.Questions, tmpl.Questions)
	return doc, nil
}

// Name returns the answer to the name question.
func (d *Document) Name() string {
	return strings.TrimSpace(d.answerFor(FieldName))
}

// Description joins the answers to every description question.
func (d *Document) Description() string {
	var parts []string
	for _, q := range d.Questions {
		if q.Field == FieldDescription && strings.TrimSpace(q.Answer) != "" {
			parts = append(parts, strings.TrimSpace(q.Answer))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (d *Document) answerFor(field string) string {
	for _, q := range d.Questions {
		if q.Field == field {
			return q.Answer
		}
	}
	return ""
}

// Marshal encodes doc as indented JSON with a trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s document: %w", doc.Kind, err)
	}
	return append(data, '\n'), nil
}
