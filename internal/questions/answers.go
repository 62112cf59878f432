package questions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed answers.cue
var answersSchema string

// LoadAnswers reads and validates a QandA file.
func LoadAnswers(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	return ParseAnswers(path, data)
}

// ParseAnswers validates data against the answers schema, then checks that
// the type is known, that kind and type still match the template and that
// the name question is answered. name is used in error positions.
func ParseAnswers(name string, data []byte) (*Document, error) {
	if err := validateSchema(name, data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswers, err)
	}

	if _, ok := templates[doc.Kind][doc.Type]; !ok {
		return nil, fmt.Errorf("%w: %w: %s %q", ErrInvalidAnswers, ErrUnknownType, doc.Kind, doc.Type)
	}

	seen := make(map[string]bool, len(doc.Questions))
	for _, q := range doc.Questions {
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: duplicate question id %q", ErrInvalidAnswers, q.ID)
		}
		seen[q.ID] = true
	}

	if doc.Name() == "" {
		return nil, fmt.Errorf("%w: the %q question must be answered", ErrInvalidAnswers, FieldName)
	}
	return &doc, nil
}

// validateSchema unifies data with #Answers from answers.cue.
func validateSchema(name string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(answersSchema, cue.Filename("answers.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile answers schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAnswers, formatCUEError(err))
	}

	unified := schema.LookupPath(cue.ParsePath("#Answers")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAnswers, formatCUEError(err))
	}
	return nil
}

// formatCUEError reports the first CUE error with its position.
func formatCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		pos := positions[0]
		return fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), first.Error())
	}
	return first.Error()
}
