// Package prompt loads reusable prompt templates from disk and fills their
// named placeholders.
//
// Template content uses brace placeholders: "{name}" is a field, "{{" and
// "}}" are literal braces.
package prompt

import (
	"fmt"
	"slices"
	"strings"

	"github.com/HerbHall/crias/pkg/llm"
)

// Template is a reusable text blueprint with named placeholders.
type Template struct {
	Content string `json:"content" toml:"content" yaml:"content"`
}

// Inputs returns the names of all named placeholders in the content,
// deduplicated and sorted. Unnamed ("{}") and numbered ("{0}") fields are
// ignored.
func (t Template) Inputs() ([]string, error) {
	segs, err := parseFormat(t.Content)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.hasField && !isPositional(s.field) {
			names = append(names, s.field)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Render substitutes every named field with fmt.Sprint of its value.
// Conversion flags and format specs are accepted but not applied.
func (t Template) Render(values map[string]any) (string, error) {
	segs, err := parseFormat(t.Content)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.literal)
		if !s.hasField {
			continue
		}
		if isPositional(s.field) {
			return "", fmt.Errorf("%w: positional field %q cannot be rendered by name", ErrMissingValue, s.field)
		}
		v, ok := values[s.field]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingValue, s.field)
		}
		fmt.Fprint(&b, v)
	}
	return b.String(), nil
}

// UserMessage returns the raw content as a user message.
func (t Template) UserMessage() llm.Message {
	return llm.UserMessage(t.Content)
}

// SystemMessage returns the raw content as a system message.
func (t Template) SystemMessage() llm.Message {
	return llm.SystemMessage(t.Content)
}
