package prompt

import (
	"fmt"
	"strings"
)

// segment is a run of literal text optionally followed by one replacement
// field, mirroring how format strings are tokenized.
type segment struct {
	literal  string
	field    string // field expression before any "!conv" or ":spec"
	hasField bool
}

// parseFormat splits content into segments. "{{" and "}}" are literal
// braces; "{expr}", "{expr!c}", "{expr:spec}" are fields. A format spec may
// itself contain nested "{...}" fields, which are not reported.
func parseFormat(content string) ([]segment, error) {
	var (
		segs []segment
		lit  strings.Builder
	)

	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch ch {
		case '{':
			if i+1 < len(content) && content[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end, err := matchBrace(content, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, segment{
				literal:  lit.String(),
				field:    fieldExpr(content[i+1 : end]),
				hasField: true,
			})
			lit.Reset()
			i = end
		case '}':
			if i+1 < len(content) && content[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: single '}' at offset %d", ErrMalformedTemplate, i)
		default:
			lit.WriteByte(ch)
		}
	}

	if lit.Len() > 0 {
		segs = append(segs, segment{literal: lit.String()})
	}
	return segs, nil
}

// matchBrace returns the index of the '}' closing the '{' at open.
func matchBrace(content string, open int) (int, error) {
	depth := 0
	inIndex := false
	for j := open; j < len(content); j++ {
		switch content[j] {
		case '[':
			if depth == 1 {
				inIndex = true
			}
		case ']':
			inIndex = false
		case '{':
			if !inIndex {
				depth++
			}
		case '}':
			if inIndex {
				continue
			}
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: expected '}' before end of string", ErrMalformedTemplate)
}

// fieldExpr strips the conversion and format spec from a field body.
// Brackets are skipped so "{a[:]}" keeps its index intact.
func fieldExpr(body string) string {
	inIndex := false
	for k := 0; k < len(body); k++ {
		switch body[k] {
		case '[':
			inIndex = true
		case ']':
			inIndex = false
		case '!', ':':
			if !inIndex {
				return body[:k]
			}
		}
	}
	return body
}

// isPositional reports whether a field is unnamed ("{}") or numbered ("{0}").
func isPositional(field string) bool {
	if field == "" {
		return true
	}
	head := field
	if k := strings.IndexAny(head, ".["); k >= 0 {
		head = head[:k]
	}
	if head == "" {
		return true
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
