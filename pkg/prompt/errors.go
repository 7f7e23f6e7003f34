package prompt

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName is returned when adding a template without a name.
	ErrEmptyName = errors.New("template must have a name")

	// ErrNotDirectory is returned by FromDirectory for a path that exists
	// but is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrMissingContent means a template document has no string "content" field.
	ErrMissingContent = errors.New("template has no content field")

	// ErrInvalidContent means the "content" field is present but not a string,
	// or the document is not an object.
	ErrInvalidContent = errors.New("template document is invalid")

	// ErrMalformedTemplate means the content has unbalanced braces.
	ErrMalformedTemplate = errors.New("malformed template")

	// ErrMissingValue means Render had no value for a field.
	ErrMissingValue = errors.New("missing template value")

	// ErrDuplicateName is returned under WithStrictNames when two files map
	// to the same template name.
	ErrDuplicateName = errors.New("duplicate template name")

	// ErrUnsupportedFormat is returned for file extensions with no parser.
	ErrUnsupportedFormat = errors.New("unsupported template format")
)

// ParseError reports a template file that could not be read as a Template.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s template %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
