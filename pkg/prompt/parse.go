package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Format names a template file serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// documentSchema is the minimum every template file must satisfy.
const documentSchema = `{
  "type": "object",
  "required": ["content"],
  "properties": {
    "content": {"type": "string"}
  }
}`

var (
	compiledSchema *gojsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

func getSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	})
	return compiledSchema, compileErr
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".toml":
		return FormatTOML, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Parse decodes a template document in the given format.
func Parse(data []byte, format Format) (Template, error) {
	var (
		doc any
		err error
	)
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatTOML:
		var m map[string]any
		if err = toml.Unmarshal(data, &m); m != nil {
			doc = m
		}
	case FormatYAML:
		var m map[string]any
		if err = yaml.Unmarshal(data, &m); m != nil {
			doc = m
		}
	default:
		return Template{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return Template{}, err
	}
	if doc == nil {
		return Template{}, ErrMissingContent
	}

	if err := validateDocument(doc); err != nil {
		return Template{}, err
	}
	// TOML dates and YAML timestamps encode as JSON strings and so pass the
	// schema; the decoded value must still be a Go string.
	raw := doc.(map[string]any)["content"]
	content, ok := raw.(string)
	if !ok {
		return Template{}, fmt.Errorf("%w: content is %T, not a string", ErrInvalidContent, raw)
	}
	return Template{Content: content}, nil
}

func validateDocument(doc any) error {
	schema, err := getSchema()
	if err != nil {
		return fmt.Errorf("compiling template schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating template: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	missing := false
	for _, e := range result.Errors() {
		if e.Type() == "required" {
			missing = true
		}
		errs = append(errs, e.String())
	}
	if missing {
		return ErrMissingContent
	}
	return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(errs, "; "))
}

// ParseFile reads a template file, choosing the parser by extension.
func ParseFile(path string) (Template, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return Template{}, &ParseError{Path: path, Format: Format(strings.TrimPrefix(filepath.Ext(path), ".")), Err: ErrUnsupportedFormat}
	}
	return parseFile(path, format)
}

// FromJSON reads a JSON template file.
func FromJSON(path string) (Template, error) {
	return parseFile(path, FormatJSON)
}

// FromTOML reads a TOML template file.
func FromTOML(path string) (Template, error) {
	return parseFile(path, FormatTOML)
}

// FromYAML reads a YAML template file.
func FromYAML(path string) (Template, error) {
	return parseFile(path, FormatYAML)
}

func parseFile(path string, format Format) (Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, &ParseError{Path: path, Format: format, Err: err}
	}
	t, err := Parse(data, format)
	if err != nil {
		return Template{}, &ParseError{Path: path, Format: format, Err: err}
	}
	return t, nil
}

// Save writes the template to path in the format implied by its extension.
func (t Template) Save(path string) error {
	format, ok := FormatFromPath(path)
	if !ok {
		return fmt.Errorf("save template %s: %w", path, ErrUnsupportedFormat)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(t, "", "  ")
	case FormatTOML:
		data, err = toml.Marshal(t)
	case FormatYAML:
		data, err = yaml.Marshal(t)
	}
	if err != nil {
		return fmt.Errorf("encode %s template: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write template %s: %w", path, err)
	}
	return nil
}
