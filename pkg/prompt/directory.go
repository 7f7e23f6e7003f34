package prompt

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// scanOrder fixes which format wins when two files share a name: a later
// format replaces an earlier one unless WithStrictNames is set.
var scanOrder = []Format{FormatJSON, FormatTOML, FormatYAML}

// DefaultFormats are the formats FromDirectory reads unless WithFormats
// says otherwise. YAML is opt-in so stray .yml files (CI configs and the
// like) do not abort a load.
var DefaultFormats = []Format{FormatJSON, FormatTOML}

// LoadOption configures FromDirectory.
type LoadOption func(*loadConfig)

type loadConfig struct {
	logger  *zap.Logger
	strict  bool
	formats map[Format]bool
}

// WithLogger sets the logger used to report loads and overrides.
func WithLogger(logger *zap.Logger) LoadOption {
	return func(c *loadConfig) { c.logger = logger }
}

// WithStrictNames makes FromDirectory fail with ErrDuplicateName instead of
// letting one file replace another with the same derived name.
func WithStrictNames() LoadOption {
	return func(c *loadConfig) { c.strict = true }
}

// WithFormats restricts FromDirectory to the given formats. Precedence
// between formats stays json, toml, yaml regardless of argument order.
func WithFormats(formats ...Format) LoadOption {
	return func(c *loadConfig) {
		c.formats = make(map[Format]bool, len(formats))
		for _, f := range formats {
			c.formats[f] = true
		}
	}
}

func applyLoadOptions(opts []LoadOption) loadConfig {
	cfg := loadConfig{logger: zap.NewNop()}
	WithFormats(DefaultFormats...)(&cfg)
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// FromDirectory loads every template file under dir, recursively. Only
// DefaultFormats (.json then .toml) are read unless WithFormats is given.
// Each template is named by its slash-separated path relative to dir
// without the extension, so "dir/chat/greet.json" becomes "chat/greet". The
// first file that fails to parse aborts the load with a *ParseError.
func FromDirectory(dir string, opts ...LoadOption) (*Library, error) {
	cfg := applyLoadOptions(opts)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	files := make(map[Format][]string, len(scanOrder))
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if format, ok := FormatFromPath(path); ok && cfg.formats[format] {
			files[format] = append(files[format], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan template directory %s: %w", dir, err)
	}

	lib := NewLibrary()
	for _, format := range scanOrder {
		for _, path := range files[format] {
			t, err := parseFile(path, format)
			if err != nil {
				return nil, err
			}

			name, err := templateName(dir, path)
			if err != nil {
				return nil, err
			}
			if lib.Has(name) {
				if cfg.strict {
					return nil, fmt.Errorf("%w: %s (from %s)", ErrDuplicateName, name, path)
				}
				cfg.logger.Warn("template overridden by later file",
					zap.String("name", name),
					zap.String("path", path),
					zap.String("format", string(format)),
				)
			}
			if err := lib.Add(name, t); err != nil {
				return nil, fmt.Errorf("add template from %s: %w", path, err)
			}
		}
	}

	cfg.logger.Debug("templates loaded",
		zap.String("dir", dir),
		zap.Int("count", lib.Len()),
	)
	return lib, nil
}

// templateName derives the library name for a file found under dir.
func templateName(dir, path string) (string, error) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", fmt.Errorf("derive template name for %s: %w", path, err)
	}
	// A bare ".json" has nothing before its extension and keeps its full name.
	if base := filepath.Base(rel); len(base) > len(filepath.Ext(base)) {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	return filepath.ToSlash(rel), nil
}
