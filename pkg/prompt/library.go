package prompt

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Library maps template names to templates, remembering insertion order.
// The zero value is ready to use. A Library is not safe for concurrent
// mutation.
type Library struct {
	templates *orderedmap.OrderedMap[string, Template]
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{templates: orderedmap.New[string, Template]()}
}

func (l *Library) store() *orderedmap.OrderedMap[string, Template] {
	if l.templates == nil {
		l.templates = orderedmap.New[string, Template]()
	}
	return l.templates
}

// Add inserts t under name, replacing any existing template with that name.
func (l *Library) Add(name string, t Template) error {
	if name == "" {
		return ErrEmptyName
	}
	l.store().Set(name, t)
	return nil
}

// Get returns the template stored under name.
func (l *Library) Get(name string) (Template, bool) {
	return l.store().Get(name)
}

// Has reports whether name is present.
func (l *Library) Has(name string) bool {
	_, ok := l.store().Get(name)
	return ok
}

// Delete removes name and reports whether it was present.
func (l *Library) Delete(name string) bool {
	_, ok := l.store().Delete(name)
	return ok
}

// Len returns the number of templates.
func (l *Library) Len() int {
	return l.store().Len()
}

// Names returns template names in insertion order.
func (l *Library) Names() []string {
	names := make([]string, 0, l.Len())
	for pair := l.store().Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
