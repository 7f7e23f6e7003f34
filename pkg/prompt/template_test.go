package prompt

import (
	"errors"
	"slices"
	"testing"

	"github.com/HerbHall/crias/pkg/llm"
)

func TestTemplate_Inputs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "two fields", content: "{hello} {world}", want: []string{"hello", "world"}},
		{name: "no fields", content: "Hello, World!", want: []string{}},
		{name: "repeated fields", content: "{greeting}, {name}. My name is also {name}.", want: []string{"greeting", "name"}},
		{name: "sorted", content: "{zeta} {alpha} {mid}", want: []string{"alpha", "mid", "zeta"}},
		{name: "escaped braces", content: "{{literal}} and {real}", want: []string{"real"}},
		{name: "only escapes", content: "{{}}", want: []string{}},
		{name: "positional ignored", content: "{} {0} {1.attr} {name}", want: []string{"name"}},
		{name: "conversion and spec", content: "{a!r} {b:>10} {c!s:^5}", want: []string{"a", "b", "c"}},
		{name: "nested spec field not reported", content: "{value:{width}}", want: []string{"value"}},
		{name: "attribute and index", content: "{user.name} {items[0]}", want: []string{"items[0]", "user.name"}},
		{name: "empty", content: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Template{Content: tt.content}.Inputs()
			if err != nil {
				t.Fatalf("Inputs() error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Inputs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTemplate_InputsMalformed(t *testing.T) {
	for _, content := range []string{"{unclosed", "stray } brace", "{a}}", "{{{b"} {
		t.Run(content, func(t *testing.T) {
			_, err := Template{Content: content}.Inputs()
			if !errors.Is(err, ErrMalformedTemplate) {
				t.Errorf("Inputs(%q) error = %v, want ErrMalformedTemplate", content, err)
			}
		})
	}
}

func TestTemplate_Render(t *testing.T) {
	tmpl := Template{Content: "{greeting}, {name}! {{escaped}} {count:>3}"}
	got, err := tmpl.Render(map[string]any{"greeting": "Hello", "name": "World", "count": 3})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "Hello, World! {escaped} 3"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTemplate_RenderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		values  map[string]any
		wantErr error
	}{
		{name: "missing value", content: "{a} {b}", values: map[string]any{"a": 1}, wantErr: ErrMissingValue},
		{name: "positional", content: "{}", values: nil, wantErr: ErrMissingValue},
		{name: "malformed", content: "{a", values: map[string]any{"a": 1}, wantErr: ErrMalformedTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Template{Content: tt.content}.Render(tt.values)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Render() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTemplate_RenderNoFields(t *testing.T) {
	got, err := Template{Content: "Hello, World!"}.Render(nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != "Hello, World!" {
		t.Errorf("Render() = %q", got)
	}
}

func TestTemplate_Messages(t *testing.T) {
	tmpl := Template{Content: "This is a test message"}

	user := tmpl.UserMessage()
	if user.Role != llm.RoleUser || user.Content != "This is a test message" {
		t.Errorf("UserMessage() = %+v", user)
	}
	system := tmpl.SystemMessage()
	if system.Role != llm.RoleSystem || system.Content != "This is a test message" {
		t.Errorf("SystemMessage() = %+v", system)
	}
}
