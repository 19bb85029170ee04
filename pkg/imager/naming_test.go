package imager

import (
	"testing"

	"github.com/hellenic-development/psd-extractor/pkg/extractor"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "reserved characters", input: "a/b:c", want: "a_b_c"},
		{name: "surrounding and inner whitespace", input: "  Hi  There  ", want: "Hi_There"},
		{name: "all reserved", input: `<>:"/\|?*`, want: ""},
		{name: "underscore runs", input: "a___b", want: "a_b"},
		{name: "tabs and newlines", input: "Icon\t\nSet", want: "Icon_Set"},
		{name: "mixed", input: " Copy of <Hero> * 2 ", want: "Copy_of_Hero_2"},
		{name: "unicode kept", input: "Überschrift ✓", want: "Überschrift_✓"},
		{name: "already clean", input: "UI_Button", want: "UI_Button"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := Sanitize(got); again != got {
				t.Errorf("Sanitize not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestResolveName(t *testing.T) {
	tests := []struct {
		name  string
		path  extractor.Path
		layer string
		want  string
	}{
		{name: "top level", layer: "Background", want: "Background"},
		{name: "one group", path: extractor.Path{"UI"}, layer: "Button", want: "UI_Button"},
		{name: "nested groups", path: extractor.Path{"Page 1", "Header"}, layer: "Logo", want: "Page_1_Header_Logo"},
		{name: "segments sanitized", path: extractor.Path{"a/b"}, layer: "c:d", want: "a_b_c_d"},
		{name: "empty group name dropped", path: extractor.Path{"", "  "}, layer: "Hero", want: "Hero"},
		{name: "empty everything", path: extractor.Path{"?"}, layer: "*", want: FallbackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveName(tt.path, tt.layer)
			if got != tt.want {
				t.Errorf("ResolveName(%v, %q) = %q, want %q", tt.path, tt.layer, got, tt.want)
			}
			if again := ResolveName(tt.path, tt.layer); again != got {
				t.Errorf("ResolveName not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestResolveName_Collision(t *testing.T) {
	a := ResolveName(extractor.Path{"UI"}, "Button")
	b := ResolveName(extractor.Path{"UI_Button"}, "")
	c := ResolveName(nil, "UI / Button")

	if a != "UI_Button" || b != a || c != a {
		t.Errorf("expected all to collide on UI_Button, got %q %q %q", a, b, c)
	}
}
