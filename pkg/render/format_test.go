package render

import (
	"errors"
	"testing"

	"github.com/coolbeans/quickbib/pkg/types"
)

func TestByName(t *testing.T) {
	cases := []struct {
		name       string
		italicized string
		bolded     string
	}{
		{"plain", "x", "x"},
		{"html", "<i>x</i>", "<b>x</b>"},
		{"semi-plain", "<i>x</i>", "x"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ByName(tc.name)
			if err != nil {
				t.Fatalf("ByName(%q) failed: %v", tc.name, err)
			}
			if got := f.Italic("x"); got != tc.italicized {
				t.Errorf("Italic: got %q, want %q", got, tc.italicized)
			}
			if got := f.Bold("x"); got != tc.bolded {
				t.Errorf("Bold: got %q, want %q", got, tc.bolded)
			}
		})
	}
}

func TestSemiPlainTagging(t *testing.T) {
	if got := SemiPlain.Superscript("2"); got != "<sup>2</sup>" {
		t.Errorf("Superscript: got %q", got)
	}
	if got := SemiPlain.Subscript("2"); got != "<sub>2</sub>" {
		t.Errorf("Subscript: got %q", got)
	}
	if got := SemiPlain.Underline("x"); got != "x" {
		t.Errorf("Underline should pass through, got %q", got)
	}
	if got := SemiPlain.SmallCaps("x"); got != "x" {
		t.Errorf("SmallCaps should pass through, got %q", got)
	}
}

func TestByNameUnknownFormatter(t *testing.T) {
	_, err := ByName("chocolate-deluxe")
	if err == nil {
		t.Fatal("Expected an error for an unknown formatter")
	}
	var confErr *types.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("Expected ConfigurationError, got %T", err)
	}
}

func TestHTMLTagged(t *testing.T) {
	if Plain.HTMLTagged() {
		t.Error("plain is not HTML-tagged")
	}
	if !HTML.HTMLTagged() || !SemiPlain.HTMLTagged() {
		t.Error("html and semi-plain emit italics tags")
	}
}
