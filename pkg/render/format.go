// Package render defines the boundary to the external CSL engine: the
// closed set of text formatters, the engine interface, and a
// subprocess-backed engine implementation for the CLI.
package render

import (
	"fmt"

	"github.com/coolbeans/quickbib/pkg/types"
)

// Format is a closed formatter variant resolved once at configuration
// time. Each carries its tag-wrapping functions as data; a nil
// function means the attribute passes through unchanged.
type Format struct {
	Name string

	Italic      func(string) string
	Bold        func(string) string
	Underline   func(string) string
	Superscript func(string) string
	Subscript   func(string) string
	SmallCaps   func(string) string
}

// HTMLTagged reports whether the format emits HTML italics tags, which
// some text passes key on.
func (f Format) HTMLTagged() bool {
	return f.Name != "plain"
}

func tag(name string) func(string) string {
	return func(s string) string {
		return "<" + name + ">" + s + "</" + name + ">"
	}
}

func passthrough(s string) string { return s }

// Plain renders every attribute as bare text.
var Plain = Format{
	Name:        "plain",
	Italic:      passthrough,
	Bold:        passthrough,
	Underline:   passthrough,
	Superscript: passthrough,
	Subscript:   passthrough,
	SmallCaps:   passthrough,
}

// HTML renders every attribute as an HTML tag.
var HTML = Format{
	Name:        "html",
	Italic:      tag("i"),
	Bold:        tag("b"),
	Underline:   tag("u"),
	Superscript: tag("sup"),
	Subscript:   tag("sub"),
	SmallCaps:   tag("span"),
}

// SemiPlain tags italics, superscript and subscript but passes bold,
// underline and small caps through unchanged.
var SemiPlain = Format{
	Name:        "semi-plain",
	Italic:      tag("i"),
	Bold:        passthrough,
	Underline:   passthrough,
	Superscript: tag("sup"),
	Subscript:   tag("sub"),
	SmallCaps:   passthrough,
}

// ByName resolves a formatter name. An unknown name is a
// ConfigurationError.
func ByName(name string) (Format, error) {
	switch name {
	case "plain":
		return Plain, nil
	case "html":
		return HTML, nil
	case "semi-plain":
		return SemiPlain, nil
	default:
		return Format{}, &types.ConfigurationError{
			Reason: fmt.Sprintf("unknown formatter %q", name),
		}
	}
}
