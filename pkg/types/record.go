// Package types provides the core domain types for bibliographic
// reference records and the error kinds surfaced by the rendering
// pipeline.
package types

import (
	"encoding/json"
	"fmt"
)

// EllipsisPlaceholder is the sentinel family name inserted when a long
// author list is truncated. It is replaced by an ellipsis glyph in the
// rendered text and must never collide with a real family name.
const EllipsisPlaceholder = "⣥<ellipsis>⣥"

// nameVariables are the CSL variables whose values are name lists.
var nameVariables = map[string]bool{
	"author":             true,
	"collection-editor":  true,
	"composer":           true,
	"container-author":   true,
	"director":           true,
	"editor":             true,
	"editorial-director": true,
	"illustrator":        true,
	"interviewer":        true,
	"original-author":    true,
	"recipient":          true,
	"reviewed-author":    true,
	"translator":         true,
}

// dateVariables are the CSL variables whose values are date specs.
var dateVariables = map[string]bool{
	"accessed":      true,
	"container":     true,
	"event-date":    true,
	"issued":        true,
	"original-date": true,
	"submitted":     true,
}

// Name is one contributor. An empty Given marks a mononym, which must
// render without the comma conventions applied to multi-part names.
type Name struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family"`
	Suffix string `json:"suffix,omitempty"`
}

// Date is a CSL date spec: one or two [year, month?, day?] triples,
// where two triples denote a range. Circa marks an approximate date.
type Date struct {
	Parts [][]int `json:"date-parts"`
	Circa bool    `json:"circa,omitempty"`
}

// Year returns the year of the date (of the range start, for ranges),
// or 0 if the spec is empty.
func (d Date) Year() int {
	if len(d.Parts) == 0 || len(d.Parts[0]) == 0 {
		return 0
	}
	return d.Parts[0][0]
}

// Record is one bibliographic reference. Fields are CSL-variable-named.
// Name and date variables are kept apart from plain string fields so
// each can be manipulated with its own shape. Identity is the assigned
// ID, not content.
type Record struct {
	ID     string
	Type   string
	Names  map[string][]Name
	Dates  map[string]Date
	Fields map[string]string
}

// Field returns a plain string field, or "" if absent.
func (r *Record) Field(key string) string {
	return r.Fields[key]
}

// HasField reports whether a plain string field is present.
func (r *Record) HasField(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// SetField sets a plain string field.
func (r *Record) SetField(key, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[key] = value
}

// DeleteField removes a plain string field if present.
func (r *Record) DeleteField(key string) {
	delete(r.Fields, key)
}

// Contributors returns the record's author list, falling back to the
// editor list when there are no authors.
func (r *Record) Contributors() []Name {
	if names := r.Names["author"]; len(names) > 0 {
		return names
	}
	return r.Names["editor"]
}

// IssuedYear returns the year of the issued date, or 0 if unset.
func (r *Record) IssuedYear() int {
	return r.Dates["issued"].Year()
}

// Clone returns a deep copy. The pipeline mutates clones so caller data
// is never aliased.
func (r *Record) Clone() *Record {
	out := &Record{ID: r.ID, Type: r.Type}
	if r.Names != nil {
		out.Names = make(map[string][]Name, len(r.Names))
		for k, v := range r.Names {
			names := make([]Name, len(v))
			copy(names, v)
			out.Names[k] = names
		}
	}
	if r.Dates != nil {
		out.Dates = make(map[string]Date, len(r.Dates))
		for k, v := range r.Dates {
			parts := make([][]int, len(v.Parts))
			for i, p := range v.Parts {
				parts[i] = append([]int(nil), p...)
			}
			out.Dates[k] = Date{Parts: parts, Circa: v.Circa}
		}
	}
	if r.Fields != nil {
		out.Fields = make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// Validate checks the shape constraints that must hold before
// normalization: a type is required and every name needs a family.
func (r *Record) Validate() error {
	if r.Type == "" {
		return &MalformedInputError{RecordID: r.ID, Reason: "missing type"}
	}
	for variable, names := range r.Names {
		for _, n := range names {
			if n.Family == "" {
				return &MalformedInputError{
					RecordID: r.ID,
					Reason:   fmt.Sprintf("name in %q has no family component", variable),
				}
			}
		}
	}
	for variable, d := range r.Dates {
		if len(d.Parts) == 0 {
			return &MalformedInputError{
				RecordID: r.ID,
				Reason:   fmt.Sprintf("date %q has no date-parts", variable),
			}
		}
	}
	return nil
}

// UnmarshalJSON decodes a CSL-JSON object. Null fields are dropped,
// name and date variables are dispatched by CSL variable name, and any
// other scalar is kept as its string form. A wrong-shaped value is a
// MalformedInputError.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedInputError{Reason: fmt.Sprintf("not a JSON object: %v", err)}
	}

	out := Record{
		Names:  make(map[string][]Name),
		Dates:  make(map[string]Date),
		Fields: make(map[string]string),
	}
	if idRaw, ok := raw["id"]; ok {
		if err := json.Unmarshal(idRaw, &out.ID); err != nil {
			// Numeric ids appear in the wild; keep their text form.
			out.ID = trimQuotes(string(idRaw))
		}
	}

	for key, value := range raw {
		if key == "id" || string(value) == "null" {
			continue
		}
		switch {
		case key == "type":
			if err := json.Unmarshal(value, &out.Type); err != nil {
				return &MalformedInputError{RecordID: out.ID, Reason: "type is not a string"}
			}
		case nameVariables[key]:
			var names []Name
			if err := json.Unmarshal(value, &names); err != nil {
				return &MalformedInputError{
					RecordID: out.ID,
					Reason:   fmt.Sprintf("field %q is not a name list", key),
				}
			}
			out.Names[key] = names
		case dateVariables[key]:
			var d Date
			if err := json.Unmarshal(value, &d); err != nil {
				return &MalformedInputError{
					RecordID: out.ID,
					Reason:   fmt.Sprintf("field %q is not a date spec", key),
				}
			}
			out.Dates[key] = d
		default:
			s, err := scalarString(value)
			if err != nil {
				return &MalformedInputError{
					RecordID: out.ID,
					Reason:   fmt.Sprintf("field %q is not a scalar", key),
				}
			}
			out.Fields[key] = s
		}
	}

	*r = out
	return nil
}

// MarshalJSON encodes the record back into a CSL-JSON object, the form
// the rendering boundary consumes.
func (r *Record) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(r.Fields)+len(r.Names)+len(r.Dates)+2)
	if r.ID != "" {
		obj["id"] = r.ID
	}
	if r.Type != "" {
		obj["type"] = r.Type
	}
	for k, v := range r.Fields {
		obj[k] = v
	}
	for k, v := range r.Names {
		obj[k] = v
	}
	for k, v := range r.Dates {
		obj[k] = v
	}
	return json.Marshal(obj)
}

// scalarString renders a JSON scalar as its string form.
func scalarString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b), nil
	}
	return "", fmt.Errorf("value %s is not a scalar", raw)
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
