package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRecordUnmarshalDispatch(t *testing.T) {
	input := `{
		"id": "r1",
		"type": "article-journal",
		"title": "The main title",
		"volume": 30,
		"author": [
			{"given": "Joesph", "family": "Bloggs"},
			{"family": "Plato"}
		],
		"issued": {"date-parts": [[1983, 5]]},
		"issue": null
	}`

	var rec Record
	if err := json.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("Failed to unmarshal record: %v", err)
	}

	if rec.ID != "r1" {
		t.Errorf("ID: got %q, want %q", rec.ID, "r1")
	}
	if rec.Type != "article-journal" {
		t.Errorf("Type: got %q, want %q", rec.Type, "article-journal")
	}
	if got := rec.Field("title"); got != "The main title" {
		t.Errorf("title: got %q", got)
	}
	if got := rec.Field("volume"); got != "30" {
		t.Errorf("volume: expected numeric scalar as string, got %q", got)
	}
	if rec.HasField("issue") {
		t.Error("null issue field should have been dropped")
	}
	authors := rec.Names["author"]
	if len(authors) != 2 {
		t.Fatalf("Expected 2 authors, got %d", len(authors))
	}
	if authors[1].Given != "" {
		t.Errorf("Second author should be a mononym, got given %q", authors[1].Given)
	}
	if rec.IssuedYear() != 1983 {
		t.Errorf("IssuedYear: got %d, want 1983", rec.IssuedYear())
	}
}

func TestRecordUnmarshalMalformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"author not a list", `{"type": "book", "author": "Bloggs"}`},
		{"issued not a date", `{"type": "book", "issued": "1983"}`},
		{"title not a scalar", `{"type": "book", "title": {"x": 1}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec Record
			err := json.Unmarshal([]byte(tc.input), &rec)
			if err == nil {
				t.Fatal("Expected an error for malformed input")
			}
			var malformed *MalformedInputError
			if !errors.As(err, &malformed) {
				t.Errorf("Expected MalformedInputError, got %T: %v", err, err)
			}
		})
	}
}

func TestValidateRequiresType(t *testing.T) {
	rec := &Record{ID: "r1", Fields: map[string]string{"title": "x"}}
	err := rec.Validate()
	var malformed *MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedInputError for missing type, got %v", err)
	}
	if malformed.RecordID != "r1" {
		t.Errorf("Error should carry the record id, got %q", malformed.RecordID)
	}
}

func TestValidateRejectsFamilylessName(t *testing.T) {
	rec := &Record{
		Type:  "book",
		Names: map[string][]Name{"author": {{Given: "Joesph"}}},
	}
	if rec.Validate() == nil {
		t.Error("Expected an error for a name without a family component")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rec := &Record{
		ID:     "r1",
		Type:   "book",
		Names:  map[string][]Name{"author": {{Given: "Joesph", Family: "Bloggs"}}},
		Dates:  map[string]Date{"issued": {Parts: [][]int{{1983}}}},
		Fields: map[string]string{"title": "The main title"},
	}

	clone := rec.Clone()
	clone.SetField("title", "Changed")
	clone.Names["author"][0].Family = "Changed"
	clone.Dates["issued"].Parts[0][0] = 2000

	if rec.Field("title") != "The main title" {
		t.Error("Clone shares the fields map with the original")
	}
	if rec.Names["author"][0].Family != "Bloggs" {
		t.Error("Clone shares the name list with the original")
	}
	if rec.Dates["issued"].Parts[0][0] != 1983 {
		t.Error("Clone shares date parts with the original")
	}
}

func TestRecordMarshalRoundtrip(t *testing.T) {
	rec := &Record{
		ID:     "r1",
		Type:   "chapter",
		Names:  map[string][]Name{"editor": {{Given: "John Quixote", Family: "Doe"}}},
		Dates:  map[string]Date{"issued": {Parts: [][]int{{1983}, {1984}}, Circa: true}},
		Fields: map[string]string{"page": "12–15"},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}
	var restored Record
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal record: %v", err)
	}

	if restored.Type != rec.Type || restored.ID != rec.ID {
		t.Errorf("Identity mismatch: got %q/%q", restored.ID, restored.Type)
	}
	if restored.Field("page") != "12–15" {
		t.Errorf("page: got %q", restored.Field("page"))
	}
	issued := restored.Dates["issued"]
	if len(issued.Parts) != 2 || !issued.Circa {
		t.Errorf("issued date range lost: %+v", issued)
	}
	if len(restored.Names["editor"]) != 1 {
		t.Errorf("editor list lost: %+v", restored.Names)
	}
}

func TestMononymMarshalOmitsGiven(t *testing.T) {
	data, err := json.Marshal(Name{Family: "Plato"})
	if err != nil {
		t.Fatalf("Failed to marshal name: %v", err)
	}
	if string(data) != `{"family":"Plato"}` {
		t.Errorf("Mononym should omit given, got %s", data)
	}
}
