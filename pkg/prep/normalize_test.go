package prep

import (
	"fmt"
	"testing"

	"github.com/coolbeans/quickbib/pkg/types"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func journalArticle() *types.Record {
	return &types.Record{
		ID:   "r1",
		Type: "article-journal",
		Names: map[string][]types.Name{
			"author": {
				{Given: "Joesph", Family: "Bloggs"},
				{Given: "J. Random", Family: "Hacker"},
			},
		},
		Dates: map[string]types.Date{"issued": {Parts: [][]int{{1983}}}},
		Fields: map[string]string{
			"title":           "The main title",
			"container-title": "Sciency Times",
			"volume":          "30",
			"issue":           "7",
			"page":            "293–315",
			"DOI":             "10.zzz/zzzzzz",
		},
	}
}

func TestNormalizeAssignsID(t *testing.T) {
	n := NewNormalizerWithIDs(types.DefaultOptions(), sequentialIDs())
	rec := journalArticle()
	rec.ID = ""
	if got := n.Normalize(rec).ID; got != "id-1" {
		t.Errorf("Expected assigned id, got %q", got)
	}
	if rec.ID != "" {
		t.Error("Input record must not be mutated")
	}
}

func TestNormalizeDropsIssueByDefault(t *testing.T) {
	n := NewNormalizer(types.DefaultOptions())
	out := n.Normalize(journalArticle())
	if out.HasField("issue") {
		t.Error("Journal articles should lose their issue number by default")
	}
}

func TestNormalizeKeepsIssueWhenRequested(t *testing.T) {
	opts := types.DefaultOptions()
	opts.AlwaysIncludeIssue = true
	out := NewNormalizer(opts).Normalize(journalArticle())
	if out.Field("issue") != "7" {
		t.Errorf("issue: got %q, want %q", out.Field("issue"), "7")
	}
}

func TestNormalizeWithoutTweaksOnlyAssignsID(t *testing.T) {
	opts := types.DefaultOptions()
	opts.APATweaks = false
	out := NewNormalizer(opts).Normalize(journalArticle())
	if !out.HasField("issue") {
		t.Error("Without style tweaks the issue field must survive")
	}
}

func TestNormalizeReportPublisherWebsite(t *testing.T) {
	rec := &types.Record{
		ID:   "r1",
		Type: "report",
		Fields: map[string]string{
			"publisher": "Institute for the Study of Labor",
			"URL":       "http://ftp.iza.org/dp5314.pdf",
		},
	}
	out := NewNormalizer(types.DefaultOptions()).Normalize(rec)

	want := "Institute for the Study of Labor website: http://ftp.iza.org/dp5314.pdf"
	if out.Field("URL") != want {
		t.Errorf("URL: got %q, want %q", out.Field("URL"), want)
	}
	if out.HasField("publisher") {
		t.Error("publisher should be consumed by the URL annotation")
	}

	opts := types.DefaultOptions()
	opts.PublisherWebsite = false
	plain := NewNormalizer(opts).Normalize(rec)
	if plain.Field("URL") != "http://ftp.iza.org/dp5314.pdf" {
		t.Error("publisher_website off should leave the URL alone")
	}
}

func TestNormalizeSpeechTypes(t *testing.T) {
	paper := &types.Record{
		ID:   "r1",
		Type: "speech",
		Fields: map[string]string{
			"genre":       "paper",
			"publisher":   "Royal Society",
			"event-place": "London, England",
		},
	}
	out := NewNormalizer(types.DefaultOptions()).Normalize(paper)
	if got := out.Field("event"); got != "meeting of the Royal Society, London, England" {
		t.Errorf("event: got %q", got)
	}
	if out.HasField("publisher") {
		t.Error("publisher should be consumed by the event annotation")
	}
	if out.Field("genre") != "paper" {
		t.Error("paper genre should survive")
	}

	video := &types.Record{
		ID:     "r2",
		Type:   "speech",
		Fields: map[string]string{"genre": "video"},
	}
	out = NewNormalizer(types.DefaultOptions()).Normalize(video)
	if out.Field("medium") != "Video file" {
		t.Errorf("medium: got %q", out.Field("medium"))
	}
	if out.HasField("genre") {
		t.Error("video genre should be consumed by the medium annotation")
	}
}

func TestNormalizeGivenNameHyphens(t *testing.T) {
	cases := []struct {
		given string
		want  string
	}{
		{"Mary-Jane", "Mary-Jane"},
		{"Mary-jane", "Maryjane"},
		{"Jean-Pierre-luc", "Jean-Pierreluc"},
		{"Þóra-Ösp", "Þóra-Ösp"},
		{"Þóra-ösp", "Þóraösp"},
	}

	for _, tc := range cases {
		t.Run(tc.given, func(t *testing.T) {
			rec := journalArticle()
			rec.Names["author"][0].Given = tc.given
			out := NewNormalizer(types.DefaultOptions()).Normalize(rec)
			if got := out.Names["author"][0].Given; got != tc.want {
				t.Errorf("Given: got %q, want %q", got, tc.want)
			}
		})
	}

	// Without abbreviation, hyphens always stay.
	opts := types.DefaultOptions()
	opts.AbbreviateGivenNames = false
	rec := journalArticle()
	rec.Names["author"][0].Given = "Mary-jane"
	out := NewNormalizer(opts).Normalize(rec)
	if out.Names["author"][0].Given != "Mary-jane" {
		t.Error("Hyphen stripping applies only when abbreviating given names")
	}
}

func authorList(n int) []types.Name {
	names := make([]types.Name, n)
	for i := range names {
		names[i] = types.Name{
			Given:  fmt.Sprintf("G%d", i+1),
			Family: fmt.Sprintf("Family%d", i+1),
		}
	}
	return names
}

func TestNormalizeAuthorTruncation(t *testing.T) {
	t.Run("seven authors stay intact", func(t *testing.T) {
		rec := journalArticle()
		rec.Names["author"] = authorList(7)
		out := NewNormalizer(types.DefaultOptions()).Normalize(rec)
		if len(out.Names["author"]) != 7 {
			t.Fatalf("Expected 7 authors, got %d", len(out.Names["author"]))
		}
		for _, a := range out.Names["author"] {
			if a.Family == types.EllipsisPlaceholder {
				t.Error("No placeholder expected for 7 authors")
			}
		}
	})

	t.Run("eight authors truncate to six plus last", func(t *testing.T) {
		rec := journalArticle()
		rec.Names["author"] = authorList(8)
		out := NewNormalizer(types.DefaultOptions()).Normalize(rec)

		authors := out.Names["author"]
		if len(authors) != 8 {
			t.Fatalf("Expected 8 entries (6 + placeholder + last), got %d", len(authors))
		}
		for i := 0; i < 6; i++ {
			if authors[i].Family != fmt.Sprintf("Family%d", i+1) {
				t.Errorf("Author %d: got %q", i, authors[i].Family)
			}
		}
		if authors[6].Family != types.EllipsisPlaceholder || authors[6].Given != "" {
			t.Errorf("Entry 7 should be the placeholder, got %+v", authors[6])
		}
		if authors[7].Family != "Family8" {
			t.Errorf("Last author should survive, got %q", authors[7].Family)
		}
	})

	t.Run("twelve authors keep only first six and last", func(t *testing.T) {
		rec := journalArticle()
		rec.Names["author"] = authorList(12)
		out := NewNormalizer(types.DefaultOptions()).Normalize(rec)
		authors := out.Names["author"]
		if len(authors) != 8 {
			t.Fatalf("Expected 8 entries, got %d", len(authors))
		}
		if authors[7].Family != "Family12" {
			t.Errorf("Last author should be the original final one, got %q", authors[7].Family)
		}
	})
}
