// Package prep prepares raw reference records for the rendering
// boundary: field restructuring for the awkward reference types,
// given-name hyphen cleanup, long author-list truncation, and
// year-suffix disambiguation across a batch.
package prep

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/coolbeans/quickbib/pkg/types"
)

// videoMedium is the bracketed annotation injected for speech records
// with a video genre.
const videoMedium = "Video file"

var givenNameHyphen = regexp.MustCompile(`-(.)`)

// Normalizer sanitizes one record at a time. The ID source is
// injectable for deterministic tests.
type Normalizer struct {
	opts  types.Options
	newID func() string
}

// NewNormalizer creates a normalizer for the given option set.
func NewNormalizer(opts types.Options) *Normalizer {
	return &Normalizer{opts: opts, newID: randomID}
}

// NewNormalizerWithIDs creates a normalizer with an injected ID source.
func NewNormalizerWithIDs(opts types.Options, newID func() string) *Normalizer {
	return &Normalizer{opts: opts, newID: newID}
}

// Normalize returns a sanitized copy of rec, suitable for the
// rendering engine. The input record is never mutated. With style
// tweaks disabled only the ID assignment applies; null fields are
// already stripped at decode time.
func (n *Normalizer) Normalize(rec *types.Record) *types.Record {
	out := rec.Clone()
	if out.ID == "" {
		out.ID = n.newID()
	}
	if !n.opts.APATweaks {
		return out
	}

	// By default journal articles cite no issue number.
	if !n.opts.AlwaysIncludeIssue && out.Type == "article-journal" {
		out.DeleteField("issue")
	}

	// Reports use the "Retrieved from <publisher> website: <url>"
	// format, folding the publisher into the URL annotation.
	if n.opts.PublisherWebsite && out.Type == "report" &&
		out.HasField("publisher") && out.HasField("URL") {
		out.SetField("URL", out.Field("publisher")+" website: "+out.Field("URL"))
		out.DeleteField("publisher")
	}

	if out.Type == "speech" {
		switch out.Field("genre") {
		case "paper":
			// Conference papers carry structure words and the event
			// place in the event field.
			out.SetField("event", "meeting of the "+out.Field("publisher")+
				", "+out.Field("event-place"))
			out.DeleteField("publisher")
		case "video":
			out.SetField("medium", videoMedium)
			out.DeleteField("genre")
		}
	}

	// When abbreviating given names, a hyphen before a lowercase
	// letter is treated as a compound-name artifact and removed;
	// before an uppercase letter it is a true hyphenated name and
	// stays. Upstream flags this rule as uncertain; the documented
	// behavior is kept as-is.
	if n.opts.AbbreviateGivenNames {
		authors := out.Names["author"]
		for i, a := range authors {
			authors[i].Given = stripSoftHyphens(a.Given)
		}
	}

	// Author lists longer than 7 keep the first 6 and the last, with
	// a placeholder between them that the text pass later turns into
	// an ellipsis glyph.
	if authors := out.Names["author"]; len(authors) > 7 {
		truncated := make([]types.Name, 0, 8)
		truncated = append(truncated, authors[:6]...)
		truncated = append(truncated, types.Name{Family: types.EllipsisPlaceholder})
		truncated = append(truncated, authors[len(authors)-1])
		out.Names["author"] = truncated
	}

	return out
}

// stripSoftHyphens removes each hyphen that precedes a lowercase
// letter from a given name.
func stripSoftHyphens(given string) string {
	return givenNameHyphen.ReplaceAllStringFunc(given, func(match string) string {
		r, _ := utf8.DecodeRuneInString(match[1:])
		if unicode.IsLower(r) {
			return match[1:]
		}
		return match
	})
}

// randomID returns a process-unique record id.
func randomID() string {
	var buf [8]byte
	rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}
