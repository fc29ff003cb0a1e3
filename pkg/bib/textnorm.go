package bib

import (
	"regexp"
	"strings"

	"github.com/coolbeans/quickbib/pkg/render"
	"github.com/coolbeans/quickbib/pkg/types"
)

var (
	// doubledSpaces collapses interior space runs left by delimiter
	// groups with empty members.
	doubledSpaces = regexp.MustCompile(` {2,}`)

	// trailingPeriod matches a redundant period after a sentence-final
	// mark, optionally across a closing italics boundary
	// ("Gadzooks!." and "…</i>.").
	trailingPeriod = regexp.MustCompile(`([.!?…])(</i>)?\.`)

	// italicVolume matches the italics seam between a container title
	// and a volume number.
	italicVolume = regexp.MustCompile(`</i>, <i>(\d)`)

	// leadingMononym matches a leading name chunk containing no
	// initials (so: a mononym) separated from the ampersand by a
	// comma.
	leadingMononym = regexp.MustCompile(`^([^,.]+), &`)

	// pageRange matches a p. locator whose page token contains a
	// separator, meaning more than one page is cited.
	pageRange = regexp.MustCompile(`(\W)p\. (\S+[,–])`)

	// ellipsisPlaceholder matches the truncation sentinel plus the
	// name-list artifacts around it. The optional ", ." absorbs the
	// empty given-name initial some engines render for the sentinel.
	ellipsisPlaceholder = regexp.MustCompile(
		regexp.QuoteMeta(types.EllipsisPlaceholder) + `(, \.)?, &`)

	curlyQuotes = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)
)

// normalizeText runs the fixed chain of rewrites over one rendered
// fragment. The chain is idempotent as a whole: running it again on
// its own output is a no-op. Step order matters; the ellipsis
// replacement, for example, relies on the period pass having left the
// sentinel's trailing artifacts intact.
func normalizeText(s string, opts Options, format render.Format) string {
	s = doubledSpaces.ReplaceAllString(s, " ")
	s = trailingPeriod.ReplaceAllString(s, "$1$2")
	if opts.DumbQuotes {
		s = curlyQuotes.Replace(s)
	}
	if opts.APATweaks {
		if format.HTMLTagged() {
			// Pull the volume number out of italics, joined to the
			// container title by a comma.
			s = italicVolume.ReplaceAllString(s, ", $1")
		}
		s = leadingMononym.ReplaceAllString(s, "$1 &")
		s = pageRange.ReplaceAllString(s, "${1}pp. $2")
		s = ellipsisPlaceholder.ReplaceAllString(s, "…")
	}
	return s
}
