package bib

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/coolbeans/quickbib/pkg/prep"
	"github.com/coolbeans/quickbib/pkg/render"
	"github.com/coolbeans/quickbib/pkg/types"
)

var pageTokenSeparator = regexp.MustCompile(`[-–,]`)

// sortKey is the composite bibliography ordering key. It replaces the
// engine's native sort, which mishandles leading-article stripping.
type sortKey struct {
	names [][2]string
	year  int
	title string
	page  string
}

// keyFor computes the sort key for one record: lowercased
// (family, given-initial) pairs for the authors-or-editors with the
// ellipsis placeholder excluded, the issued year, the normalized title
// key, and the first page token.
func keyFor(rec *types.Record) sortKey {
	key := sortKey{
		year:  rec.IssuedYear(),
		title: prep.TitleKey(rec),
	}
	for _, n := range rec.Contributors() {
		if n.Family == types.EllipsisPlaceholder {
			continue
		}
		key.names = append(key.names, [2]string{
			strings.ToLower(n.Family),
			strings.ToLower(initialOf(n.Given)),
		})
	}
	if page := rec.Field("page"); page != "" {
		key.page = pageTokenSeparator.Split(page, 2)[0]
	}
	return key
}

// less orders keys ascending by name pairs, then year, title, and
// first page.
func (k sortKey) less(other sortKey) bool {
	for i := 0; i < len(k.names) && i < len(other.names); i++ {
		if k.names[i] != other.names[i] {
			if k.names[i][0] != other.names[i][0] {
				return k.names[i][0] < other.names[i][0]
			}
			return k.names[i][1] < other.names[i][1]
		}
	}
	if len(k.names) != len(other.names) {
		return len(k.names) < len(other.names)
	}
	if k.year != other.year {
		return k.year < other.year
	}
	if k.title != other.title {
		return k.title < other.title
	}
	return k.page < other.page
}

// sortEntries reorders rendered entries (and their records, kept
// parallel) by the composite key. Applied only to batches of more than
// one record.
func sortEntries(entries []render.Entry, recs []*types.Record) ([]render.Entry, []*types.Record) {
	keys := make([]sortKey, len(recs))
	for i, rec := range recs {
		keys[i] = keyFor(rec)
	}
	indices := make([]int, len(recs))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return keys[indices[a]].less(keys[indices[b]])
	})

	sortedEntries := make([]render.Entry, len(entries))
	sortedRecs := make([]*types.Record, len(recs))
	for i, idx := range indices {
		sortedEntries[i] = entries[idx]
		sortedRecs[i] = recs[idx]
	}
	return sortedEntries, sortedRecs
}

// initialOf returns the first rune of a given name, or "" for a
// mononym.
func initialOf(given string) string {
	if given == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(given)
	return string(r)
}
