package prep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coolbeans/quickbib/pkg/types"
)

// Disambiguate finds records that would render with identical leading
// authors and year and assigns each a letter suffix on the year,
// stored in the year_suffix field for the rendering engine. It runs in
// place across the whole batch. Records that are pointer-identical
// count once, so a reference duplicated within a batch cannot eat two
// letters.
func Disambiguate(recs []*types.Record) {
	groups := make(map[string][]*types.Record)
	var order []string
	seen := make(map[*types.Record]bool)

	for _, rec := range recs {
		if seen[rec] {
			continue
		}
		seen[rec] = true
		sig := signature(rec)
		if sig == "" {
			continue
		}
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], rec)
	}

	for _, sig := range order {
		group := groups[sig]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return TitleKey(group[i]) < TitleKey(group[j])
		})
		for i, rec := range group {
			rec.SetField("year_suffix", suffixLetters(i))
		}
	}
}

// signature builds the collision key: the leading author (or editor)
// subset plus the issued year. When a record has exactly two names
// both participate; otherwise only the first does.
func signature(rec *types.Record) string {
	names := rec.Contributors()
	if len(names) == 0 {
		return ""
	}
	subset := names[:1]
	if len(names) == 2 {
		subset = names[:2]
	}
	var b strings.Builder
	for _, n := range subset {
		b.WriteString(strings.ToLower(n.Family))
		b.WriteByte('|')
		b.WriteString(strings.ToLower(n.Given))
		b.WriteByte(';')
	}
	fmt.Fprintf(&b, "%d", rec.IssuedYear())
	return b.String()
}

// TitleKey is the normalized title used to order records within a
// disambiguation group and in the bibliography sort: lowercased, with
// a leading article stripped.
func TitleKey(rec *types.Record) string {
	title := strings.ToLower(rec.Field("title"))
	for _, article := range []string{"a ", "the "} {
		if strings.HasPrefix(title, article) {
			return title[len(article):]
		}
	}
	return title
}

// suffixLetters yields "a".."z", then "aa", "ab", … in spreadsheet
// column order.
func suffixLetters(i int) string {
	var b []byte
	for {
		b = append([]byte{byte('a' + i%26)}, b...)
		i = i/26 - 1
		if i < 0 {
			return string(b)
		}
	}
}
