// Package bib wires the bibliography pipeline: reference
// preprocessing, year-suffix disambiguation, style patching, the
// rendering boundary, the deterministic bibliography sort, and the
// text-normalization pass that fixes what the engine leaves behind.
package bib

import (
	"fmt"
	"strings"

	"github.com/coolbeans/quickbib/pkg/prep"
	"github.com/coolbeans/quickbib/pkg/render"
	"github.com/coolbeans/quickbib/pkg/style"
	"github.com/coolbeans/quickbib/pkg/types"
)

// Result is the output of a batch render.
type Result struct {
	// Entries are the normalized bibliography entries in final order.
	Entries []string
	// Text is the entries joined with blank lines.
	Text string
	// Cites are the in-text citation fragments, aligned with Entries.
	Cites []string
	// Keys are the per-entry citation keys, aligned with Entries.
	Keys []string
}

// Pipeline renders batches of reference records to bibliography text.
// Batches are independent and processed to completion one at a time;
// the style cache is the only shared state.
type Pipeline struct {
	engine render.Engine
	styles *style.Cache
}

// New creates a pipeline around a rendering engine and a style cache.
// A nil cache gets a fresh file-backed one.
func New(engine render.Engine, styles *style.Cache) *Pipeline {
	if styles == nil {
		styles = style.NewCache(nil)
	}
	return &Pipeline{engine: engine, styles: styles}
}

// Bib1 renders a single record and returns its bibliography entry.
func (p *Pipeline) Bib1(stylePath string, rec *types.Record, opts Options) (string, error) {
	result, err := p.Bib(stylePath, []*types.Record{rec}, opts)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// Bib renders a batch. Records are validated, cloned, normalized and
// disambiguated, rendered through the patched style, sorted, and text
// normalized. Any failure aborts the whole batch; no partial
// bibliography is ever returned, so ordering and disambiguation can
// never be silently wrong.
func (p *Pipeline) Bib(stylePath string, recs []*types.Record, opts Options) (*Result, error) {
	format, err := render.ByName(opts.Formatter)
	if err != nil {
		return nil, err
	}

	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	// A record appearing twice in the batch must map to a single clone:
	// the disambiguator counts pointer-identical records once, so
	// cloning each appearance separately would let a duplicate eat two
	// suffix letters.
	normalizer := prep.NewNormalizer(opts)
	prepared := make([]*types.Record, len(recs))
	clones := make(map[*types.Record]*types.Record, len(recs))
	for i, rec := range recs {
		clone, ok := clones[rec]
		if !ok {
			clone = normalizer.Normalize(rec)
			clones[rec] = clone
		}
		prepared[i] = clone
	}
	if opts.APATweaks {
		prep.Disambiguate(prepared)
	}

	styleText, err := p.styles.Get(stylePath, opts)
	if err != nil {
		return nil, err
	}

	entries, err := p.engine.Render(styleText, prepared, format)
	if err != nil {
		return nil, err
	}
	if len(entries) != len(prepared) {
		return nil, &types.RenderError{
			Err: fmt.Errorf("engine returned %d entries for %d records",
				len(entries), len(prepared)),
		}
	}

	if len(prepared) > 1 {
		entries, prepared = sortEntries(entries, prepared)
	}

	result := &Result{
		Entries: make([]string, len(entries)),
		Cites:   make([]string, len(entries)),
		Keys:    make([]string, len(entries)),
	}
	for i, entry := range entries {
		result.Entries[i] = normalizeText(entry.Text, opts, format)
		result.Cites[i] = entry.Cite
		result.Keys[i] = entry.Key
	}
	result.Text = strings.Join(result.Entries, "\n\n")
	return result, nil
}
