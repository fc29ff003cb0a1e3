package render

import (
	"github.com/coolbeans/quickbib/pkg/types"
)

// Entry is one rendered bibliography item from the engine: its
// citation key, the engine's own sort fields (used only until the
// bibliography sorter recomputes its key), the rendered fragment, and
// the in-text citation fragment.
type Entry struct {
	Key        string   `json:"key"`
	SortFields []string `json:"sort_fields,omitempty"`
	Text       string   `json:"text"`
	Cite       string   `json:"cite,omitempty"`
}

// Engine is the rendering boundary: an external CSL interpreter that
// turns a patched style and prepared records into styled fragments.
// Implementations must return one entry per record, preserving input
// order, and must fail the whole batch with a RenderError identifying
// the offending record rather than returning partial results.
type Engine interface {
	Render(styleText string, recs []*types.Record, format Format) ([]Entry, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(styleText string, recs []*types.Record, format Format) ([]Entry, error)

// Render calls f.
func (f EngineFunc) Render(styleText string, recs []*types.Record, format Format) ([]Entry, error) {
	return f(styleText, recs, format)
}
