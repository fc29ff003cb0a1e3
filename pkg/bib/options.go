package bib

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/quickbib/pkg/types"
)

// Options controls the pipeline; see types.Options.
type Options = types.Options

// DefaultOptions returns the standard option set.
func DefaultOptions() Options { return types.DefaultOptions() }

// LoadOptions reads an options file in YAML form. Absent fields keep
// their defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options file: %w", err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	return opts, nil
}
