// Package style loads CSL style definitions and applies the structural
// rewrites that make a generic CSL engine produce style-guide-exact
// output. Patches are anchored text substitutions with an enforced
// match count, so a style file that drifts out from under an anchor is
// a detectable configuration error rather than a silent pass-through.
package style

import (
	"fmt"
	"regexp"

	"github.com/coolbeans/quickbib/pkg/types"
)

// MatchCount is the contract a patch anchor must satisfy against the
// style text.
type MatchCount int

const (
	// MatchOnce requires exactly one anchor match.
	MatchOnce MatchCount = iota
	// MatchAtLeastOnce requires one or more matches; all are rewritten.
	MatchAtLeastOnce
	// MatchOptional allows zero matches or one.
	MatchOptional
)

// patch is one anchored substitution.
type patch struct {
	Name        string
	Anchor      *regexp.Regexp
	Replacement string
	Matches     MatchCount
}

// apply rewrites text, enforcing the patch's match-count contract.
func (p patch) apply(text string) (string, error) {
	n := len(p.Anchor.FindAllStringIndex(text, -1))
	switch p.Matches {
	case MatchOnce:
		if n != 1 {
			return "", &types.ConfigurationError{
				Reason: fmt.Sprintf("style patch %q matched %d times, want exactly 1", p.Name, n),
			}
		}
	case MatchAtLeastOnce:
		if n == 0 {
			return "", &types.ConfigurationError{
				Reason: fmt.Sprintf("style patch %q found no anchor", p.Name),
			}
		}
	case MatchOptional:
		if n > 1 {
			return "", &types.ConfigurationError{
				Reason: fmt.Sprintf("style patch %q matched %d times, want at most 1", p.Name, n),
			}
		}
		if n == 0 {
			return text, nil
		}
	}
	return p.Anchor.ReplaceAllString(text, p.Replacement), nil
}

var (
	encodingDecl = regexp.MustCompile(`\A(<\?xml[^>]*?) encoding="[^"]+"`)

	// The secondary-contributors macro mentions editors for any
	// contained work; scoping its first branch to books stops an
	// edited book from naming its editors twice.
	secondaryContributors = regexp.MustCompile(
		`(<macro name="secondary-contributors">\s*<choose>\s*<if type=")`)

	// The style's native 8-author/7-shown truncation; stripped so the
	// preprocessor's own ellipsis rule is authoritative.
	etAlTruncation = regexp.MustCompile(
		`(<bibliography[^>]*?) et-al-min="8" et-al-use-first="7"`)

	// First <else> of the title macro, where the speech and software
	// branches are spliced in.
	titleMacroElse = regexp.MustCompile(`(<macro name="title">(?s:.*?))<else>`)

	containerTitleCase = regexp.MustCompile(
		`(<text variable="container-title"[^/>]*?) text-case="title"`)

	initializeWith = regexp.MustCompile(`\s+initialize-with="[^"]+"`)

	accessMacroCall = regexp.MustCompile(`(<text macro="access")`)

	doiText = regexp.MustCompile(`(<text variable="DOI" prefix="doi:"/>)`)
)

const (
	speechBranch = `<else-if type="speech">` +
		`<group delimiter=" ">` +
		`<text variable="title" font-style="italic"/>` +
		`<text variable="medium" prefix="[" suffix="]"/>` +
		`</group>` +
		`</else-if>`
	softwareBranch = `<else-if type="software">` +
		`<group delimiter=" ">` +
		`<text variable="title" font-style="italic"/>` +
		`<text value="Computer software" prefix="[" suffix="]"/>` +
		`</group>` +
		`</else-if>`
)

// patchesFor assembles the ordered patch list for an option set. The
// encoding-declaration strip always runs because the downstream XML
// parser rejects encoding declarations; everything else is gated.
func patchesFor(opts types.Options) []patch {
	patches := []patch{{
		Name:        "strip-encoding-declaration",
		Anchor:      encodingDecl,
		Replacement: "$1",
		Matches:     MatchOptional,
	}}
	if !opts.APATweaks {
		return patches
	}

	patches = append(patches,
		patch{
			Name:        "scope-secondary-contributors-to-books",
			Anchor:      secondaryContributors,
			Replacement: "${1}book ",
			Matches:     MatchOnce,
		},
		patch{
			Name:        "strip-native-et-al-truncation",
			Anchor:      etAlTruncation,
			Replacement: "$1",
			Matches:     MatchOnce,
		},
		patch{
			Name:        "inject-speech-locator",
			Anchor:      titleMacroElse,
			Replacement: "$1" + speechBranch + "<else>",
			Matches:     MatchOnce,
		},
		patch{
			Name:        "inject-software-locator",
			Anchor:      titleMacroElse,
			Replacement: "$1" + softwareBranch + "<else>",
			Matches:     MatchOnce,
		},
	)
	if opts.PreserveContainerCase {
		patches = append(patches, patch{
			Name:        "preserve-container-title-case",
			Anchor:      containerTitleCase,
			Replacement: "$1",
			Matches:     MatchOnce,
		})
	}
	if !opts.AbbreviateGivenNames {
		patches = append(patches, patch{
			Name:        "strip-given-name-initialization",
			Anchor:      initializeWith,
			Replacement: "",
			Matches:     MatchAtLeastOnce,
		})
	}
	if opts.IncludeISBN {
		patches = append(patches, patch{
			Name:        "inject-isbn",
			Anchor:      accessMacroCall,
			Replacement: `<text variable="ISBN" prefix=" ISBN " suffix="."/> $1`,
			Matches:     MatchOnce,
		})
	}
	if opts.URLAfterDOI {
		patches = append(patches, patch{
			Name:   "inject-url-after-doi",
			Anchor: doiText,
			Replacement: `<group delimiter=". ">$1` +
				`<text variable="URL" prefix="Retrieved from "/></group>`,
			Matches: MatchOnce,
		})
	}
	return patches
}

// Patch applies the rewrites selected by opts to styleText. It is a
// pure function of its inputs; callers memoize it per (path, options)
// through the Cache. A patch whose anchor is missing from the style
// text aborts with a ConfigurationError.
func Patch(styleText string, opts types.Options) (string, error) {
	text := styleText
	for _, p := range patchesFor(opts) {
		var err error
		text, err = p.apply(text)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}
