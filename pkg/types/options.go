package types

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Options control style patching, reference preprocessing and text
// normalization. The zero value is not useful; start from
// DefaultOptions. Fields other than Formatter and DumbQuotes are
// ignored unless APATweaks is on.
type Options struct {
	APATweaks             bool   `json:"apa_tweaks" yaml:"apa_tweaks"`
	AlwaysIncludeIssue    bool   `json:"always_include_issue" yaml:"always_include_issue"`
	IncludeISBN           bool   `json:"include_isbn" yaml:"include_isbn"`
	AbbreviateGivenNames  bool   `json:"abbreviate_given_names" yaml:"abbreviate_given_names"`
	URLAfterDOI           bool   `json:"url_after_doi" yaml:"url_after_doi"`
	PublisherWebsite      bool   `json:"publisher_website" yaml:"publisher_website"`
	PreserveContainerCase bool   `json:"preserve_container_case" yaml:"preserve_container_case"`
	DumbQuotes            bool   `json:"dumb_quotes" yaml:"dumb_quotes"`
	Formatter             string `json:"formatter" yaml:"formatter"`
}

// DefaultOptions returns the option set used when a caller specifies
// nothing: APA tweaks with abbreviated given names, the report
// publisher-website format, straight quotes, and the semi-plain
// formatter.
func DefaultOptions() Options {
	return Options{
		APATweaks:            true,
		AbbreviateGivenNames: true,
		PublisherWebsite:     true,
		DumbQuotes:           true,
		Formatter:            "semi-plain",
	}
}

// optionsWire mirrors Options with pointers so absent fields can fall
// back to their defaults instead of the zero value.
type optionsWire struct {
	APATweaks             *bool   `json:"apa_tweaks" yaml:"apa_tweaks"`
	AlwaysIncludeIssue    *bool   `json:"always_include_issue" yaml:"always_include_issue"`
	IncludeISBN           *bool   `json:"include_isbn" yaml:"include_isbn"`
	AbbreviateGivenNames  *bool   `json:"abbreviate_given_names" yaml:"abbreviate_given_names"`
	URLAfterDOI           *bool   `json:"url_after_doi" yaml:"url_after_doi"`
	PublisherWebsite      *bool   `json:"publisher_website" yaml:"publisher_website"`
	PreserveContainerCase *bool   `json:"preserve_container_case" yaml:"preserve_container_case"`
	DumbQuotes            *bool   `json:"dumb_quotes" yaml:"dumb_quotes"`
	Formatter             *string `json:"formatter" yaml:"formatter"`
}

func (o *Options) fromWire(w optionsWire) {
	*o = DefaultOptions()
	if w.APATweaks != nil {
		o.APATweaks = *w.APATweaks
	}
	if w.AlwaysIncludeIssue != nil {
		o.AlwaysIncludeIssue = *w.AlwaysIncludeIssue
	}
	if w.IncludeISBN != nil {
		o.IncludeISBN = *w.IncludeISBN
	}
	if w.AbbreviateGivenNames != nil {
		o.AbbreviateGivenNames = *w.AbbreviateGivenNames
	}
	if w.URLAfterDOI != nil {
		o.URLAfterDOI = *w.URLAfterDOI
	}
	if w.PublisherWebsite != nil {
		o.PublisherWebsite = *w.PublisherWebsite
	}
	if w.PreserveContainerCase != nil {
		o.PreserveContainerCase = *w.PreserveContainerCase
	}
	if w.DumbQuotes != nil {
		o.DumbQuotes = *w.DumbQuotes
	}
	if w.Formatter != nil {
		o.Formatter = *w.Formatter
	}
}

// UnmarshalJSON decodes options, applying defaults for absent fields.
func (o *Options) UnmarshalJSON(data []byte) error {
	var w optionsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	o.fromWire(w)
	return nil
}

// UnmarshalYAML decodes options, applying defaults for absent fields.
func (o *Options) UnmarshalYAML(value *yaml.Node) error {
	var w optionsWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	o.fromWire(w)
	return nil
}

// PatchKey is the canonical form of the options that influence style
// patching, used as the cache key component alongside the style path.
func (o Options) PatchKey() string {
	return fmt.Sprintf("tweaks=%t,isbn=%t,url=%t,abbrev=%t,case=%t",
		o.APATweaks, o.IncludeISBN, o.URLAfterDOI,
		o.AbbreviateGivenNames, o.PreserveContainerCase)
}
