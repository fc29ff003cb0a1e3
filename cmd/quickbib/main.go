package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coolbeans/quickbib/pkg/bib"
	"github.com/coolbeans/quickbib/pkg/coins"
	"github.com/coolbeans/quickbib/pkg/ipc"
	"github.com/coolbeans/quickbib/pkg/render"
	"github.com/coolbeans/quickbib/pkg/style"
	"github.com/coolbeans/quickbib/pkg/types"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "quickbib",
		Short: "Publication-ready bibliography rendering",
		Long: `Quickbib renders CSL-JSON reference records into APA/MLA
bibliography text and COinS/OpenURL metadata.

The CSL interpretation itself is delegated to an external engine
process; quickbib patches the style definition, preprocesses and
disambiguates the records, sorts the bibliography, and cleans up the
rendered text.`,
		Version: version,
	}

	rootCmd.AddCommand(bibCmd())
	rootCmd.AddCommand(coinsCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bibCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bib",
		Short: "Render a batch of reference records",
		Long: `Render a batch of CSL-JSON reference records to bibliography text.

Example:
  quickbib bib --style apa.csl --input refs.json --engine-cmd citeproc-server
  quickbib bib --style apa.csl --input refs.json --config options.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stylePath, _ := cmd.Flags().GetString("style")
			inputPath, _ := cmd.Flags().GetString("input")
			if stylePath == "" {
				return fmt.Errorf("--style flag is required")
			}
			if inputPath == "" {
				return fmt.Errorf("--input flag is required")
			}

			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			records, err := readRecords(inputPath)
			if err != nil {
				return err
			}
			engine, err := engineFromFlags(cmd)
			if err != nil {
				return err
			}

			pipeline := bib.New(engine, style.NewCache(nil))
			result, err := pipeline.Bib(stylePath, records, opts)
			if err != nil {
				return err
			}

			if withKeys, _ := cmd.Flags().GetBool("cites-and-keys"); withKeys {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"cites": result.Cites,
					"keys":  result.Keys,
					"text":  result.Text,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			return nil
		},
	}

	cmd.Flags().String("style", "", "Path to the CSL style definition")
	cmd.Flags().String("input", "", "Path to a JSON array of reference records")
	cmd.Flags().Bool("cites-and-keys", false, "Also emit in-text cites and entry keys as JSON")
	addOptionFlags(cmd)
	addEngineFlags(cmd)
	return cmd
}

func coinsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coins",
		Short: "Emit COinS OpenURL spans for reference records",
		Long: `Convert CSL-JSON reference records into COinS <span> elements,
one per line.

Example:
  quickbib coins --input refs.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath, _ := cmd.Flags().GetString("input")
			if inputPath == "" {
				return fmt.Errorf("--input flag is required")
			}
			records, err := readRecords(inputPath)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintln(cmd.OutOrStdout(), coins.Span(rec))
			}
			return nil
		},
	}

	cmd.Flags().String("input", "", "Path to a JSON array of reference records")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bib commands over stdin/stdout",
		Long: `Serve the line-oriented JSON protocol on stdin/stdout: each
input line is {"command": "bib"|"bib1"|"quit", "args": {...}} and each
output line is {"value": ...} or {"error": "..."}.

Example:
  quickbib serve --engine-cmd citeproc-server --watch apa.csl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := engineFromFlags(cmd)
			if err != nil {
				return err
			}

			cache := style.NewCache(nil)
			watched, _ := cmd.Flags().GetStringSlice("watch")
			if len(watched) > 0 {
				if err := cache.Watch(watched...); err != nil {
					return err
				}
				defer cache.Close()
			}

			server := ipc.New(bib.New(engine, cache), cmd.InOrStdin(), cmd.OutOrStdout())
			return server.Run()
		},
	}

	cmd.Flags().StringSlice("watch", nil, "Style files to watch; changes invalidate the style cache")
	addEngineFlags(cmd)
	return cmd
}

func addOptionFlags(cmd *cobra.Command) {
	defaults := bib.DefaultOptions()
	cmd.Flags().String("config", "", "YAML options file (flags override it)")
	cmd.Flags().String("formatter", defaults.Formatter, "Output formatter: plain, html, or semi-plain")
	cmd.Flags().Bool("apa-tweaks", defaults.APATweaks, "Apply the APA style corrections")
	cmd.Flags().Bool("always-include-issue", defaults.AlwaysIncludeIssue, "Keep issue numbers on journal articles")
	cmd.Flags().Bool("include-isbn", defaults.IncludeISBN, "Render ISBNs")
	cmd.Flags().Bool("abbreviate-given-names", defaults.AbbreviateGivenNames, "Abbreviate given names to initials")
	cmd.Flags().Bool("url-after-doi", defaults.URLAfterDOI, "Render the URL after a DOI")
	cmd.Flags().Bool("publisher-website", defaults.PublisherWebsite, "Fold report publishers into the URL annotation")
	cmd.Flags().Bool("preserve-container-case", defaults.PreserveContainerCase, "Suppress title-casing of container titles")
	cmd.Flags().Bool("dumb-quotes", defaults.DumbQuotes, "Convert curly quotes to straight quotes")
}

// optionsFromFlags builds the option set: defaults, then the config
// file if given, then any explicitly set flags.
func optionsFromFlags(cmd *cobra.Command) (bib.Options, error) {
	opts := bib.DefaultOptions()
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		loaded, err := bib.LoadOptions(configPath)
		if err != nil {
			return bib.Options{}, err
		}
		opts = loaded
	}

	setBool := func(flag string, dst *bool) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetBool(flag)
		}
	}
	setBool("apa-tweaks", &opts.APATweaks)
	setBool("always-include-issue", &opts.AlwaysIncludeIssue)
	setBool("include-isbn", &opts.IncludeISBN)
	setBool("abbreviate-given-names", &opts.AbbreviateGivenNames)
	setBool("url-after-doi", &opts.URLAfterDOI)
	setBool("publisher-website", &opts.PublisherWebsite)
	setBool("preserve-container-case", &opts.PreserveContainerCase)
	setBool("dumb-quotes", &opts.DumbQuotes)
	if cmd.Flags().Changed("formatter") {
		opts.Formatter, _ = cmd.Flags().GetString("formatter")
	}
	return opts, nil
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().String("engine-cmd", "", "CSL engine command line (required)")
}

func engineFromFlags(cmd *cobra.Command) (render.Engine, error) {
	engineCmd, _ := cmd.Flags().GetString("engine-cmd")
	if engineCmd == "" {
		return nil, fmt.Errorf("--engine-cmd flag is required")
	}
	return &render.ProcEngine{Command: strings.Fields(engineCmd)}, nil
}

// readRecords loads a JSON array of reference records (or a single
// record object) from path.
func readRecords(path string) ([]*types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var rec types.Record
		if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
			return nil, err
		}
		return []*types.Record{&rec}, nil
	}
	var records []*types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
