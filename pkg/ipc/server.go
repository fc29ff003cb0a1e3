// Package ipc serves the line-oriented request/response protocol used
// to drive the pipeline as a subprocess: one JSON object per input
// line, one JSON object per output line.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/coolbeans/quickbib/pkg/bib"
	"github.com/coolbeans/quickbib/pkg/types"
)

// maxLineBytes bounds a single request line. Batches are small; 16 MiB
// leaves generous room for long abstracts.
const maxLineBytes = 16 << 20

// Server reads commands from in and writes one response per line to
// out. A bad request produces an error response, never a crash.
type Server struct {
	pipeline *bib.Pipeline
	in       io.Reader
	out      io.Writer
}

// New creates a server around a pipeline.
func New(pipeline *bib.Pipeline, in io.Reader, out io.Writer) *Server {
	return &Server{pipeline: pipeline, in: in, out: out}
}

type request struct {
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args"`
}

// bibArgs are the non-option arguments of a bib/bib1 request. The
// option fields ride in the same object and are decoded separately.
type bibArgs struct {
	StylePath          string          `json:"style_path"`
	D                  *types.Record   `json:"d"`
	Ds                 []*types.Record `json:"ds"`
	ReturnCitesAndKeys bool            `json:"return_cites_and_keys"`
}

// Run serves requests until quit, end of input, or a write failure.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			if err := encoder.Encode(map[string]string{
				"error": fmt.Sprintf("bad request: %v", err),
			}); err != nil {
				return err
			}
			continue
		}

		if req.Command == "quit" {
			return nil
		}

		var response any
		value, err := s.dispatch(req)
		if err != nil {
			response = map[string]string{"error": err.Error()}
		} else {
			response = map[string]any{"value": value}
		}
		if err := encoder.Encode(response); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// dispatch runs one command and returns its value.
func (s *Server) dispatch(req request) (any, error) {
	switch req.Command {
	case "bib", "bib1":
	default:
		return nil, fmt.Errorf("illegal command: %s", req.Command)
	}

	var args bibArgs
	if err := json.Unmarshal(req.Args, &args); err != nil {
		return nil, fmt.Errorf("bad arguments: %w", err)
	}
	opts := bib.DefaultOptions()
	if err := json.Unmarshal(req.Args, &opts); err != nil {
		return nil, fmt.Errorf("bad options: %w", err)
	}
	if args.StylePath == "" {
		return nil, fmt.Errorf("style_path is required")
	}

	records := args.Ds
	if req.Command == "bib1" {
		if args.D == nil {
			return nil, fmt.Errorf("bib1 requires a record in d")
		}
		records = []*types.Record{args.D}
	} else if len(records) == 0 {
		return nil, fmt.Errorf("bib requires records in ds")
	}

	result, err := s.pipeline.Bib(args.StylePath, records, opts)
	if err != nil {
		return nil, err
	}
	if args.ReturnCitesAndKeys {
		return []any{result.Cites, result.Keys, result.Text}, nil
	}
	return result.Text, nil
}
