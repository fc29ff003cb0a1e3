package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/coolbeans/quickbib/pkg/types"
)

// ProcEngine renders by spawning a collaborator process once per
// batch. The process reads one JSON request on stdin and writes one
// JSON response on stdout. A hung process hangs the batch; no timeout
// is applied.
type ProcEngine struct {
	// Command is the program and its arguments.
	Command []string
}

type procRequest struct {
	Style     string          `json:"style"`
	Formatter string          `json:"formatter"`
	Records   []*types.Record `json:"records"`
}

type procResponse struct {
	Entries []Entry `json:"entries"`
	Error   string  `json:"error,omitempty"`
	// BadRecord identifies the record a failure is attributed to.
	BadRecord string `json:"bad_record,omitempty"`
}

// Render implements Engine.
func (e *ProcEngine) Render(styleText string, recs []*types.Record, format Format) ([]Entry, error) {
	if len(e.Command) == 0 {
		return nil, &types.ConfigurationError{Reason: "no engine command configured"}
	}

	request, err := json.Marshal(procRequest{
		Style:     styleText,
		Formatter: format.Name,
		Records:   recs,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding engine request: %w", err)
	}

	cmd := exec.Command(e.Command[0], e.Command[1:]...)
	cmd.Stdin = bytes.NewReader(request)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &types.RenderError{
			Err: fmt.Errorf("engine process failed: %v: %s", err, stderr.String()),
		}
	}

	var response procResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, &types.RenderError{
			Err: fmt.Errorf("decoding engine response: %w", err),
		}
	}
	if response.Error != "" {
		return nil, &types.RenderError{
			RecordID: response.BadRecord,
			Err:      fmt.Errorf("%s", response.Error),
		}
	}
	if len(response.Entries) != len(recs) {
		return nil, &types.RenderError{
			Err: fmt.Errorf("engine returned %d entries for %d records",
				len(response.Entries), len(recs)),
		}
	}
	return response.Entries, nil
}
