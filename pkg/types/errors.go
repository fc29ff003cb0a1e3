package types

import "fmt"

// ConfigurationError reports an unusable configuration: an unknown
// formatter name, or a style patch whose anchor no longer matches the
// style text. It aborts the whole batch.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// RenderError reports that the rendering boundary rejected a record.
// The batch aborts; no partial bibliography is returned.
type RenderError struct {
	RecordID string
	Err      error
}

func (e *RenderError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("rendering failed: %v", e.Err)
	}
	return fmt.Sprintf("rendering record %s: %v", e.RecordID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// MalformedInputError reports a record rejected before normalization:
// a missing type or a field of the wrong shape.
type MalformedInputError struct {
	RecordID string
	Reason   string
}

func (e *MalformedInputError) Error() string {
	if e.RecordID == "" {
		return "malformed record: " + e.Reason
	}
	return fmt.Sprintf("malformed record %s: %s", e.RecordID, e.Reason)
}
