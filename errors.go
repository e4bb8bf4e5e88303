package mujou

import (
	"fmt"

	"github.com/pkg/errors"
)

// PipelineError is the sum type of every way a pipeline run can fail, per
// spec.md §3/§7. Only NoContours is a "data-dependent empty" result; the
// others are input or configuration errors. Strict sentinels are used
// where the failure carries no extra context, following the
// katalvlaran/lvlath tsp package's convention of sentinel errors checked
// with errors.Is rather than fmt.Errorf-wrapped strings.
var (
	// ErrEmptyInput is returned when the source byte buffer is empty.
	ErrEmptyInput = errors.New("mujou: empty input")
	// ErrNoContours is returned when edge detection produced a fully
	// empty edge map and the contour tracer found nothing to trace.
	ErrNoContours = errors.New("mujou: no contours detected")
)

// ImageDecodeError wraps the message forwarded from the decoding adapter.
type ImageDecodeError struct {
	Message string
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("mujou: image decode failed: %s", e.Message)
}

func newImageDecodeError(cause error) error {
	return &ImageDecodeError{Message: cause.Error()}
}

// InvalidConfigError reports a PipelineConfig invariant violation (spec.md
// §3's per-field table).
type InvalidConfigError struct {
	Message string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("mujou: invalid config: %s", e.Message)
}

func newInvalidConfigError(msg string) error {
	return &InvalidConfigError{Message: msg}
}

// StructuralError reports a bug in the core rather than a user or
// configuration error: Dijkstra reconstruction stalling, Hierholzer
// returning empty on a non-empty graph, and similar invariant violations
// (spec.md §7). Phase identifies which part of the joiner detected it.
type StructuralError struct {
	Phase   string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("mujou: structural invariant violated in %s: %s", e.Phase, e.Message)
}

func newStructuralError(phase, msg string) error {
	return &StructuralError{Phase: phase, Message: msg}
}
