package mujou

import "encoding/json"

// EdgeChannel is a single channel a multi-channel Canny pass can run on.
type EdgeChannel uint8

// Edge channel flags, combined with bitwise OR into EdgeChannels.
const (
	ChannelLuminance EdgeChannel = 1 << iota
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelSaturation
)

// EdgeChannels is a bitset of EdgeChannel flags; at least one must be set.
type EdgeChannels uint8

// Has reports whether ch is enabled in the set.
func (e EdgeChannels) Has(ch EdgeChannel) bool {
	return EdgeChannel(e)&ch != 0
}

// ContourTracer selects the contour-tracing strategy. BorderFollowing is
// the only implemented strategy; the enum exists so a future tracer can be
// added without breaking the config wire format.
type ContourTracer int

const (
	BorderFollowing ContourTracer = iota
)

// MaskMode selects whether and how the joined polyline is clipped.
type MaskMode int

const (
	MaskOff MaskMode = iota
	MaskCircle
	MaskRectangle
)

// BorderPath selects whether the mask boundary is emitted as its own
// polyline.
type BorderPath int

const (
	BorderOff BorderPath = iota
	BorderAuto
	BorderOn
)

// PathJoiner selects the joining strategy used to stitch disjoint
// polylines into one continuous path.
type PathJoiner int

const (
	JoinStraightLine PathJoiner = iota
	JoinRetrace
	JoinMst
)

// ParityStrategy selects how odd-degree vertices are paired off before
// Hierholzer traversal.
type ParityStrategy int

const (
	ParityGreedy ParityStrategy = iota
	ParityOptimal
)

// StartPoint selects which of the two odd-degree vertices (or, for an
// Eulerian circuit, which non-isolated vertex) Hierholzer starts from.
type StartPoint int

const (
	StartOutside StartPoint = iota
	StartInside
)

// DownsampleFilter names a resampling kernel used by the downsample stage.
// Disabled means the downsample stage is skipped entirely.
type DownsampleFilter int

const (
	FilterDisabled DownsampleFilter = iota
	FilterNearest
	FilterTriangle
	FilterCatmullRom
	FilterGaussian
	FilterLanczos3
)

// PipelineConfig is the flat set of tuning parameters for a single pipeline
// run. Mirrors the teacher's flat Processor options struct (processor.go),
// generalized from image-resize parameters to edge-tracing parameters.
type PipelineConfig struct {
	BlurSigma float32 `json:"blur_sigma"`

	CannyLow  float32 `json:"canny_low"`
	CannyHigh float32 `json:"canny_high"`
	CannyMax  float32 `json:"canny_max"`

	EdgeChannels EdgeChannels `json:"edge_channels"`
	Invert       bool         `json:"invert"`

	SimplifyTolerance float64       `json:"simplify_tolerance"`
	ContourTracer     ContourTracer `json:"contour_tracer"`

	MaskMode         MaskMode `json:"mask_mode"`
	MaskScale        float64  `json:"mask_scale"`
	MaskAspectRatio  float64  `json:"mask_aspect_ratio"`
	MaskLandscape    bool     `json:"mask_landscape"`
	BorderPath       BorderPath `json:"border_path"`

	PathJoiner     PathJoiner     `json:"path_joiner"`
	MstNeighbours  int            `json:"mst_neighbours"`
	ParityStrategy ParityStrategy `json:"parity_strategy"`
	StartPoint     StartPoint     `json:"start_point"`

	WorkingResolution uint32           `json:"working_resolution"`
	DownsampleFilter  DownsampleFilter `json:"downsample_filter"`
}

// NewPipelineConfig returns the documented default configuration.
func NewPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BlurSigma:         1.4,
		CannyLow:          15,
		CannyHigh:         40,
		CannyMax:          60,
		EdgeChannels:      EdgeChannels(ChannelLuminance),
		Invert:            false,
		SimplifyTolerance: 1.0,
		ContourTracer:     BorderFollowing,
		MaskMode:          MaskCircle,
		MaskScale:         0.75,
		MaskAspectRatio:   1.0,
		MaskLandscape:     true,
		BorderPath:        BorderAuto,
		PathJoiner:        JoinMst,
		MstNeighbours:     20,
		ParityStrategy:    ParityGreedy,
		StartPoint:        StartOutside,
		WorkingResolution: 1000,
		DownsampleFilter:  FilterTriangle,
	}
}

// Validate checks every documented invariant in spec.md §3, returning an
// InvalidConfig-class error describing the first violation found.
func (c PipelineConfig) Validate() error {
	switch {
	case c.BlurSigma <= 0:
		return newInvalidConfigError("blur_sigma must be > 0")
	case c.CannyLow < 1:
		return newInvalidConfigError("canny_low must be >= 1")
	case c.CannyLow > c.CannyHigh:
		return newInvalidConfigError("canny_low must be <= canny_high")
	case c.CannyMax < c.CannyHigh:
		return newInvalidConfigError("canny_max must be >= canny_high")
	case EdgeChannel(c.EdgeChannels) == 0:
		return newInvalidConfigError("at least one edge_channel must be enabled")
	case c.SimplifyTolerance < 0:
		return newInvalidConfigError("simplify_tolerance must be >= 0")
	case c.MaskScale < 0.01 || c.MaskScale > 1.5:
		return newInvalidConfigError("mask_scale must be within 0.01..1.5")
	case c.MaskMode == MaskRectangle && (c.MaskAspectRatio < 1.0 || c.MaskAspectRatio > 4.0):
		return newInvalidConfigError("mask_aspect_ratio must be within 1.0..4.0")
	case c.MstNeighbours <= 0:
		return newInvalidConfigError("mst_neighbours must be > 0")
	case c.WorkingResolution == 0:
		return newInvalidConfigError("working_resolution must be > 0")
	}
	return nil
}

// StageCount is the number of pipeline stages (Pending through Joined).
// The blank array index below fails to compile if StageCount and the
// Stage constants (pipeline.go) drift apart.
const StageCount = 9

var _ = [1]struct{}{}[StageCount-1-int(StageJoined)]

// PipelineEq reports whether c and other are pipeline-equivalent: no
// stage's output would differ between the two configurations.
func (c PipelineConfig) PipelineEq(other PipelineConfig) bool {
	return c.EarliestChangedStage(other) == StageCount
}

// EarliestChangedStage returns the lowest stage index (0-8) whose output
// depends on a field that differs between c and other, or StageCount if
// the two configs are pipeline-equivalent. canny_max never contributes: it
// is UI-only. The unkeyed PipelineConfig literal at the top lists every
// field, so adding a field without updating this function fails to
// compile.
func (c PipelineConfig) EarliestChangedStage(other PipelineConfig) int {
	_ = PipelineConfig{
		c.BlurSigma, c.CannyLow, c.CannyHigh, c.CannyMax, c.EdgeChannels, c.Invert,
		c.SimplifyTolerance, c.ContourTracer,
		c.MaskMode, c.MaskScale, c.MaskAspectRatio, c.MaskLandscape, c.BorderPath,
		c.PathJoiner, c.MstNeighbours, c.ParityStrategy, c.StartPoint,
		c.WorkingResolution, c.DownsampleFilter,
	}

	// Stage 2: downsample.
	if c.WorkingResolution != other.WorkingResolution || c.DownsampleFilter != other.DownsampleFilter {
		return 2
	}
	// Stage 3: blur.
	if c.BlurSigma != other.BlurSigma {
		return 3
	}
	// Stage 4: edges.
	if c.EdgeChannels != other.EdgeChannels || c.CannyLow != other.CannyLow ||
		c.CannyHigh != other.CannyHigh || c.Invert != other.Invert {
		return 4
	}
	// Stage 5: contours.
	if c.ContourTracer != other.ContourTracer {
		return 5
	}
	// Stage 6: simplify.
	if c.SimplifyTolerance != other.SimplifyTolerance {
		return 6
	}
	// Stage 7: mask.
	if c.MaskMode != other.MaskMode || c.MaskScale != other.MaskScale || c.BorderPath != other.BorderPath {
		return 7
	}
	rectangleInPlay := c.MaskMode == MaskRectangle || other.MaskMode == MaskRectangle
	if rectangleInPlay && (c.MaskAspectRatio != other.MaskAspectRatio || c.MaskLandscape != other.MaskLandscape) {
		return 7
	}
	// Stage 8: join.
	if c.PathJoiner != other.PathJoiner || c.MstNeighbours != other.MstNeighbours ||
		c.ParityStrategy != other.ParityStrategy || c.StartPoint != other.StartPoint {
		return 8
	}
	// canny_max is UI-only and intentionally not compared.
	return StageCount
}

// UnmarshalConfig decodes a JSON config document, seeding every field
// from NewPipelineConfig() first so a document that omits fields (a
// partial override, or one written against an earlier schema) still
// produces a fully valid config rather than zero-valued fields (spec.md
// §6 "Configuration serialization").
func UnmarshalConfig(data []byte) (PipelineConfig, error) {
	cfg := NewPipelineConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}
