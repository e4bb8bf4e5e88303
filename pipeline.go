package mujou

import "image"

// Stage names one of the 9 points in a pipeline run, from the initial
// Pending state through the final Joined output (spec.md §5). A Stage
// value always describes how far a run has progressed, not which stage
// is about to execute.
type Stage int

const (
	StagePending Stage = iota
	StageDecoded
	StageDownsampled
	StageBlurred
	StageEdgesDetected
	StageContoursTraced
	StageSimplified
	StageMasked
	StageJoined
)

// stageNames are the stable wire identifiers from spec.md §6's progress-
// reporting contract: {source, decode, downsample, blur, edges,
// contours, simplify, mask, join}.
var stageNames = [StageCount]string{
	"source", "decode", "downsample", "blur", "edges",
	"contours", "simplify", "mask", "join",
}

// String returns the stage's wire name, matching the progress-reporting
// contract in spec.md §5.
func (s Stage) String() string { return stageNames[s] }

// Index returns the stage's numeric position, 0-8.
func (s Stage) Index() int { return int(s) }

// Result is the caller-facing output of a completed pipeline run.
type Result struct {
	Dimensions         Dimensions
	DownsampleApplied  bool
	PreInvertEdgeCount int
	Contours           []Polyline
	Simplified         []Polyline
	Masked             MaskResult
	Joined             Polyline
	JoinMetrics        JoinQualityMetrics
}

// pipelineState carries every stage's output. Only fields produced by
// stages <= the owning StagedResult's current Stage are meaningful.
type pipelineState struct {
	cfg  PipelineConfig
	dims Dimensions

	raw               *image.NRGBA
	downsampled       *image.NRGBA
	downsampleApplied bool
	blurred           *image.NRGBA
	edges             *channelImage
	preInvertEdgeCount int
	contours          []Polyline
	simplified        []Polyline
	masked            MaskResult
	joined            Polyline
	joinMetrics       JoinQualityMetrics
}

func (s pipelineState) toResult() Result {
	return Result{
		Dimensions:         s.dims,
		DownsampleApplied:  s.downsampleApplied,
		PreInvertEdgeCount: s.preInvertEdgeCount,
		Contours:           s.contours,
		Simplified:         s.simplified,
		Masked:             s.masked,
		Joined:             s.joined,
		JoinMetrics:        s.joinMetrics,
	}
}

// StagedResult drives a pipeline run one stage at a time (spec.md §5's
// staged entry point), so a caller can report progress between stages or
// inspect intermediate output. Each Advance call executes exactly the
// work for one stage transition.
type StagedResult struct {
	stage Stage
	data  []byte
	state pipelineState
	diag  *PipelineDiagnostics
	clock Clock
}

func newStagedResult(data []byte, cfg PipelineConfig, clock Clock) (*StagedResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = monoClock
	}
	return &StagedResult{
		stage: StagePending,
		data:  data,
		state: pipelineState{cfg: cfg},
		clock: clock,
	}, nil
}

// newStagedResultFrom resumes a StagedResult at an arbitrary stage with
// already-populated state, for CachedPipeline's re-run support.
func newStagedResultFrom(start Stage, seed pipelineState, cfg PipelineConfig, clock Clock) *StagedResult {
	seed.cfg = cfg
	return &StagedResult{stage: start, state: seed, clock: clock}
}

// Stage returns how far the run has progressed.
func (r *StagedResult) Stage() Stage { return r.stage }

// Complete reports whether every stage has run.
func (r *StagedResult) Complete() bool { return r.stage == StageJoined }

// snapshot exposes the underlying pipeline state for CachedPipeline's
// snapshotting; not part of the public staged-driving contract.
func (r *StagedResult) snapshot() pipelineState { return r.state }

// Advance executes the next stage, advancing Stage() by one. Calling
// Advance once Complete() is true is a no-op that returns nil.
func (r *StagedResult) Advance() error {
	if r.Complete() {
		return nil
	}
	start := r.clock.Now()

	switch r.stage {
	case StagePending:
		img, err := decodeImage(r.data)
		if err != nil {
			return err
		}
		r.state.raw = img
		b := img.Bounds()
		r.state.dims = Dimensions{W: uint32(b.Dx()), H: uint32(b.Dy())}
		r.record(StageDecoded, start, b.Dx()*b.Dy(), 0)

	case StageDecoded:
		out, applied := downsample(r.state.raw, r.state.cfg.WorkingResolution, r.state.cfg.DownsampleFilter)
		r.state.downsampled = out
		r.state.downsampleApplied = applied
		b := out.Bounds()
		r.state.dims = Dimensions{W: uint32(b.Dx()), H: uint32(b.Dy())}
		r.record(StageDownsampled, start, b.Dx()*b.Dy(), 0)

	case StageDownsampled:
		r.state.blurred = gaussianBlur(r.state.downsampled, r.state.cfg.BlurSigma)
		b := r.state.blurred.Bounds()
		r.record(StageBlurred, start, b.Dx()*b.Dy(), 0)

	case StageBlurred:
		edges, preCount, invertMetrics := detectEdges(r.state.blurred, r.state.cfg)
		r.state.edges = edges
		r.state.preInvertEdgeCount = preCount
		if r.diag != nil {
			r.diag.InvertMetrics = invertMetrics
		}
		r.record(StageEdgesDetected, start, edges.W*edges.H, 0)

	case StageEdgesDetected:
		contours := traceContours(r.state.edges)
		if len(contours) == 0 {
			return ErrNoContours
		}
		r.state.contours = contours
		r.record(StageContoursTraced, start, 0, totalVertices(contours))

	case StageContoursTraced:
		r.state.simplified = simplifyPolylines(r.state.contours, r.state.cfg.SimplifyTolerance)
		r.record(StageSimplified, start, 0, totalVertices(r.state.simplified))

	case StageSimplified:
		if shape, ok := resolveMaskShape(r.state.cfg, r.state.dims); ok {
			r.state.masked = clipMask(r.state.simplified, shape, r.state.cfg.BorderPath)
		} else {
			clipped := make([]ClippedPolyline, len(r.state.simplified))
			for i, p := range r.state.simplified {
				clipped[i] = ClippedPolyline{Polyline: p}
			}
			r.state.masked = MaskResult{Clipped: clipped}
		}
		r.record(StageMasked, start, 0, totalVertices(r.state.masked.All()))

	case StageMasked:
		joined, metrics, err := joinPolylines(r.state.masked.All(), r.state.cfg, r.state.dims)
		if err != nil {
			return err
		}
		r.state.joined = joined
		r.state.joinMetrics = metrics
		r.record(StageJoined, start, 0, joined.Len())
	}

	r.stage++
	return nil
}

// record stores the metrics for the stage transition just completed,
// when diagnostics collection is enabled.
func (r *StagedResult) record(dest Stage, start Instant, pixels, vertices int) {
	if r.diag == nil {
		return
	}
	r.diag.StageMetrics[dest] = &StageMetrics{
		PixelsProcessed: pixels,
		VerticesEmitted: vertices,
		Elapsed:         r.clock.Elapsed(start),
	}
}

func totalVertices(polys []Polyline) int {
	n := 0
	for _, p := range polys {
		n += p.Len()
	}
	return n
}

// runToCompletion drives r through every remaining stage.
func runToCompletion(r *StagedResult) error {
	for !r.Complete() {
		if err := r.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// Process runs the full pipeline over data with cfg and returns the
// final Result, without collecting diagnostics (spec.md §5's plain entry
// point).
func Process(data []byte, cfg PipelineConfig) (Result, error) {
	r, err := newStagedResult(data, cfg, monoClock)
	if err != nil {
		return Result{}, err
	}
	if err := runToCompletion(r); err != nil {
		return Result{}, err
	}
	return r.state.toResult(), nil
}

// ProcessStaged returns a driver positioned at StagePending so the
// caller can Advance it one stage at a time, inspecting or reporting
// progress between calls (spec.md §5).
func ProcessStaged(data []byte, cfg PipelineConfig) (*StagedResult, error) {
	return newStagedResult(data, cfg, monoClock)
}

// ProcessStagedWithDiagnostics runs the full pipeline to completion using
// clock (or the real wall-clock if clock is nil) and returns both the
// Result and per-stage PipelineDiagnostics (spec.md §5).
func ProcessStagedWithDiagnostics(data []byte, cfg PipelineConfig, clock Clock) (Result, PipelineDiagnostics, error) {
	r, err := newStagedResult(data, cfg, clock)
	if err != nil {
		return Result{}, PipelineDiagnostics{}, err
	}
	diag := &PipelineDiagnostics{}
	r.diag = diag
	overallStart := r.clock.Now()

	if err := runToCompletion(r); err != nil {
		return Result{}, PipelineDiagnostics{}, err
	}
	diag.TotalElapsed = r.clock.Elapsed(overallStart)
	return r.state.toResult(), *diag, nil
}

// CachedPipeline retains the previous run's per-stage outputs so a
// follow-up run with a tweaked PipelineConfig resumes from
// cfg.EarliestChangedStage instead of redoing stages whose inputs didn't
// change (spec.md §5's re-run caching contract).
type CachedPipeline struct {
	data    []byte
	clock   Clock
	hasRun  bool
	lastCfg PipelineConfig
	state   pipelineState
}

// NewCachedPipeline runs the pipeline once over data with cfg and
// retains its output for future re-runs.
func NewCachedPipeline(data []byte, cfg PipelineConfig, clock Clock) (*CachedPipeline, error) {
	if clock == nil {
		clock = monoClock
	}
	cp := &CachedPipeline{data: data, clock: clock}
	if err := cp.Run(cfg); err != nil {
		return nil, err
	}
	return cp, nil
}

// Run re-executes the pipeline with cfg, reusing every stage's cached
// output up to cfg.EarliestChangedStage(previous config) and only
// recomputing stages from that point onward. The first call always runs
// every stage.
func (cp *CachedPipeline) Run(cfg PipelineConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	start := StagePending
	seed := pipelineState{cfg: cfg}
	if cp.hasRun {
		changed := cp.lastCfg.EarliestChangedStage(cfg)
		if changed == StageCount {
			cp.lastCfg = cfg
			return nil // pipeline-equivalent: nothing to redo
		}
		// changed names the first STATE whose output is now invalid; the
		// transition that recomputes it runs with r.stage one behind
		// that (Advance's switch keys on the state being transitioned
		// FROM, not the state it produces).
		start = Stage(changed - 1)
		seed = cp.state
	}

	r := newStagedResultFrom(start, seed, cfg, cp.clock)
	r.data = cp.data
	if err := runToCompletion(r); err != nil {
		return err
	}

	cp.state = r.snapshot()
	cp.lastCfg = cfg
	cp.hasRun = true
	return nil
}

// Result returns the most recent run's output.
func (cp *CachedPipeline) Result() Result {
	return cp.state.toResult()
}
