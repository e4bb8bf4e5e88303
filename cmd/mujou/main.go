package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mujou/mujou-go"
	"github.com/mujou/mujou-go/utils"
	"golang.org/x/term"
)

const helpBanner = `
┌┬┐┬ ┬ ┬┌─┐┬ ┬
│││││ │ │ ││ │
┴ ┴└┴─┘└─┘└─┘

Image-to-single-stroke-path converter.
`

// pipeName indicates that stdin/stdout is being used as file names.
const pipeName = "-"

var (
	source      = flag.String("in", pipeName, "Source image")
	destination = flag.String("out", pipeName, "Destination path (.thr or .svg)")
	configPath  = flag.String("config", "", "Path to a JSON PipelineConfig; overrides built-in defaults")

	blurSigma         = flag.Float64("blur", 1.4, "Gaussian blur sigma")
	cannyLow          = flag.Float64("canny-low", 15, "Canny low threshold")
	cannyHigh         = flag.Float64("canny-high", 40, "Canny high threshold")
	simplify          = flag.Float64("simplify", 1.0, "RDP simplification tolerance")
	maskMode          = flag.String("mask", "circle", "Mask shape: circle, rectangle, off")
	maskScale         = flag.Float64("mask-scale", 0.75, "Mask scale, 0.01..1.5")
	joiner            = flag.String("joiner", "mst", "Path joiner: mst, straight-line, retrace")
	workingResolution = flag.Uint("resolution", 1000, "Working resolution (longer side, px)")
	invert            = flag.Bool("invert", false, "Invert the edge map before tracing")

	diagnostics = flag.Bool("diagnostics", false, "Print per-stage timing diagnostics to stderr")
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, helpBanner)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := resolveConfig()
	if err != nil {
		log.Fatal(utils.DecorateText(fmt.Sprintf("invalid configuration: %v", err), utils.ErrorMessage))
	}

	spinner := utils.NewSpinner(
		fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ mujou", utils.StatusMessage),
			utils.DecorateText("⇢ tracing in progress...", utils.DefaultMessage),
		),
		time.Millisecond*80,
		true,
	)
	spinner.Start()

	now := time.Now()
	err = run(*source, *destination, cfg, *diagnostics)
	spinner.Stop()

	if err != nil {
		fmt.Fprint(os.Stderr, utils.DecorateText(fmt.Sprintf("\nFailed to trace image: %v\n", err), utils.ErrorMessage))
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// resolveConfig builds a PipelineConfig from -config (if given) overlaid
// with the individually-named flags, so a saved config file can be
// tweaked ad hoc from the command line without editing it.
func resolveConfig() (mujou.PipelineConfig, error) {
	cfg := mujou.NewPipelineConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return cfg, err
		}
		cfg, err = mujou.UnmarshalConfig(data)
		if err != nil {
			return cfg, err
		}
	}

	cfg.BlurSigma = float32(*blurSigma)
	cfg.CannyLow = float32(*cannyLow)
	cfg.CannyHigh = float32(*cannyHigh)
	cfg.SimplifyTolerance = *simplify
	cfg.MaskScale = *maskScale
	cfg.WorkingResolution = uint32(*workingResolution)
	cfg.Invert = *invert

	switch strings.ToLower(*maskMode) {
	case "circle":
		cfg.MaskMode = mujou.MaskCircle
	case "rectangle":
		cfg.MaskMode = mujou.MaskRectangle
	case "off":
		cfg.MaskMode = mujou.MaskOff
	default:
		return cfg, fmt.Errorf("unknown -mask value %q", *maskMode)
	}

	switch strings.ToLower(*joiner) {
	case "mst":
		cfg.PathJoiner = mujou.JoinMst
	case "straight-line":
		cfg.PathJoiner = mujou.JoinStraightLine
	case "retrace":
		cfg.PathJoiner = mujou.JoinRetrace
	default:
		return cfg, fmt.Errorf("unknown -joiner value %q", *joiner)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// run reads the source image, runs the pipeline, and writes the
// exported path in the format named by the destination's extension.
func run(in, out string, cfg mujou.PipelineConfig, withDiagnostics bool) error {
	data, err := readSource(in)
	if err != nil {
		return err
	}

	var result mujou.Result
	if withDiagnostics {
		var diag mujou.PipelineDiagnostics
		result, diag, err = mujou.ProcessStagedWithDiagnostics(data, cfg, nil)
		if err != nil {
			return err
		}
		printDiagnostics(diag)
	} else {
		result, err = mujou.Process(data, cfg)
		if err != nil {
			return err
		}
	}

	return writeDestination(out, result, cfg)
}

func readSource(in string) ([]byte, error) {
	if in == pipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(in)
}

// writeDestination exports result in the format implied by out's
// extension: .svg renders every masked polyline, anything else
// (including pipeName) renders the joined polyline as THR.
func writeDestination(out string, result mujou.Result, cfg mujou.PipelineConfig) error {
	var content string
	switch strings.ToLower(filepath.Ext(out)) {
	case ".svg":
		content = mujou.ExportSVG(result.Masked.All(), result.Dimensions)
	default:
		content = mujou.ExportTHR(result.Joined, cfg, result.Dimensions, mujou.THRMetadata{
			Exported: time.Now().Format(time.RFC3339),
		})
	}

	if out == pipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		_, err := os.Stdout.WriteString(content)
		return err
	}
	return os.WriteFile(out, []byte(content), 0644)
}

func printDiagnostics(diag mujou.PipelineDiagnostics) {
	for i, m := range diag.StageMetrics {
		if m == nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "  stage %d: pixels=%d vertices=%d elapsed=%s\n",
			i, m.PixelsProcessed, m.VerticesEmitted, m.Elapsed)
	}
	if diag.InvertMetrics != nil {
		fmt.Fprintf(os.Stderr, "  invert: elapsed=%s\n", diag.InvertMetrics.Elapsed)
	}
	fmt.Fprintf(os.Stderr, "  total: %s\n", diag.TotalElapsed)
}
