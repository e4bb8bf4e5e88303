package mujou

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExportTHRHeaderAndData(t *testing.T) {
	joined := Polyline{Points: []Point{{X: 20, Y: 0}, {X: 0, Y: 20}}}
	cfg := NewPipelineConfig()
	cfg.MaskMode = MaskCircle
	dims := Dimensions{W: 40, H: 40}

	out := ExportTHR(joined, cfg, dims, THRMetadata{Source: "test.png", Exported: "2026-01-01T00:00:00Z"})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "# mujou", lines[0])
	assert.Contains(t, lines[1], "Source: test.png")
	assert.Contains(t, out, "Exported: 2026-01-01T00:00:00Z")

	dataLines := 0
	for _, l := range lines {
		if !strings.HasPrefix(l, "#") {
			dataLines++
		}
	}
	assert.Equal(t, joined.Len(), dataLines)
}

func TestExportTHROmitsEmptyMetadataLines(t *testing.T) {
	out := ExportTHR(Polyline{Points: []Point{{X: 0, Y: 1}}}, NewPipelineConfig(), Dimensions{W: 10, H: 10}, THRMetadata{})
	assert.Equal(t, 1, strings.Count(out, "#"), "only the mujou marker line should be present with no metadata")
}

func TestExportSVGSkipsUndrawablePolylines(t *testing.T) {
	polys := []Polyline{
		{Points: []Point{{X: 0, Y: 0}}}, // single point, not drawable
		{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
	}
	out := ExportSVG(polys, Dimensions{W: 20, H: 20})

	assert.Equal(t, 1, strings.Count(out, "<path"))
	assert.Contains(t, out, `viewBox="0 0 20 20"`)
	assert.Contains(t, out, "M 0.0 0.0")
	assert.Contains(t, out, "L 10.0 10.0")
}

func TestExportSVGEmptyInput(t *testing.T) {
	out := ExportSVG(nil, Dimensions{W: 5, H: 5})
	assert.Equal(t, 0, strings.Count(out, "<path"))
	assert.Contains(t, out, "</svg>")
}
