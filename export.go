package mujou

import (
	"fmt"
	"strings"
)

// THRMetadata holds the optional #-prefixed header lines for a THR
// export (spec.md §6). Exported is a caller-supplied timestamp string —
// export.go never touches a clock itself, keeping it a pure function of
// its inputs. Any empty field is omitted from the header.
type THRMetadata struct {
	Source      string
	Description string
	Exported    string
	Config      string
}

// ExportTHR renders joined's continuously-unwound polar projection as a
// sand-table .thr file: a `# mujou` marker, then any provided metadata
// lines, then one `"<theta> <rho>"` data line per vertex at 5 decimal
// digits (spec.md §6).
func ExportTHR(joined Polyline, cfg PipelineConfig, dims Dimensions, meta THRMetadata) string {
	points := projectPolar(joined, cfg, dims)

	var b strings.Builder
	b.WriteString("# mujou\n")
	if meta.Source != "" {
		fmt.Fprintf(&b, "# Source: %s\n", meta.Source)
	}
	if meta.Description != "" {
		fmt.Fprintf(&b, "# %s\n", meta.Description)
	}
	if meta.Exported != "" {
		fmt.Fprintf(&b, "# Exported: %s\n", meta.Exported)
	}
	if meta.Config != "" {
		fmt.Fprintf(&b, "# Config: %s\n", meta.Config)
	}
	for _, p := range points {
		fmt.Fprintf(&b, "%.5f %.5f\n", p.Theta, p.Rho)
	}
	return b.String()
}

// ExportSVG renders every polyline in polys with at least 2 points as
// one <path> element inside an SVG document sized to dims, coordinates
// formatted to 1 decimal digit (spec.md §6). Polylines with fewer than 2
// points carry no drawable segment and are skipped silently.
func ExportSVG(polys []Polyline, dims Dimensions) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`+"\n", dims.W, dims.H)

	for _, p := range polys {
		if !p.Drawable() {
			continue
		}
		b.WriteString(`  <path d="`)
		for i, pt := range p.Points {
			if i == 0 {
				fmt.Fprintf(&b, "M %.1f %.1f", pt.X, pt.Y)
			} else {
				fmt.Fprintf(&b, " L %.1f %.1f", pt.X, pt.Y)
			}
		}
		b.WriteString(`" fill="none" stroke="black" stroke-width="1" />` + "\n")
	}

	b.WriteString("</svg>\n")
	return b.String()
}
