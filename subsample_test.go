package mujou

import "testing"

func TestSubsampleMaxLengthSplitsLongSegments(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}}
	out := subsampleMaxLength(p, 3)

	for i := 1; i < len(out.Points); i++ {
		if d := out.Points[i-1].Dist(out.Points[i]); d > 3+1e-9 {
			t.Errorf("segment %d too long: %v", i, d)
		}
	}
	if out.Points[0] != p.Points[0] || out.Points[len(out.Points)-1] != p.Points[len(p.Points)-1] {
		t.Error("subsampling should preserve original endpoints")
	}
}

func TestSubsampleMaxLengthNoOpBelowThreshold(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	out := subsampleMaxLength(p, 10)
	if len(out.Points) != 2 {
		t.Errorf("expected no subdivision for a short segment, got %d points", len(out.Points))
	}
}

func TestRankLongestSegments(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 10}, {X: 1, Y: 11}}}
	ranks := rankLongestSegments(p, 2)
	if len(ranks) != 2 {
		t.Fatalf("expected 2 ranks, got %d", len(ranks))
	}
	if ranks[0].Length < ranks[1].Length {
		t.Error("ranks should be sorted longest first")
	}
	if ranks[0].StartIndex != 1 {
		t.Errorf("expected the longest segment to start at index 1, got %d", ranks[0].StartIndex)
	}
}

func TestRankLongestSegmentsClampsToAvailable(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 1, Y: 0}}}
	ranks := rankLongestSegments(p, 10)
	if len(ranks) != 1 {
		t.Errorf("expected 1 segment, got %d", len(ranks))
	}
}

func TestSampleAtSpacingIncludesOriginalVertices(t *testing.T) {
	p := Polyline{Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}}
	samples := sampleAtSpacing(p, 4)

	for _, v := range p.Points {
		found := false
		for _, s := range samples {
			if s == v {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("original vertex %v missing from samples", v)
		}
	}
}
