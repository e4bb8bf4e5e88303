package mujou

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPipelineConfigValidatesClean(t *testing.T) {
	cfg := NewPipelineConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *PipelineConfig)
	}{
		{"blur sigma", func(c *PipelineConfig) { c.BlurSigma = 0 }},
		{"canny low below 1", func(c *PipelineConfig) { c.CannyLow = 0 }},
		{"canny low above high", func(c *PipelineConfig) { c.CannyLow = 50; c.CannyHigh = 40 }},
		{"canny max below high", func(c *PipelineConfig) { c.CannyMax = 10 }},
		{"no edge channels", func(c *PipelineConfig) { c.EdgeChannels = 0 }},
		{"negative simplify tolerance", func(c *PipelineConfig) { c.SimplifyTolerance = -1 }},
		{"mask scale too small", func(c *PipelineConfig) { c.MaskScale = 0 }},
		{"mask scale too big", func(c *PipelineConfig) { c.MaskScale = 2 }},
		{"rectangle aspect out of range", func(c *PipelineConfig) { c.MaskMode = MaskRectangle; c.MaskAspectRatio = 0.5 }},
		{"non-positive mst neighbours", func(c *PipelineConfig) { c.MstNeighbours = 0 }},
		{"zero working resolution", func(c *PipelineConfig) { c.WorkingResolution = 0 }},
	}
	for _, tc := range cases {
		cfg := NewPipelineConfig()
		tc.mutate(&cfg)
		assert.Error(t, cfg.Validate(), tc.name)
	}
}

func TestPipelineEqIdentical(t *testing.T) {
	a := NewPipelineConfig()
	b := NewPipelineConfig()
	assert.True(t, a.PipelineEq(b))
	assert.Equal(t, StageCount, a.EarliestChangedStage(b))
}

func TestEarliestChangedStagePerField(t *testing.T) {
	base := NewPipelineConfig()

	downsampled := base
	downsampled.WorkingResolution = 500
	assert.Equal(t, 2, base.EarliestChangedStage(downsampled))

	blurred := base
	blurred.BlurSigma = 2.0
	assert.Equal(t, 3, base.EarliestChangedStage(blurred))

	edges := base
	edges.CannyLow = 10
	assert.Equal(t, 4, base.EarliestChangedStage(edges))

	simplified := base
	simplified.SimplifyTolerance = 2.0
	assert.Equal(t, 6, base.EarliestChangedStage(simplified))

	masked := base
	masked.MaskScale = 0.5
	assert.Equal(t, 7, base.EarliestChangedStage(masked))

	joined := base
	joined.PathJoiner = JoinStraightLine
	assert.Equal(t, 8, base.EarliestChangedStage(joined))
}

func TestEarliestChangedStageIgnoresCannyMax(t *testing.T) {
	base := NewPipelineConfig()
	other := base
	other.CannyMax = 999
	assert.Equal(t, StageCount, base.EarliestChangedStage(other))
	assert.True(t, base.PipelineEq(other))
}

func TestUnmarshalConfigSeedsDefaults(t *testing.T) {
	partial, err := json.Marshal(map[string]interface{}{
		"blur_sigma": 3.5,
	})
	assert.NoError(t, err)

	cfg, err := UnmarshalConfig(partial)
	assert.NoError(t, err)
	assert.Equal(t, float32(3.5), cfg.BlurSigma)
	// Everything else should fall back to NewPipelineConfig's defaults.
	assert.Equal(t, NewPipelineConfig().MaskScale, cfg.MaskScale)
	assert.Equal(t, NewPipelineConfig().PathJoiner, cfg.PathJoiner)
}

func TestUnmarshalConfigRejectsGarbage(t *testing.T) {
	_, err := UnmarshalConfig([]byte("not json"))
	assert.Error(t, err)
}
