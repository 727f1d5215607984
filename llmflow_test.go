package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMFlowDistributionSumsToOne(t *testing.T) {
	info := concepts[ConceptLLMFlow]
	for _, blend := range []float64{0, 0.25, 0.5, 1} {
		params := clampParams(info, map[string]float64{"blend": blend})
		art := deriveLLMFlow(params, 5).(*LLMFlowArtifact)

		sum := 0.0
		for _, v := range art.Distribution {
			assert.False(t, v < 0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-6, "blend=%v", blend)
	}
}

func TestLLMFlowFullBlendIsUniform(t *testing.T) {
	params := clampParams(concepts[ConceptLLMFlow], map[string]float64{"blend": 1})
	art := deriveLLMFlow(params, 5).(*LLMFlowArtifact)

	uniform := 1.0 / float64(len(art.Distribution))
	for i, v := range art.Distribution {
		assert.InDelta(t, uniform, v, 1e-9, "candidate %d", i)
	}
}

func TestLLMFlowStageFlags(t *testing.T) {
	params := clampParams(concepts[ConceptLLMFlow], nil)
	art := deriveLLMFlow(params, 3).(*LLMFlowArtifact)

	require.Len(t, art.Stages, len(llmFlowStageNames))
	for i, s := range art.Stages {
		assert.Equal(t, i == 3, s.Active, "stage %d active flag", i)
		assert.Equal(t, i < 3, s.Done, "stage %d done flag", i)
	}
	assert.Equal(t, len(art.Candidates), len(art.Distribution))
}
