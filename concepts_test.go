package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTab(t *testing.T) {
	assert.Equal(t, ConceptAttention, resolveTab("attention"))
	assert.Equal(t, ConceptGradient, resolveTab("gradient"))

	// Unknown or empty values fall back silently.
	assert.Equal(t, defaultConcept, resolveTab("bogus"))
	assert.Equal(t, defaultConcept, resolveTab(""))
	assert.Equal(t, defaultConcept, resolveTab("SVD2D"), "resolution is case-sensitive")
}

func TestConceptRegistryComplete(t *testing.T) {
	assert.Len(t, conceptOrder, len(concepts))
	for _, id := range conceptOrder {
		info, ok := concepts[id]
		require.True(t, ok, "ordered concept %s must be registered", id)
		assert.Equal(t, id, info.ID)
		assert.NotEmpty(t, info.Title)
		assert.NotNil(t, info.derive)
		assert.NotNil(t, info.bounds)
	}
}

func TestClampParams(t *testing.T) {
	info := concepts[ConceptGradient]

	defaults := clampParams(info, nil)
	assert.Equal(t, 0.08, defaults["lr"])
	assert.Equal(t, 28.0, defaults["steps"])

	clamped := clampParams(info, map[string]float64{
		"lr":      99,
		"startx":  -1000,
		"unknown": 7,
	})
	assert.Equal(t, 0.6, clamped["lr"], "values clamp to the declared max")
	assert.Equal(t, -4.0, clamped["startx"], "values clamp to the declared min")
	assert.NotContains(t, clamped, "unknown", "unknown parameter names are dropped")
}

// Every derivation must tolerate any in-range parameter set and any cursor,
// including wildly out-of-range cursors, without panicking.
func TestDerivationsDegradeGracefully(t *testing.T) {
	for _, id := range conceptOrder {
		info := concepts[id]
		t.Run(string(id), func(t *testing.T) {
			params := clampParams(info, nil)
			min, max, _ := info.bounds(params)
			for _, cursor := range []int{min - 100, min, (min + max) / 2, max, max + 100} {
				assert.NotPanics(t, func() { info.derive(params, cursor) })
			}

			// Extreme but in-range parameter values.
			lo := map[string]float64{}
			hi := map[string]float64{}
			for _, spec := range info.Params {
				lo[spec.Name] = spec.Min
				hi[spec.Name] = spec.Max
			}
			assert.NotPanics(t, func() { info.derive(clampParams(info, lo), min) })
			assert.NotPanics(t, func() { info.derive(clampParams(info, hi), max) })
		})
	}
}
