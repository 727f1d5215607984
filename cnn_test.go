package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConv2DValidKnownCase(t *testing.T) {
	input := [][]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	kernel := [][]float64{
		{0, 0},
		{0, 1},
	}
	out := conv2DValid(input, kernel)
	require.Len(t, out, 2)
	assert.Equal(t, [][]float64{{5, 6}, {8, 9}}, out)
}

func TestConv2DValidTooSmall(t *testing.T) {
	assert.Nil(t, conv2DValid([][]float64{{1}}, [][]float64{{1, 1}, {1, 1}}))
	assert.Nil(t, conv2DValid(nil, [][]float64{{1}}))
}

func TestCNNIdentityKernelCopiesInterior(t *testing.T) {
	params := clampParams(concepts[ConceptCNN], nil)
	for i, k := range cnnKernels {
		if k.name == "identity" {
			params["kernel"] = float64(i)
		}
	}

	art := deriveCNN(params, cnnOutputSize*cnnOutputSize-1).(*CNNArtifact)
	for y := 0; y < cnnOutputSize; y++ {
		for x := 0; x < cnnOutputSize; x++ {
			assert.InDelta(t, art.Input[y+1][x+1], art.Output[y][x], 1e-12,
				"identity kernel at (%d,%d)", y, x)
		}
	}
}

func TestCNNRevealFollowsScan(t *testing.T) {
	params := clampParams(concepts[ConceptCNN], nil)
	cursor := 17
	art := deriveCNN(params, cursor).(*CNNArtifact)

	assert.Equal(t, cursor/cnnOutputSize, art.ScanRow)
	assert.Equal(t, cursor%cnnOutputSize, art.ScanCol)

	for y := 0; y < cnnOutputSize; y++ {
		for x := 0; x < cnnOutputSize; x++ {
			idx := y*cnnOutputSize + x
			assert.Equal(t, idx <= cursor, art.Revealed[y][x], "cell %d", idx)
			if idx > cursor {
				assert.Zero(t, art.Output[y][x], "unrevealed cells carry no value")
			}
		}
	}
}

func TestCNNBlurPreservesMass(t *testing.T) {
	params := clampParams(concepts[ConceptCNN], nil)
	for i, k := range cnnKernels {
		if k.name == "blur" {
			params["kernel"] = float64(i)
		}
	}
	art := deriveCNN(params, cnnOutputSize*cnnOutputSize-1).(*CNNArtifact)

	// A box blur's output is a local average, so it stays within the input
	// value range.
	for y := range art.Output {
		for x := range art.Output[y] {
			assert.GreaterOrEqual(t, art.Output[y][x], 0.0)
			assert.LessOrEqual(t, art.Output[y][x], 2.0)
		}
	}
}
