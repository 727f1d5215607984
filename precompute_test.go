package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestIDX fabricates a tiny labeled image set in MNIST's IDX layout:
// 6x6 images whose pixel pattern is a deterministic function of the label.
func writeTestIDX(t *testing.T, dir string, count, side int) (imagesPath, labelsPath string) {
	t.Helper()

	var imgBuf bytes.Buffer
	binary.Write(&imgBuf, binary.BigEndian, uint32(2051))
	binary.Write(&imgBuf, binary.BigEndian, uint32(count))
	binary.Write(&imgBuf, binary.BigEndian, uint32(side))
	binary.Write(&imgBuf, binary.BigEndian, uint32(side))

	var lblBuf bytes.Buffer
	binary.Write(&lblBuf, binary.BigEndian, uint32(2049))
	binary.Write(&lblBuf, binary.BigEndian, uint32(count))

	for i := 0; i < count; i++ {
		label := i % 10
		lblBuf.WriteByte(byte(label))
		for p := 0; p < side*side; p++ {
			v := 127 + 120*math.Sin(float64(label+1)*float64(p)*0.37)
			imgBuf.WriteByte(byte(clampFloat(v, 0, 255)))
		}
	}

	imagesPath = filepath.Join(dir, "images.idx")
	labelsPath = filepath.Join(dir, "labels.idx")
	require.NoError(t, os.WriteFile(imagesPath, imgBuf.Bytes(), 0644))
	require.NoError(t, os.WriteFile(labelsPath, lblBuf.Bytes(), 0644))
	return imagesPath, labelsPath
}

func TestReadIDX(t *testing.T) {
	dir := t.TempDir()
	images, labels := writeTestIDX(t, dir, 20, 6)

	imgs, rows, cols, err := readIDXImages(images, 15)
	require.NoError(t, err)
	assert.Equal(t, 6, rows)
	assert.Equal(t, 6, cols)
	assert.Len(t, imgs, 15, "limit trims the sample count")
	for _, img := range imgs {
		require.Len(t, img, 36)
		for _, v := range img {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	lbls, err := readIDXLabels(labels, 15)
	require.NoError(t, err)
	require.Len(t, lbls, 15)
	assert.Equal(t, 0, lbls[0])
	assert.Equal(t, 9, lbls[9])
}

func TestReadIDXBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.idx")
	require.NoError(t, os.WriteFile(path, []byte{0, 0, 8, 1, 0, 0, 0, 0}, 0644))

	_, _, _, err := readIDXImages(path, 0)
	assert.ErrorContains(t, err, "bad image magic")

	_, err = readIDXLabels(path, 0)
	assert.ErrorContains(t, err, "bad label magic")
}

func TestPrecomputeFixtureContract(t *testing.T) {
	dir := t.TempDir()
	images, labels := writeTestIDX(t, dir, 60, 6)

	cfg := precomputeConfig{
		ImagesPath: images,
		LabelsPath: labels,
		TrainCount: 40,
		TestCount:  12,
		OutDir:     filepath.Join(dir, "out"),
	}
	require.NoError(t, runPrecompute(cfg))

	data, err := os.ReadFile(filepath.Join(cfg.OutDir, fixtureFileName))
	require.NoError(t, err)
	var f PCAFixture
	require.NoError(t, json.Unmarshal(data, &f))

	assert.Equal(t, fixtureSchemaVersion, f.SchemaVersion)
	assert.Equal(t, pcaPresets, f.Presets)
	assert.Equal(t, 6, f.Meta.ImageSize)
	assert.Len(t, f.Mean, 36)
	assert.Len(t, f.Scatter, 12)
	assert.Len(t, f.Samples, precomputeSampleCount)
	assert.Len(t, f.ExplainedVariance, len(pcaPresets))
	assert.Len(t, f.KNNAccuracy, len(pcaPresets))

	// Explained variance grows with rank; cumulative sequence is monotone
	// and bounded by one.
	for i := 1; i < len(f.ExplainedVariance); i++ {
		assert.GreaterOrEqual(t, f.ExplainedVariance[i], f.ExplainedVariance[i-1])
	}
	prev := 0.0
	for _, c := range f.CumulativeVariance {
		assert.GreaterOrEqual(t, c, prev)
		assert.LessOrEqual(t, c, 1.0+1e-9)
		prev = c
	}

	// Reconstruction at the maximum preset rank is at least as faithful as
	// at the minimum, for every embedded sample.
	minIdx, maxIdx := 0, len(f.Presets)-1
	for si, s := range f.Samples {
		low := reconResidual(s.Original, s.Recons[minIdx])
		high := reconResidual(s.Original, s.Recons[maxIdx])
		assert.LessOrEqual(t, high, low+1e-9, "sample %d", si)
	}
}

func TestPrecomputeRejectsShortDataset(t *testing.T) {
	dir := t.TempDir()
	images, labels := writeTestIDX(t, dir, 10, 6)

	err := runPrecompute(precomputeConfig{
		ImagesPath: images,
		LabelsPath: labels,
		TrainCount: 40,
		TestCount:  12,
		OutDir:     dir,
	})
	assert.ErrorContains(t, err, "dataset too small")
}

func TestKNNAccuracy(t *testing.T) {
	train := [][]float64{{0, 0}, {0, 1}, {1, 0}, {10, 10}, {10, 11}, {11, 10}}
	trainLabels := []int{0, 0, 0, 1, 1, 1}
	test := [][]float64{{0.2, 0.2}, {10.5, 10.5}, {9, 9}}
	testLabels := []int{0, 1, 1}

	acc := knnAccuracy(train, trainLabels, test, testLabels)
	assert.InDelta(t, 1.0, acc, 1e-12)

	wrong := knnAccuracy(train, trainLabels, test, []int{1, 0, 0})
	assert.InDelta(t, 0.0, wrong, 1e-12)
}
