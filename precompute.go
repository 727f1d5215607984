package main

import (
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// The precompute job fits PCA over an MNIST subset and writes the static
// fixture the live PCA panel consumes. It runs out of band; the server
// never invokes it.

const (
	precomputeSampleCount = 10 // held-out digits embedded in the fixture
	precomputeKNNK        = 5
	precomputeTopComps    = 8  // eigen-images embedded in the fixture
	precomputeCumLen      = 60 // length of the cumulative EVR sequence
)

type precomputeConfig struct {
	ImagesPath string
	LabelsPath string
	TrainCount int
	TestCount  int
	OutDir     string
}

func runPrecompute(cfg precomputeConfig) error {
	images, rows, cols, err := readIDXImages(cfg.ImagesPath, cfg.TrainCount+cfg.TestCount)
	if err != nil {
		return fmt.Errorf("read images: %w", err)
	}
	labels, err := readIDXLabels(cfg.LabelsPath, cfg.TrainCount+cfg.TestCount)
	if err != nil {
		return fmt.Errorf("read labels: %w", err)
	}
	if len(images) < cfg.TrainCount+cfg.TestCount {
		return fmt.Errorf("dataset too small: have %d samples, need %d", len(images), cfg.TrainCount+cfg.TestCount)
	}

	dim := rows * cols
	train := images[:cfg.TrainCount]
	test := images[cfg.TrainCount : cfg.TrainCount+cfg.TestCount]
	testLabels := labels[cfg.TrainCount : cfg.TrainCount+cfg.TestCount]

	mean := columnMean(train, dim)

	trainMat := mat.NewDense(len(train), dim, nil)
	for i, img := range train {
		for j := 0; j < dim; j++ {
			trainMat.Set(i, j, img[j]-mean[j])
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(trainMat, nil); !ok {
		return fmt.Errorf("pca factorization failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	totalVar := 0.0
	for _, v := range vars {
		totalVar += v
	}
	if totalVar < epsDenom {
		totalVar = epsDenom
	}

	maxRank := pcaPresets[len(pcaPresets)-1]
	_, nComp := vecs.Dims()
	if nComp < maxRank {
		return fmt.Errorf("only %d components available, need %d (increase -train)", nComp, maxRank)
	}

	// Per-preset explained variance and reconstructions.
	evr := make([]float64, len(pcaPresets))
	for pi, k := range pcaPresets {
		sum := 0.0
		for _, v := range vars[:k] {
			sum += v
		}
		evr[pi] = sum / totalVar
	}

	cumLen := precomputeCumLen
	if cumLen > len(vars) {
		cumLen = len(vars)
	}
	cumulative := make([]float64, cumLen)
	run := 0.0
	for i := 0; i < cumLen; i++ {
		run += vars[i]
		cumulative[i] = run / totalVar
	}

	samples := make([]FixtureSample, 0, precomputeSampleCount)
	for i := 0; i < precomputeSampleCount && i < len(test); i++ {
		s := FixtureSample{
			Label:    testLabels[i],
			Original: test[i],
			Recons:   make([][]float64, len(pcaPresets)),
		}
		for pi, k := range pcaPresets {
			s.Recons[pi] = reconstruct(test[i], mean, &vecs, k)
		}
		samples = append(samples, s)
	}

	// 2D scatter of the test split.
	scatter := make([]ScatterPoint, len(test))
	for i, img := range test {
		p := project(img, mean, &vecs, 2)
		scatter[i] = ScatterPoint{X: p[0], Y: p[1], Label: testLabels[i]}
	}

	components := make([][]float64, precomputeTopComps)
	componentStd := make([]float64, precomputeTopComps)
	for c := 0; c < precomputeTopComps; c++ {
		comp := make([]float64, dim)
		for j := 0; j < dim; j++ {
			comp[j] = vecs.At(j, c)
		}
		components[c] = comp
		componentStd[c] = math.Sqrt(vars[c])
	}

	// k-NN accuracy in PCA space at every preset rank.
	knnAcc := make([]float64, len(pcaPresets))
	trainLabels := labels[:cfg.TrainCount]
	for pi, k := range pcaPresets {
		trainProj := projectAll(train, mean, &vecs, k)
		testProj := projectAll(test, mean, &vecs, k)
		knnAcc[pi] = knnAccuracy(trainProj, trainLabels, testProj, testLabels)
	}

	f := &PCAFixture{
		SchemaVersion: fixtureSchemaVersion,
		Meta: FixtureMeta{
			Dataset:     "mnist",
			TrainCount:  cfg.TrainCount,
			TestCount:   cfg.TestCount,
			ImageSize:   rows,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Mean:               mean,
		Presets:            pcaPresets,
		Samples:            samples,
		Scatter:            scatter,
		Components:         components,
		ComponentStd:       componentStd,
		ExplainedVariance:  evr,
		CumulativeVariance: cumulative,
		KNNAccuracy:        knnAcc,
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	outPath := filepath.Join(cfg.OutDir, fixtureFileName)
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d samples, %d scatter points)\n", outPath, len(samples), len(scatter))

	if err := writeVarianceChart(filepath.Join(cfg.OutDir, "pca_variance.png"), cumulative); err != nil {
		// The chart is a convenience artifact; the fixture already shipped.
		fmt.Fprintf(os.Stderr, "variance chart: %v\n", err)
	}
	return nil
}

func columnMean(rows [][]float64, dim int) []float64 {
	mean := make([]float64, dim)
	for _, r := range rows {
		for j := 0; j < dim; j++ {
			mean[j] += r[j]
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}
	return mean
}

// project maps one image onto the top-k principal components.
func project(img, mean []float64, vecs *mat.Dense, k int) []float64 {
	out := make([]float64, k)
	for c := 0; c < k; c++ {
		sum := 0.0
		for j := range img {
			sum += (img[j] - mean[j]) * vecs.At(j, c)
		}
		out[c] = sum
	}
	return out
}

func projectAll(imgs [][]float64, mean []float64, vecs *mat.Dense, k int) [][]float64 {
	out := make([][]float64, len(imgs))
	for i, img := range imgs {
		out[i] = project(img, mean, vecs, k)
	}
	return out
}

// reconstruct maps an image through the rank-k subspace and back.
func reconstruct(img, mean []float64, vecs *mat.Dense, k int) []float64 {
	coeffs := project(img, mean, vecs, k)
	out := make([]float64, len(img))
	copy(out, mean)
	for c := 0; c < k; c++ {
		for j := range out {
			out[j] += coeffs[c] * vecs.At(j, c)
		}
	}
	return out
}

func knnAccuracy(train [][]float64, trainLabels []int, test [][]float64, testLabels []int) float64 {
	if len(test) == 0 {
		return 0
	}
	type neighbor struct {
		dist  float64
		label int
	}
	correct := 0
	for i, q := range test {
		neighbors := make([]neighbor, len(train))
		for j, t := range train {
			sum := 0.0
			for d := range q {
				diff := q[d] - t[d]
				sum += diff * diff
			}
			neighbors[j] = neighbor{dist: sum, label: trainLabels[j]}
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })

		votes := map[int]int{}
		for _, n := range neighbors[:precomputeKNNK] {
			votes[n.label]++
		}
		best, bestVotes := -1, -1
		for label, v := range votes {
			if v > bestVotes || (v == bestVotes && label < best) {
				best, bestVotes = label, v
			}
		}
		if best == testLabels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(test))
}

func writeVarianceChart(path string, cumulative []float64) error {
	xs := make([]float64, len(cumulative))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	graph := chart.Chart{
		Title: "Cumulative explained variance",
		XAxis: chart.XAxis{Name: "components"},
		YAxis: chart.YAxis{Name: "explained variance ratio"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "cumulative EVR", XValues: xs, YValues: cumulative},
		},
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return graph.Render(chart.PNG, out)
}

// IDX is MNIST's trivial big-endian container: magic, dims, raw bytes.
// Gzipped files are accepted by suffix.

func openMaybeGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return struct {
		io.Reader
		io.Closer
	}{gz, f}, nil
}

func readIDXImages(path string, limit int) (imgs [][]float64, rows, cols int, err error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer r.Close()

	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, 0, 0, err
		}
	}
	if header[0] != 2051 {
		return nil, 0, 0, fmt.Errorf("bad image magic %d", header[0])
	}
	count := int(header[1])
	rows, cols = int(header[2]), int(header[3])
	if limit > 0 && count > limit {
		count = limit
	}

	buf := make([]byte, rows*cols)
	imgs = make([][]float64, 0, count)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, 0, 0, err
		}
		img := make([]float64, rows*cols)
		for j, b := range buf {
			img[j] = float64(b) / 255
		}
		imgs = append(imgs, img)
	}
	return imgs, rows, cols, nil
}

func readIDXLabels(path string, limit int) ([]int, error) {
	r, err := openMaybeGzip(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var header [2]uint32
	for i := range header {
		if err := binary.Read(r, binary.BigEndian, &header[i]); err != nil {
			return nil, err
		}
	}
	if header[0] != 2049 {
		return nil, fmt.Errorf("bad label magic %d", header[0])
	}
	count := int(header[1])
	if limit > 0 && count > limit {
		count = limit
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	labels := make([]int, count)
	for i, b := range buf {
		labels[i] = int(b)
	}
	return labels, nil
}
