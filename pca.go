package main

import "math"

// PCA on digits: the only panel backed by external data. Everything heavy
// was computed offline; the derivation just slices the fixture for the
// current preset and sample.

// PCAArtifact carries its own load state so the view can render distinct
// loading, error, and ready presentations.
type PCAArtifact struct {
	State string `json:"state"` // "ready" | "error"
	Error string `json:"error,omitempty"`

	Rank        int            `json:"rank,omitempty"`
	Presets     []int          `json:"presets,omitempty"`
	ImageSize   int            `json:"image_size,omitempty"`
	Mean        []float64      `json:"mean,omitempty"`
	Sample      *FixtureSample `json:"sample,omitempty"`
	Recon       []float64      `json:"recon,omitempty"`
	Residual    float64        `json:"residual,omitempty"`
	Scatter     []ScatterPoint `json:"scatter,omitempty"`
	Components  [][]float64    `json:"components,omitempty"`
	EVR         float64        `json:"evr,omitempty"`
	Cumulative  []float64      `json:"cumulative,omitempty"`
	KNNAccuracy float64        `json:"knn_accuracy,omitempty"`
}

var pcaParams = []ParamSpec{
	{Name: "sample", Label: "Test digit", Min: 0, Max: 9, Step: 1, Default: 0},
}

func pcaBounds(map[string]float64) (int, int, int) {
	// Cursor walks the preset ranks; auto-play restarts at the smallest.
	return 0, len(pcaPresets) - 1, 0
}

func derivePCA(params map[string]float64, cursor int) any {
	f, err := fixture.Load()
	if err != nil {
		return &PCAArtifact{State: "error", Error: err.Error()}
	}

	presets := f.Presets
	if len(presets) == 0 {
		presets = pcaPresets
	}
	cursor = clampInt(cursor, 0, len(presets)-1)

	art := &PCAArtifact{
		State:      "ready",
		Rank:       presets[cursor],
		Presets:    presets,
		ImageSize:  f.Meta.ImageSize,
		Mean:       f.Mean,
		Scatter:    f.Scatter,
		Components: f.Components,
		Cumulative: f.CumulativeVariance,
	}
	if cursor < len(f.ExplainedVariance) {
		art.EVR = f.ExplainedVariance[cursor]
	}
	if cursor < len(f.KNNAccuracy) {
		art.KNNAccuracy = f.KNNAccuracy[cursor]
	}

	if len(f.Samples) > 0 {
		s := &f.Samples[clampInt(int(params["sample"]), 0, len(f.Samples)-1)]
		art.Sample = s
		if cursor < len(s.Recons) {
			art.Recon = s.Recons[cursor]
			art.Residual = reconResidual(s.Original, s.Recons[cursor])
		}
	}
	return art
}

// reconResidual is the L2 distance between a sample and its reconstruction.
func reconResidual(original, recon []float64) float64 {
	n := len(original)
	if len(recon) < n {
		n = len(recon)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := original[i] - recon[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
