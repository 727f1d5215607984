package main

import "time"

// Concept identifies one visualizer panel. The set is closed; the URL `tab`
// query parameter maps onto it with a silent fallback to the default.
type Concept string

const (
	ConceptSVD2D     Concept = "svd2d"
	ConceptSVDImage  Concept = "svdimage"
	ConceptPCA       Concept = "pca"
	ConceptGradient  Concept = "gradient"
	ConceptCNN       Concept = "cnn"
	ConceptRNN       Concept = "rnn"
	ConceptAttention Concept = "attention"
	ConceptLLMFlow   Concept = "llmflow"
)

const defaultConcept = ConceptSVD2D

var conceptOrder = []Concept{
	ConceptSVD2D, ConceptSVDImage, ConceptPCA, ConceptGradient,
	ConceptCNN, ConceptRNN, ConceptAttention, ConceptLLMFlow,
}

// resolveTab maps a raw `tab` query value to a known concept. Unknown or
// empty values fall back to the default; no error is surfaced.
func resolveTab(raw string) Concept {
	c := Concept(raw)
	if _, ok := concepts[c]; ok {
		return c
	}
	return defaultConcept
}

// ParamSpec bounds one named numeric control. Ranges are enforced at the
// edge (clampParams); derivation code assumes in-range values.
type ParamSpec struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// conceptInfo wires one panel: its controls, its cursor bounds (possibly
// parameter-dependent), its default tick interval, and the pure derivation
// from (params, cursor) to a render-ready artifact.
type conceptInfo struct {
	ID       Concept       `json:"id"`
	Title    string        `json:"title"`
	Params   []ParamSpec   `json:"params"`
	Interval time.Duration `json:"-"`

	bounds func(params map[string]float64) (min, max, wrap int)
	derive func(params map[string]float64, cursor int) any
}

var concepts = map[Concept]*conceptInfo{
	ConceptSVD2D: {
		ID:       ConceptSVD2D,
		Title:    "SVD on 2D points",
		Interval: 120 * time.Millisecond,
		Params:   svd2DParams,
		bounds:   svd2DBounds,
		derive:   deriveSVD2D,
	},
	ConceptSVDImage: {
		ID:       ConceptSVDImage,
		Title:    "SVD image compression",
		Interval: 400 * time.Millisecond,
		Params:   svdImageParams,
		bounds:   svdImageBounds,
		derive:   deriveSVDImage,
	},
	ConceptPCA: {
		ID:       ConceptPCA,
		Title:    "PCA on digits",
		Interval: 900 * time.Millisecond,
		Params:   pcaParams,
		bounds:   pcaBounds,
		derive:   derivePCA,
	},
	ConceptGradient: {
		ID:       ConceptGradient,
		Title:    "Gradient descent",
		Interval: 150 * time.Millisecond,
		Params:   gradientParams,
		bounds:   gradientBounds,
		derive:   deriveGradient,
	},
	ConceptCNN: {
		ID:       ConceptCNN,
		Title:    "Convolution scan",
		Interval: 60 * time.Millisecond,
		Params:   cnnParams,
		bounds:   cnnBounds,
		derive:   deriveCNN,
	},
	ConceptRNN: {
		ID:       ConceptRNN,
		Title:    "Recurrent sequence",
		Interval: 500 * time.Millisecond,
		Params:   rnnParams,
		bounds:   rnnBounds,
		derive:   deriveRNN,
	},
	ConceptAttention: {
		ID:       ConceptAttention,
		Title:    "Causal attention",
		Interval: 700 * time.Millisecond,
		Params:   attentionParams,
		bounds:   attentionBounds,
		derive:   deriveAttention,
	},
	ConceptLLMFlow: {
		ID:       ConceptLLMFlow,
		Title:    "LLM forward pass",
		Interval: 1000 * time.Millisecond,
		Params:   llmFlowParams,
		bounds:   llmFlowBounds,
		derive:   deriveLLMFlow,
	},
}

// clampParams merges raw values over the concept's defaults, clamping each
// to its declared range. Unknown names are dropped.
func clampParams(info *conceptInfo, raw map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(info.Params))
	for _, spec := range info.Params {
		v, ok := raw[spec.Name]
		if !ok {
			out[spec.Name] = spec.Default
			continue
		}
		out[spec.Name] = clampFloat(v, spec.Min, spec.Max)
	}
	return out
}

// newConceptPlayer builds the playback state machine for a concept with the
// given (already clamped) parameters.
func newConceptPlayer(info *conceptInfo, params map[string]float64) *player {
	min, max, wrap := info.bounds(params)
	return newPlayer(min, max, wrap, info.Interval)
}
