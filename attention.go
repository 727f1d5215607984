package main

import "math"

// Causal scaled dot-product attention over a fixed toy sentence. The cursor
// is the visible context length; auto-play restarts at the minimum valid
// context, not at zero, so there is always something to attend over.

// AttnCell is one entry of the attention matrix. Masked cells are excluded
// from the computation structurally; a masked cell is not a weak weight.
type AttnCell struct {
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
	Masked bool    `json:"masked"`
}

// AttentionArtifact is the causal attention matrix over the current context
// prefix plus the attention-weighted value mix for the last position.
type AttentionArtifact struct {
	Tokens  []string     `json:"tokens"`
	Context int          `json:"context"`
	Cells   [][]AttnCell `json:"cells"`
	Focus   []float64    `json:"focus"`
}

var attnTokens = []string{"the", "robot", "picked", "up", "the", "red", "ball", "and", "threw", "it"}

const (
	attnDim        = 8
	attnMinContext = 2
)

var attentionParams = []ParamSpec{
	{Name: "temperature", Label: "Temperature", Min: 0.05, Max: 3, Step: 0.05, Default: 1},
	{Name: "posweight", Label: "Positional weight", Min: 0, Max: 2, Step: 0.1, Default: 0.5},
}

func attentionBounds(map[string]float64) (int, int, int) {
	return attnMinContext, len(attnTokens), attnMinContext
}

// Fixed closed-form embeddings and projections, same scheme as the RNN
// panel: deterministic without a weights file.

func attnEmbed(pos int, posWeight float64) []float64 {
	emb := make([]float64, attnDim)
	for j := range emb {
		emb[j] = math.Sin(float64(pos*attnDim+j)*0.7) +
			posWeight*math.Cos(float64(pos)*0.4+float64(j))
	}
	return emb
}

func attnProject(x []float64, seed int) []float64 {
	out := make([]float64, attnDim)
	for i := range out {
		for j, v := range x {
			out[i] += 0.5 * math.Sin(float64(seed+3*i+7*j)+0.2) * v
		}
	}
	return out
}

func deriveAttention(params map[string]float64, cursor int) any {
	temperature := params["temperature"]
	posWeight := params["posweight"]
	context := clampInt(cursor, attnMinContext, len(attnTokens))

	q := make([][]float64, context)
	k := make([][]float64, context)
	v := make([][]float64, context)
	for i := 0; i < context; i++ {
		emb := attnEmbed(i, posWeight)
		q[i] = attnProject(emb, 1)
		k[i] = attnProject(emb, 2)
		v[i] = attnProject(emb, 3)
	}

	scale := math.Sqrt(attnDim)
	cells := make([][]AttnCell, context)
	for i := 0; i < context; i++ {
		cells[i] = make([]AttnCell, context)

		// Scores only over the causal prefix j <= i; the rest stays masked
		// and never enters the softmax.
		scores := make([]float64, i+1)
		for j := 0; j <= i; j++ {
			scores[j] = dot(q[i], k[j]) / scale
		}
		weights := softmax(scores, temperature)

		for j := 0; j < context; j++ {
			if j > i {
				cells[i][j] = AttnCell{Masked: true}
				continue
			}
			cells[i][j] = AttnCell{Weight: weights[j], Score: scores[j]}
		}
	}

	// Value mix for the newest position: what the last token "reads" from
	// the context.
	focus := make([]float64, attnDim)
	last := context - 1
	for j := 0; j <= last; j++ {
		w := cells[last][j].Weight
		for d := 0; d < attnDim; d++ {
			focus[d] += w * v[j][d]
		}
	}

	return &AttentionArtifact{
		Tokens:  attnTokens[:context],
		Context: context,
		Cells:   cells,
		Focus:   focus,
	}
}
