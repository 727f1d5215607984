package main

import "math"

// Recurrent sequence processing: a tiny tanh RNN with fixed weights walks a
// fixed token sequence. The hidden state is inherently sequential, so it is
// recomputed from t=0 up to the cursor on every call instead of being
// carried between frames.

// RNNArtifact holds the hidden trajectory up to the cursor and the output
// distribution at each processed step.
type RNNArtifact struct {
	Tokens  []string    `json:"tokens"`
	Step    int         `json:"step"`
	Hidden  [][]float64 `json:"hidden"`
	Outputs [][]float64 `json:"outputs"`
}

var rnnTokens = []string{"the", "cat", "sat", "on", "the", "mat", "and", "slept"}

const rnnHiddenSize = 6

var rnnParams = []ParamSpec{
	{Name: "feedback", Label: "Recurrent gain", Min: 0, Max: 1.5, Step: 0.05, Default: 0.9},
	{Name: "inputgain", Label: "Input gain", Min: 0, Max: 2, Step: 0.05, Default: 1},
}

func rnnBounds(map[string]float64) (int, int, int) {
	return 0, len(rnnTokens) - 1, 0
}

// Fixed weights, generated closed-form so the panel is deterministic
// without carrying a weights file.

func rnnInputWeight(i, j int) float64 {
	return 0.6 * math.Sin(float64(3*i+5*j)+0.7)
}

func rnnRecurrentWeight(i, j int) float64 {
	return 0.5 * math.Cos(float64(7*i+2*j)+0.3)
}

func rnnOutputWeight(i, j int) float64 {
	return 0.8 * math.Sin(float64(11*i+3*j)+1.9)
}

// rnnEmbed maps a token to a fixed embedding derived from its position in
// the vocabulary order of first appearance.
func rnnEmbed(token string) []float64 {
	seen := map[string]int{}
	for _, t := range rnnTokens {
		if _, ok := seen[t]; !ok {
			seen[t] = len(seen)
		}
	}
	idx := seen[token]
	emb := make([]float64, rnnHiddenSize)
	for j := range emb {
		emb[j] = math.Sin(float64(idx*rnnHiddenSize+j) * 0.9)
	}
	return emb
}

func deriveRNN(params map[string]float64, cursor int) any {
	feedback := params["feedback"]
	inputGain := params["inputgain"]
	cursor = clampInt(cursor, 0, len(rnnTokens)-1)

	hidden := make([][]float64, 0, cursor+1)
	outputs := make([][]float64, 0, cursor+1)
	h := make([]float64, rnnHiddenSize)

	for t := 0; t <= cursor; t++ {
		x := rnnEmbed(rnnTokens[t])
		next := make([]float64, rnnHiddenSize)
		for i := 0; i < rnnHiddenSize; i++ {
			acc := 0.0
			for j := 0; j < rnnHiddenSize; j++ {
				acc += inputGain * rnnInputWeight(i, j) * x[j]
				acc += feedback * rnnRecurrentWeight(i, j) * h[j]
			}
			next[i] = acc
		}
		h = tanhVec(next)

		logits := make([]float64, len(rnnTokens))
		for k := range logits {
			for j := 0; j < rnnHiddenSize; j++ {
				logits[k] += rnnOutputWeight(k, j) * h[j]
			}
		}
		hc := make([]float64, rnnHiddenSize)
		copy(hc, h)
		hidden = append(hidden, hc)
		outputs = append(outputs, softmax(logits, 1))
	}

	return &RNNArtifact{
		Tokens:  rnnTokens,
		Step:    cursor,
		Hidden:  hidden,
		Outputs: outputs,
	}
}
