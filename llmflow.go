package main

import "math"

// LLM forward pass, one pipeline stage per cursor position: tokenize,
// embed, attend, feed-forward, logits, sample. Every stage's payload is
// computed on each call; the cursor only marks which stage is highlighted,
// so scrubbing backwards is free.

// FlowStage is one pipeline stage with a small numeric payload to render.
type FlowStage struct {
	Name   string      `json:"name"`
	Active bool        `json:"active"`
	Done   bool        `json:"done"`
	Values [][]float64 `json:"values,omitempty"`
	Labels []string    `json:"labels,omitempty"`
}

// LLMFlowArtifact is the staged pipeline plus the final next-token
// distribution for the current temperature/blend settings.
type LLMFlowArtifact struct {
	Stages       []FlowStage `json:"stages"`
	Stage        int         `json:"stage"`
	Distribution []float64   `json:"distribution"`
	Candidates   []string    `json:"candidates"`
}

var llmFlowStageNames = []string{"tokenize", "embed", "attend", "feed-forward", "logits", "sample"}

const llmFlowContext = 6

var llmFlowParams = []ParamSpec{
	{Name: "temperature", Label: "Temperature", Min: 0.05, Max: 3, Step: 0.05, Default: 0.8},
	{Name: "blend", Label: "Uniform blend", Min: 0, Max: 1, Step: 0.05, Default: 0},
}

func llmFlowBounds(map[string]float64) (int, int, int) {
	return 0, len(llmFlowStageNames) - 1, 0
}

func deriveLLMFlow(params map[string]float64, cursor int) any {
	temperature := params["temperature"]
	blend := clampFloat(params["blend"], 0, 1)
	cursor = clampInt(cursor, 0, len(llmFlowStageNames)-1)

	tokens := attnTokens[:llmFlowContext]

	// Embed + attend with the same fixed projections as the attention panel.
	emb := make([][]float64, llmFlowContext)
	for i := range emb {
		emb[i] = attnEmbed(i, 0.5)
	}
	attn := deriveAttention(map[string]float64{
		"temperature": temperature,
		"posweight":   0.5,
	}, llmFlowContext).(*AttentionArtifact)

	// One tanh feed-forward layer over the attended vector.
	hidden := make([]float64, attnDim)
	for i := range hidden {
		for j, v := range attn.Focus {
			hidden[i] += 0.7 * math.Sin(float64(5*i+2*j)+0.9) * v
		}
	}
	hidden = tanhVec(hidden)

	// Logits over the vocabulary of distinct tokens in the toy sentence.
	vocab := distinctTokens(attnTokens)
	logits := make([]float64, len(vocab))
	for k := range logits {
		for j := range hidden {
			logits[k] += 0.9 * math.Cos(float64(4*k+3*j)+0.1) * hidden[j]
		}
	}

	// Temperature softmax blended with a uniform prior; the merge is
	// re-normalized so it always sums to one.
	dist := softmax(logits, temperature)
	uniform := 1.0 / float64(len(dist))
	for i := range dist {
		dist[i] = (1-blend)*dist[i] + blend*uniform
	}
	dist = normalizeSum(dist)

	attnRow := make([]float64, llmFlowContext)
	for j, c := range attn.Cells[llmFlowContext-1] {
		if !c.Masked {
			attnRow[j] = c.Weight
		}
	}

	stages := make([]FlowStage, len(llmFlowStageNames))
	payloads := [][][]float64{
		nil,
		emb,
		{attnRow},
		{hidden},
		{logits},
		{dist},
	}
	for i, name := range llmFlowStageNames {
		stages[i] = FlowStage{
			Name:   name,
			Active: i == cursor,
			Done:   i < cursor,
			Values: payloads[i],
		}
	}
	stages[0].Labels = tokens
	stages[5].Labels = vocab

	return &LLMFlowArtifact{
		Stages:       stages,
		Stage:        cursor,
		Distribution: dist,
		Candidates:   vocab,
	}
}

func distinctTokens(tokens []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
