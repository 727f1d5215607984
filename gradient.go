package main

// Gradient descent on an elliptical bowl L(x,y) = ax^2 + by^2. The whole
// path is recomputed from the start point on every call; the cursor only
// selects how much of it is shown.

// GradientStep is one (position, loss) triple along the descent path.
type GradientStep struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Loss float64 `json:"loss"`
}

// GradientArtifact is the full path plus the currently highlighted step and
// the loss-surface coefficients for contour rendering.
type GradientArtifact struct {
	Path    []GradientStep `json:"path"`
	Step    int            `json:"step"`
	Current GradientStep   `json:"current"`
	CoeffA  float64        `json:"coeff_a"`
	CoeffB  float64        `json:"coeff_b"`
}

const (
	gradientCoeffA = 1.0
	gradientCoeffB = 3.0
)

var gradientParams = []ParamSpec{
	{Name: "startx", Label: "Start x", Min: -4, Max: 4, Step: 0.1, Default: 3},
	{Name: "starty", Label: "Start y", Min: -4, Max: 4, Step: 0.1, Default: -2.2},
	{Name: "lr", Label: "Learning rate", Min: 0.01, Max: 0.6, Step: 0.01, Default: 0.08},
	{Name: "steps", Label: "Steps", Min: 4, Max: 60, Step: 1, Default: 28},
}

func gradientBounds(params map[string]float64) (int, int, int) {
	// Auto-play restarts from the beginning of the descent.
	return 0, int(params["steps"]), 0
}

func gradientLoss(x, y float64) float64 {
	return gradientCoeffA*x*x + gradientCoeffB*y*y
}

// gradientPath runs steps iterations of plain gradient descent. Large
// learning rates are allowed to diverge visibly; positions are clamped to a
// wide box so the artifact stays finite.
func gradientPath(startX, startY, lr float64, steps int) []GradientStep {
	const box = 1e6
	path := make([]GradientStep, steps+1)
	x, y := startX, startY
	path[0] = GradientStep{X: x, Y: y, Loss: gradientLoss(x, y)}
	for i := 1; i <= steps; i++ {
		x -= lr * 2 * gradientCoeffA * x
		y -= lr * 2 * gradientCoeffB * y
		x = clampFloat(x, -box, box)
		y = clampFloat(y, -box, box)
		path[i] = GradientStep{X: x, Y: y, Loss: gradientLoss(x, y)}
	}
	return path
}

func deriveGradient(params map[string]float64, cursor int) any {
	steps := int(params["steps"])
	path := gradientPath(params["startx"], params["starty"], params["lr"], steps)

	cursor = clampInt(cursor, 0, steps)
	return &GradientArtifact{
		Path:    path,
		Step:    cursor,
		Current: path[cursor],
		CoeffA:  gradientCoeffA,
		CoeffB:  gradientCoeffB,
	}
}
