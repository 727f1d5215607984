package main

import "math"

// Convolution scan: a fixed 8x8 input convolved with a selectable 3x3
// kernel, revealed one output cell at a time as the cursor sweeps the
// output grid in row-major order.

// CNNArtifact shows the input grid, the active kernel, the partially
// revealed output, and the receptive-field window under the scan position.
type CNNArtifact struct {
	Input      [][]float64 `json:"input"`
	Kernel     [][]float64 `json:"kernel"`
	KernelName string      `json:"kernel_name"`
	Output     [][]float64 `json:"output"`
	Revealed   [][]bool    `json:"revealed"`
	ScanRow    int         `json:"scan_row"`
	ScanCol    int         `json:"scan_col"`
}

const (
	cnnInputSize  = 8
	cnnKernelSize = 3
	cnnOutputSize = cnnInputSize - cnnKernelSize + 1
)

type kernelPreset struct {
	name   string
	kernel [][]float64
}

var cnnKernels = []kernelPreset{
	{"edge", [][]float64{{-1, -1, -1}, {-1, 8, -1}, {-1, -1, -1}}},
	{"blur", [][]float64{{1. / 9, 1. / 9, 1. / 9}, {1. / 9, 1. / 9, 1. / 9}, {1. / 9, 1. / 9, 1. / 9}}},
	{"sharpen", [][]float64{{0, -1, 0}, {-1, 5, -1}, {0, -1, 0}}},
	{"emboss", [][]float64{{-2, -1, 0}, {-1, 1, 1}, {0, 1, 2}}},
	{"identity", [][]float64{{0, 0, 0}, {0, 1, 0}, {0, 0, 0}}},
}

var cnnParams = []ParamSpec{
	{Name: "kernel", Label: "Kernel", Min: 0, Max: float64(len(cnnKernels) - 1), Step: 1, Default: 0},
	{Name: "contrast", Label: "Input contrast", Min: 0.2, Max: 2, Step: 0.1, Default: 1},
}

func cnnBounds(map[string]float64) (int, int, int) {
	return 0, cnnOutputSize*cnnOutputSize - 1, 0
}

// cnnInput is a closed-form test image: a bright diagonal bar over a soft
// radial background, scaled by contrast.
func cnnInput(contrast float64) [][]float64 {
	img := make([][]float64, cnnInputSize)
	c := float64(cnnInputSize-1) / 2
	for y := range img {
		img[y] = make([]float64, cnnInputSize)
		for x := range img[y] {
			fx, fy := float64(x), float64(y)
			v := 0.3 * math.Exp(-math.Hypot(fx-c, fy-c)/4)
			if math.Abs(fx-fy) < 1.5 {
				v += 0.7
			}
			img[y][x] = clampFloat(v*contrast, 0, 2)
		}
	}
	return img
}

func deriveCNN(params map[string]float64, cursor int) any {
	preset := cnnKernels[clampInt(int(params["kernel"]), 0, len(cnnKernels)-1)]
	input := cnnInput(params["contrast"])
	full := conv2DValid(input, preset.kernel)

	cursor = clampInt(cursor, 0, cnnOutputSize*cnnOutputSize-1)
	scanRow := cursor / cnnOutputSize
	scanCol := cursor % cnnOutputSize

	// Cells past the scan position are zeroed and marked unrevealed so the
	// view can distinguish "not computed yet" from a genuine zero.
	out := make([][]float64, cnnOutputSize)
	revealed := make([][]bool, cnnOutputSize)
	for y := 0; y < cnnOutputSize; y++ {
		out[y] = make([]float64, cnnOutputSize)
		revealed[y] = make([]bool, cnnOutputSize)
		for x := 0; x < cnnOutputSize; x++ {
			if y*cnnOutputSize+x <= cursor {
				out[y][x] = full[y][x]
				revealed[y][x] = true
			}
		}
	}

	return &CNNArtifact{
		Input:      input,
		Kernel:     preset.kernel,
		KernelName: preset.name,
		Output:     out,
		Revealed:   revealed,
		ScanRow:    scanRow,
		ScanCol:    scanCol,
	}
}
