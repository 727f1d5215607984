package main

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point2 is one 2D sample in a scatter artifact.
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Axis is a principal direction scaled by its singular value.
type Axis struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Length float64 `json:"length"`
}

// SVD2DArtifact animates a point cloud collapsing onto its first principal
// axis. Points holds the blended positions for the current cursor.
type SVD2DArtifact struct {
	Points         []Point2  `json:"points"`
	Original       []Point2  `json:"original"`
	Projected      []Point2  `json:"projected"`
	Axes           []Axis    `json:"axes"`
	SingularValues []float64 `json:"singular_values"`
	Blend          float64   `json:"blend"`
}

const (
	svd2DPointCount = 48
	svd2DBlendSteps = 30
)

var svd2DParams = []ParamSpec{
	{Name: "spread", Label: "Minor-axis spread", Min: 0.05, Max: 2.0, Step: 0.05, Default: 0.6},
	{Name: "tilt", Label: "Cloud tilt (rad)", Min: 0, Max: 3.1, Step: 0.1, Default: 0.6},
}

func svd2DBounds(map[string]float64) (int, int, int) {
	return 0, svd2DBlendSteps, 0
}

// svd2DCloud generates the fixed point cloud: an ellipse with deterministic
// jitter, tilted by the tilt parameter. No RNG, so the cloud is identical
// for identical parameters.
func svd2DCloud(spread, tilt float64) []Point2 {
	pts := make([]Point2, svd2DPointCount)
	cosT, sinT := math.Cos(tilt), math.Sin(tilt)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / svd2DPointCount
		u := 2.2*math.Cos(t) + 0.25*math.Sin(7.3*float64(i))
		v := spread*math.Sin(t) + 0.15*math.Cos(5.1*float64(i))
		pts[i] = Point2{X: u*cosT - v*sinT, Y: u*sinT + v*cosT}
	}
	return pts
}

func deriveSVD2D(params map[string]float64, cursor int) any {
	pts := svd2DCloud(params["spread"], params["tilt"])

	// Center the cloud and factor the n x 2 data matrix.
	var mx, my float64
	for _, p := range pts {
		mx += p.X
		my += p.Y
	}
	mx /= float64(len(pts))
	my /= float64(len(pts))

	data := mat.NewDense(len(pts), 2, nil)
	for i, p := range pts {
		data.Set(i, 0, p.X-mx)
		data.Set(i, 1, p.Y-my)
	}

	var svd mat.SVD
	if ok := svd.Factorize(data, mat.SVDThin); !ok {
		// Degenerate clouds (all points coincident) cannot happen with the
		// generator above, but the derivation must not fail regardless.
		return &SVD2DArtifact{Points: pts, Original: pts, Projected: pts}
	}
	s := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	// First right-singular vector = dominant direction of the cloud.
	d1 := [2]float64{v.At(0, 0), v.At(1, 0)}
	d2 := [2]float64{v.At(0, 1), v.At(1, 1)}

	scale := 1.0 / math.Sqrt(float64(len(pts)))
	axes := []Axis{
		{DX: d1[0], DY: d1[1], Length: s[0] * scale},
		{DX: d2[0], DY: d2[1], Length: s[1] * scale},
	}

	projected := make([]Point2, len(pts))
	for i, p := range pts {
		c := (p.X-mx)*d1[0] + (p.Y-my)*d1[1]
		projected[i] = Point2{X: mx + c*d1[0], Y: my + c*d1[1]}
	}

	cursor = clampInt(cursor, 0, svd2DBlendSteps)
	blend := float64(cursor) / svd2DBlendSteps
	blended := make([]Point2, len(pts))
	switch blend {
	case 0:
		copy(blended, pts)
	case 1:
		copy(blended, projected)
	default:
		for i := range pts {
			blended[i] = Point2{
				X: (1-blend)*pts[i].X + blend*projected[i].X,
				Y: (1-blend)*pts[i].Y + blend*projected[i].Y,
			}
		}
	}

	return &SVD2DArtifact{
		Points:         blended,
		Original:       pts,
		Projected:      projected,
		Axes:           axes,
		SingularValues: s,
		Blend:          blend,
	}
}

// SVDImageArtifact is a rank-k reconstruction of a fixed grayscale test
// pattern, with the singular-value spectrum and the Frobenius residual.
type SVDImageArtifact struct {
	Original       [][]float64 `json:"original"`
	Reconstruction [][]float64 `json:"reconstruction"`
	SingularValues []float64   `json:"singular_values"`
	Rank           int         `json:"rank"`
	Residual       float64     `json:"residual"`
	Compression    float64     `json:"compression"`
}

const (
	svdImageSize    = 24
	svdImageMaxRank = 16
)

var svdImageParams = []ParamSpec{
	{Name: "pattern", Label: "Test pattern", Min: 0, Max: 2, Step: 1, Default: 0},
}

func svdImageBounds(map[string]float64) (int, int, int) {
	// Cursor is the reconstruction rank; auto-play restarts at rank 1.
	return 1, svdImageMaxRank, 1
}

// svdTestPattern builds one of three closed-form grayscale images in [0,1].
func svdTestPattern(preset int) [][]float64 {
	img := make([][]float64, svdImageSize)
	c := float64(svdImageSize-1) / 2
	for y := range img {
		img[y] = make([]float64, svdImageSize)
		for x := range img[y] {
			fx, fy := float64(x), float64(y)
			var v float64
			switch preset {
			case 1: // diagonal stripes
				v = 0.5 + 0.5*math.Sin((fx+fy)*0.7)
			case 2: // checker fading into a gradient
				v = 0.5*math.Abs(math.Sin(fx*0.9)*math.Sin(fy*0.9)) + 0.5*fx/float64(svdImageSize)
			default: // concentric rings
				r := math.Hypot(fx-c, fy-c)
				v = 0.5 + 0.5*math.Cos(r*0.8)
			}
			img[y][x] = clampFloat(v, 0, 1)
		}
	}
	return img
}

// svdReconstruct returns the best rank-k approximation of img.
func svdReconstruct(img [][]float64, k int) ([][]float64, []float64, bool) {
	h := len(img)
	w := len(img[0])
	flat := make([]float64, 0, h*w)
	for _, row := range img {
		flat = append(flat, row...)
	}
	a := mat.NewDense(h, w, flat)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, false
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	k = clampInt(k, 1, len(s))
	uk := u.Slice(0, h, 0, k)
	vk := v.Slice(0, w, 0, k)
	sk := mat.NewDiagDense(k, s[:k])

	var us, recon mat.Dense
	us.Mul(uk, sk)
	recon.Mul(&us, vk.T())

	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		out[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			out[y][x] = recon.At(y, x)
		}
	}
	return out, s, true
}

func frobeniusResidual(a, b [][]float64) float64 {
	sum := 0.0
	for y := range a {
		for x := range a[y] {
			d := a[y][x] - b[y][x]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}

func deriveSVDImage(params map[string]float64, cursor int) any {
	img := svdTestPattern(int(params["pattern"]))
	rank := clampInt(cursor, 1, svdImageMaxRank)

	recon, s, ok := svdReconstruct(img, rank)
	if !ok {
		return &SVDImageArtifact{Original: img, Reconstruction: img, Rank: rank}
	}

	n := float64(svdImageSize)
	return &SVDImageArtifact{
		Original:       img,
		Reconstruction: recon,
		SingularValues: s,
		Rank:           rank,
		Residual:       frobeniusResidual(img, recon),
		Compression:    float64(rank) * (2*n + 1) / (n * n),
	}
}
