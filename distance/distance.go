package distance

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// MaxDistance is the sentinel returned for undefined comparisons, such as
// cosine distance against a zero vector. It sorts after every real distance.
const MaxDistance = float32(math.MaxFloat32)

// Metric identifies the distance function used for neighbor ranking.
type Metric int

const (
	// MetricEuclidean ranks by squared L2 distance.
	MetricEuclidean Metric = iota
	// MetricCosine ranks by 1 − cosθ.
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricCosine:
		return "Cosine"
	default:
		return "Unknown"
	}
}

// ParseMetric maps a metric name to a Metric. Unrecognized names fall back
// to Euclidean.
func ParseMetric(name string) Metric {
	if name == "Cosine" {
		return MetricCosine
	}
	return MetricEuclidean
}

// Func computes a scalar distance between two equal-length vectors.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
// Unknown metrics fall back to squared L2.
func Provider(m Metric) Func {
	if m == MetricCosine {
		return CosineDistance
	}
	return SquaredL2
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance between two
// vectors. Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// CosineDistance calculates 1 − cosθ between two vectors. If either vector
// has zero norm the angle is undefined and MaxDistance is returned, so such
// pairs rank behind every real neighbor.
func CosineDistance(a, b []float32) float32 {
	na := vek32.Dot(a, a)
	nb := vek32.Dot(b, b)
	if na == 0 || nb == 0 {
		return MaxDistance
	}
	cos := vek32.Dot(a, b) / float32(math.Sqrt(float64(na)*float64(nb)))
	return 1 - cos
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(vek32.Dot(v, v))))
}
