package anomaly

import (
	"math"
	"math/rand"
)

// FeatureNames is the column order every sample and scored vector must follow.
var FeatureNames = []string{"payload_len", "reqs_per_min", "ua_flag", "sql_flag", "special_chars"}

// SyntheticTraffic draws n rows approximating benign traffic to the decoy API:
// short payloads with a long right tail, a low request rate, rarely-set
// tool/SQL flags and a handful of punctuation characters.
func SyntheticTraffic(n int, rng *rand.Rand) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{
			clamp(rng.NormFloat64()*40+60, 1, 300),
			clamp(float64(poisson(rng, 1.5)), 0, 100),
			bernoulli(rng, 0.02),
			bernoulli(rng, 0.002),
			clamp(float64(poisson(rng, 2)), 0, 50),
		}
	}
	return rows
}

// poisson samples with Knuth's multiplication method, fine for small lambda.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

func bernoulli(rng *rand.Rand, p float64) float64 {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
