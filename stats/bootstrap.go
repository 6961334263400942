package stats

import (
	"math/rand"
	"sort"

	"github.com/maseology/montecarlo/invdistr"
	mrg63k3a "github.com/maseology/pnrg/MRG63k3a"
)

// BootstrapSinuosityCI returns a percentile bootstrap confidence interval
// on the region's length-weighted sinuosity across networks
// (SPEC_FULL.md §6). It is additive to spec.md's required outputs and is
// skipped by callers that pass iterations<=0.
func BootstrapSinuosityCI(networks []NetworkStats, iterations int, seed int64) (lo, hi float64) {
	n := len(networks)
	if n == 0 || iterations <= 0 {
		return 0, 0
	}

	rng := rand.New(mrg63k3a.New())
	rng.Seed(seed)
	// same Map{Low,High,Distr}/.P(u) shape the teacher uses for its
	// parameter samplers (model/sampler.go's buildLogLinear), just flat
	// and unlogged: P maps a uniform draw in [0,1) onto a resample index.
	draw := &invdistr.Map{Low: 0, High: float64(n), Distr: &invdistr.Uniform{}}

	samples := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		var wSum, lSum float64
		for j := 0; j < n; j++ {
			idx := int(draw.P(rng.Float64()))
			if idx >= n {
				idx = n - 1
			}
			ns := networks[idx]
			wSum += ns.SinuosityLengthWeighted * ns.TotalLengthKM
			lSum += ns.TotalLengthKM
		}
		if lSum > 0 {
			samples[i] = wSum / lSum
		}
	}

	sort.Float64s(samples)
	loIdx := int(0.025 * float64(iterations))
	hiIdx := int(0.975 * float64(iterations))
	if hiIdx >= iterations {
		hiIdx = iterations - 1
	}
	return samples[loIdx], samples[hiIdx]
}
