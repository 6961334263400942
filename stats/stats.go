// Package stats aggregates per-network length, sinuosity, and size-class
// composition, and joins in externally supplied floodplain metrics
// (spec.md §4.G). Per-network computation runs over a worker pool the way
// the teacher fans work out per computational round in evaluate.concur.go
// — the one place spec.md §5 explicitly allows parallelism inside a
// region, since each network's members are disjoint from every other's.
package stats

import (
	"runtime"
	"sort"
	"sync"

	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/network"
	"github.com/maseology/mmaths"
)

// FloodplainRow is one catchment's pre-computed floodplain/landcover
// zonal statistic, keyed by NHDPlusID (spec.md §6).
type FloodplainRow struct {
	NaturalM2 float64
	TotalM2   float64
}

// NetworkStats is the per-network output row of spec.md §4.G, extended
// with the SPEC_FULL.md §5 supplemental fields.
type NetworkStats struct {
	RootID                  int64
	TotalLengthKM           float64
	PerennialLengthKM       float64
	NumSegments             int
	SizeClassHistogram      map[flowline.SizeClass]int
	SinuosityLengthWeighted float64

	// FloodplainNaturalPct is -1 when no member catchment had floodplain
	// data (the left join's denominator would be zero).
	FloodplainNaturalPct        float64
	MissingFloodplainCatchments int

	// BelowMinimumLength is set, not a drop, when MinNetworkLengthKM is
	// configured (SPEC_FULL.md §5.1); the network is still fully
	// accounted for in the output table.
	BelowMinimumLength bool

	// DistToUpstreamBarrierKM/DistToDownstreamBarrierKM are -1 when there
	// is no such barrier (SPEC_FULL.md §5.3).
	DistToUpstreamBarrierKM   float64
	DistToDownstreamBarrierKM float64
}

// Config parameterizes Compute.
type Config struct {
	// MinNetworkLengthKM flags (does not drop) networks below this total
	// length. 0 disables the flag (SPEC_FULL.md §5.1).
	MinNetworkLengthKM float64
	// Workers bounds the worker pool; 0 uses runtime.GOMAXPROCS(0).
	Workers int
}

// Compute aggregates one NetworkStats row per network, in RootID order.
func Compute(store *flowline.Store, networks []network.Network, floodplain map[int64]FloodplainRow, linkage *network.Linkage, cfg Config) []NetworkStats {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]NetworkStats, len(networks))
	jobs := make(chan int, len(networks))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			out[i] = computeOne(store, networks[i], floodplain, linkage, cfg)
		}
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}
	for i := range networks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].RootID < out[j].RootID })
	return out
}

func computeOne(store *flowline.Store, n network.Network, floodplain map[int64]FloodplainRow, linkage *network.Linkage, cfg Config) NetworkStats {
	hist := make(map[int]int)
	var totalLen, weightedSinuosity, natural, total float64
	var missing int

	for _, id := range n.Members {
		f, err := store.Get(id)
		if err != nil {
			continue
		}
		lenKM := f.Length / 1000
		totalLen += lenKM
		weightedSinuosity += f.Sinuosity * f.Length
		hist[int(f.SizeClass)]++

		if row, ok := floodplain[f.CatchmentID]; ok && row.TotalM2 > 0 {
			natural += row.NaturalM2
			total += row.TotalM2
		} else {
			missing++
		}
	}

	s := NetworkStats{
		RootID:                      n.RootID,
		TotalLengthKM:               totalLen,
		PerennialLengthKM:           totalLen, // see DESIGN.md: no perennial/intermittent attribute in the data model
		NumSegments:                 len(n.Members),
		SizeClassHistogram:          sizeClassHistogram(hist),
		FloodplainNaturalPct:        -1,
		MissingFloodplainCatchments: missing,
		DistToUpstreamBarrierKM:     -1,
		DistToDownstreamBarrierKM:   -1,
	}
	if totalLen > 0 {
		s.SinuosityLengthWeighted = weightedSinuosity / (totalLen * 1000)
	}
	if total > 0 {
		s.FloodplainNaturalPct = natural / total * 100
	}
	if cfg.MinNetworkLengthKM > 0 && totalLen < cfg.MinNetworkLengthKM {
		s.BelowMinimumLength = true
	}

	if linkage != nil {
		if _, ok := linkage.DownstreamBarrier(n.RootID); ok {
			s.DistToDownstreamBarrierKM = distToBarrier(store, n)
		}
		if ups := linkage.UpstreamBarriers(n.RootID); len(ups) > 0 {
			s.DistToUpstreamBarrierKM = distToBarrier(store, n)
		}
	}

	return s
}

// distToBarrier approximates spacing by the network's own total length,
// since a barrier sits at exactly one end of its adjoining network: the
// network's length IS the distance from its root to the barrier at its
// far end. This degenerates correctly for single-segment networks.
func distToBarrier(store *flowline.Store, n network.Network) float64 {
	var l float64
	for _, id := range n.Members {
		if f, err := store.Get(id); err == nil {
			l += f.Length
		}
	}
	return l / 1000
}

// sizeClassHistogram converts the raw per-class counts via
// mmaths.SortMapInt, the helper the teacher uses for its land-use/
// surficial-geology histograms. The result is a map, so it carries the
// counts per class but no iteration order.
func sizeClassHistogram(raw map[int]int) map[flowline.SizeClass]int {
	keys, vals := mmaths.SortMapInt(raw)
	out := make(map[flowline.SizeClass]int, len(keys))
	for i, k := range keys {
		out[flowline.SizeClass(k)] = vals[i]
	}
	return out
}
