// Package pipeline wires components A through G into the single callable
// sequence spec.md §5 describes, in the same top-to-bottom style as the
// teacher's BuildRDRR (builder.go): load inputs, run each stage in turn,
// report progress as it goes. Unlike BuildRDRR this is library code called
// from cmd/nhdnet, so every stage error is returned rather than panicked;
// only genuinely-impossible invariant violations inside a stage panic.
package pipeline

import (
	"fmt"

	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/config"
	"github.com/brendan-ward/nhdnet/cut"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/internal/progress"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/brendan-ward/nhdnet/network"
	"github.com/brendan-ward/nhdnet/region"
	"github.com/brendan-ward/nhdnet/snap"
	"github.com/brendan-ward/nhdnet/stats"
)

// Basin is one HUC4's worth of inputs, the unit region.Merge assembles from
// (spec.md §4.C).
type Basin struct {
	HUC4      string
	Store     *flowline.Store
	Joins     *join.Table
	Barriers  []barrier.Barrier
}

// Result collects everything an end-to-end run produces, ready for the
// iotable writers or for inspection in tests.
type Result struct {
	Store      *flowline.Store
	Joins      *join.Table
	Networks   []network.Network
	Wiring     map[int64]cut.Wiring
	Links      []network.BarrierLink
	Linkage    *network.Linkage
	Barriers   map[int64]barrier.Barrier
	Stats      []stats.NetworkStats
	Ambiguities []region.BorderAmbiguity
	Log        *diag.Log
}

// FloodplainLookup supplies the externally computed zonal statistics of
// spec.md §6, keyed by catchment id (flowline.Flowline.CatchmentID, the
// original NHDPlusID), not by the possibly freshly minted flowline id.
type FloodplainLookup map[int64]stats.FloodplainRow

// Run executes ingest-adjacent merge through statistics for one collection
// of basins, per spec.md §5's region pipeline.
func Run(basins []Basin, floodplain FloodplainLookup, cfg config.Pipeline) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	t := progress.New()
	log := diag.New()

	t.Print("merging basins and reconciling borders")
	regionBasins := make([]region.Basin, len(basins))
	allBarriers := make([]barrier.Barrier, 0)
	for i, b := range basins {
		regionBasins[i] = region.Basin{Store: b.Store, Joins: b.Joins}
		allBarriers = append(allBarriers, b.Barriers...)
	}
	merged, err := region.Merge(regionBasins, log)
	if err != nil {
		return nil, fmt.Errorf("pipeline: merge: %w", err)
	}
	t.Lap(fmt.Sprintf("merged %d basins into %d flowlines", len(basins), merged.Store.Len()))

	t.Print("snapping barriers")
	snapCfg := snap.Config{
		MaxSnapDist:             cfg.MaxSnapDist,
		EndpointEpsilon:         cfg.EndpointEpsilon,
		NameSimilarityThreshold: cfg.NameSimilarityThreshold,
	}
	snapped := snap.Snap(merged.Store, allBarriers, snapCfg, log)
	t.Lap(fmt.Sprintf("snapped %d barriers", len(snapped)))

	t.Print("cutting flowlines at barriers")
	counter := cut.NewIDCounter(cfg.IDCounterBase)
	cutCfg := cut.Config{ShouldCut: func(b barrier.Barrier) bool { return !b.Removed }}
	wiring, err := cut.Cut(merged.Store, merged.Joins, snapped, cutCfg, counter, log)
	if err != nil {
		return nil, fmt.Errorf("pipeline: cut: %w", err)
	}
	t.Lap(fmt.Sprintf("cut %d barrier locations", len(wiring)))

	t.Print("assembling functional networks")
	networks := network.Build(merged.Store, merged.Joins, wiring, log)
	t.Lap(fmt.Sprintf("assembled %d networks", len(networks)))

	links := network.LinkBarriers(networks, wiring)
	linkage := network.NewLinkage(links)

	t.Print("computing network statistics")
	statsCfg := stats.Config{MinNetworkLengthKM: cfg.MinNetworkLengthKM}
	rows := stats.Compute(merged.Store, networks, floodplain, linkage, statsCfg)
	t.Lap(fmt.Sprintf("computed statistics for %d networks", len(rows)))

	barrierByID := make(map[int64]barrier.Barrier, len(snapped))
	for _, b := range snapped {
		barrierByID[b.ID] = b
	}

	return &Result{
		Store:       merged.Store,
		Joins:       merged.Joins,
		Networks:    networks,
		Wiring:      wiring,
		Links:       links,
		Linkage:     linkage,
		Barriers:    barrierByID,
		Stats:       rows,
		Ambiguities: merged.Ambiguities,
		Log:         log,
	}, nil
}
