package iotable

import (
	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/network"
	"github.com/brendan-ward/nhdnet/stats"
	"github.com/paulmach/orb/encoding/wkb"
)

// FlowlineTable builds the cut-flowline output table of spec.md §6: one row
// per surviving flowline, geometry carried as well-known-binary, plus the
// assigned network root id so the table stands alone without a join back
// into the network package.
func FlowlineTable(store *flowline.Store, rootOf map[int64]int64, runID string) (*Table, error) {
	ids := store.IDs()
	t := &Table{RunID: runID, NumRows: len(ids)}

	col := func(name string, typ ColumnType) *Column {
		t.Columns = append(t.Columns, Column{Name: name, Type: typ})
		return &t.Columns[len(t.Columns)-1]
	}
	idCol := col("id", Int64)
	huc4Col := col("huc4", String)
	gnisCol := col("gnis_name", String)
	sizeCol := col("size_class", Int64)
	loopCol := col("loop", Bool)
	lenCol := col("length_m", Float64)
	sinCol := col("sinuosity", Float64)
	netCol := col("network_id", Int64)
	geomCol := col("geometry", WKB)

	for _, id := range ids {
		f, err := store.Get(id)
		if err != nil {
			return nil, err
		}
		wkbBytes, err := wkb.Marshal(f.Geometry)
		if err != nil {
			return nil, err
		}
		idCol.Int64s = append(idCol.Int64s, f.ID)
		huc4Col.Strings = append(huc4Col.Strings, f.HUC4)
		gnisCol.Strings = append(gnisCol.Strings, f.GnisName)
		sizeCol.Int64s = append(sizeCol.Int64s, int64(f.SizeClass))
		loopCol.Bools = append(loopCol.Bools, f.Loop)
		lenCol.Float64s = append(lenCol.Float64s, f.Length)
		sinCol.Float64s = append(sinCol.Float64s, f.Sinuosity)
		netCol.Int64s = append(netCol.Int64s, rootOf[f.ID])
		geomCol.WKBs = append(geomCol.WKBs, wkbBytes)
	}
	return t, nil
}

// BarrierLinkTable builds the barrier-to-network table of spec.md §6 plus
// the snap QA columns the ingestion/snap stage produced for the same
// barrier (spec.md §4.D).
func BarrierLinkTable(links []network.BarrierLink, barriers map[int64]barrier.Barrier, runID string) *Table {
	t := &Table{RunID: runID, NumRows: len(links)}
	col := func(name string, typ ColumnType) *Column {
		t.Columns = append(t.Columns, Column{Name: name, Type: typ})
		return &t.Columns[len(t.Columns)-1]
	}
	idCol := col("barrier_id", Int64)
	upNetCol := col("upstream_network_id", Int64)
	downNetCol := col("downstream_network_id", Int64)
	snapDistCol := col("snap_dist_m", Float64)
	candidatesCol := col("candidates_within_100m", Int64)
	nameMatchCol := col("name_match", Int64)
	offNetCol := col("off_network", Bool)

	for _, l := range links {
		idCol.Int64s = append(idCol.Int64s, l.BarrierID)
		upNetCol.Int64s = append(upNetCol.Int64s, l.UpstreamNetworkID)
		downNetCol.Int64s = append(downNetCol.Int64s, l.DownstreamNetworkID)
		b := barriers[l.BarrierID]
		snapDistCol.Float64s = append(snapDistCol.Float64s, b.SnapDist)
		candidatesCol.Int64s = append(candidatesCol.Int64s, int64(b.CandidatesWithin100m))
		nameMatchCol.Int64s = append(nameMatchCol.Int64s, int64(b.NameMatchKind))
		offNetCol.Bools = append(offNetCol.Bools, b.OffNetwork)
	}
	return t
}

// NetworkStatsTable builds the per-network statistics table of spec.md
// §4.G, including the SPEC_FULL.md §5 supplemental columns.
func NetworkStatsTable(rows []stats.NetworkStats, runID string) *Table {
	t := &Table{RunID: runID, NumRows: len(rows)}
	col := func(name string, typ ColumnType) *Column {
		t.Columns = append(t.Columns, Column{Name: name, Type: typ})
		return &t.Columns[len(t.Columns)-1]
	}
	rootCol := col("root_id", Int64)
	totalLenCol := col("total_length_km", Float64)
	perennialLenCol := col("perennial_length_km", Float64)
	numSegCol := col("num_segments", Int64)
	sinuosityCol := col("sinuosity_length_weighted", Float64)
	floodplainPctCol := col("floodplain_natural_pct", Float64)
	missingFPCol := col("missing_floodplain_catchments", Int64)
	belowMinCol := col("below_minimum_length", Bool)
	distUpCol := col("dist_to_upstream_barrier_km", Float64)
	distDownCol := col("dist_to_downstream_barrier_km", Float64)

	for _, r := range rows {
		rootCol.Int64s = append(rootCol.Int64s, r.RootID)
		totalLenCol.Float64s = append(totalLenCol.Float64s, r.TotalLengthKM)
		perennialLenCol.Float64s = append(perennialLenCol.Float64s, r.PerennialLengthKM)
		numSegCol.Int64s = append(numSegCol.Int64s, int64(r.NumSegments))
		sinuosityCol.Float64s = append(sinuosityCol.Float64s, r.SinuosityLengthWeighted)
		floodplainPctCol.Float64s = append(floodplainPctCol.Float64s, r.FloodplainNaturalPct)
		missingFPCol.Int64s = append(missingFPCol.Int64s, int64(r.MissingFloodplainCatchments))
		belowMinCol.Bools = append(belowMinCol.Bools, r.BelowMinimumLength)
		distUpCol.Float64s = append(distUpCol.Float64s, r.DistToUpstreamBarrierKM)
		distDownCol.Float64s = append(distDownCol.Float64s, r.DistToDownstreamBarrierKM)
	}
	return t
}

// RootOf flattens a set of Networks into a flowline-id -> root-id lookup,
// the shape FlowlineTable needs.
func RootOf(networks []network.Network) map[int64]int64 {
	m := make(map[int64]int64)
	for _, n := range networks {
		for _, id := range n.Members {
			m[id] = n.RootID
		}
	}
	return m
}
