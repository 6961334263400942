package main

import (
	"fmt"
	"os"

	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/cut"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/internal/diag"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/brendan-ward/nhdnet/network"
	"github.com/brendan-ward/nhdnet/region"
	"github.com/brendan-ward/nhdnet/snap"
	"github.com/spf13/cobra"
)

// These thin wrappers exercise one pipeline stage at a time against gob
// snapshots on disk, for callers who want to inspect an intermediate stage
// (e.g. QA a snap run before committing to a cut) rather than the single
// `run` command's end-to-end pass.

var (
	stageIn  string
	stageOut string
)

func init() {
	for _, c := range []*cobra.Command{mergeCmd, snapCmd, cutCmd, networkCmd} {
		c.Flags().StringVar(&stageIn, "in", "", "input gob snapshot directory")
		c.Flags().StringVar(&stageOut, "out", ".", "output gob snapshot directory")
		rootCmd.AddCommand(c)
	}
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge per-basin flowline/join snapshots and reconcile basin borders",
	RunE: func(cmd *cobra.Command, args []string) error {
		huc4s, err := discoverHUC4sIn(stageIn)
		if err != nil {
			return err
		}
		log := diag.New()
		var regionBasins []region.Basin
		for _, h := range huc4s {
			store, err := flowline.LoadGobStore(stageIn + "/" + h + ".flowlines.gob")
			if err != nil {
				return err
			}
			joins, err := join.LoadGobTable(stageIn + "/" + h + ".joins.gob")
			if err != nil {
				return err
			}
			regionBasins = append(regionBasins, region.Basin{Store: store, Joins: joins})
		}
		merged, err := region.Merge(regionBasins, log)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(stageOut, 0o755); err != nil {
			return err
		}
		if err := merged.Store.SaveGob(stageOut + "/merged.flowlines.gob"); err != nil {
			return err
		}
		if err := merged.Joins.SaveGob(stageOut + "/merged.joins.gob"); err != nil {
			return err
		}
		fmt.Printf("merged %d basins -> %d flowlines, %d border ambiguities\n", len(huc4s), merged.Store.Len(), len(merged.Ambiguities))
		return nil
	},
}

var snapCmd = &cobra.Command{
	Use:   "snap",
	Short: "Snap barriers onto a merged flowline network",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := flowline.LoadGobStore(stageIn + "/merged.flowlines.gob")
		if err != nil {
			return err
		}
		barriers, err := barrier.LoadGob(stageIn + "/barriers.gob")
		if err != nil {
			return err
		}
		log := diag.New()
		snapped := snap.Snap(store, barriers, snap.DefaultConfig(), log)
		if err := os.MkdirAll(stageOut, 0o755); err != nil {
			return err
		}
		if err := barrier.SaveGob(stageOut+"/snapped.barriers.gob", snapped); err != nil {
			return err
		}
		fmt.Printf("snapped %d barriers, %d diagnostics\n", len(snapped), len(log.All()))
		return nil
	},
}

var cutCmd = &cobra.Command{
	Use:   "cut",
	Short: "Cut flowlines at snapped barrier locations",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := flowline.LoadGobStore(stageIn + "/merged.flowlines.gob")
		if err != nil {
			return err
		}
		joins, err := join.LoadGobTable(stageIn + "/merged.joins.gob")
		if err != nil {
			return err
		}
		barriers, err := barrier.LoadGob(stageIn + "/snapped.barriers.gob")
		if err != nil {
			return err
		}
		log := diag.New()
		counter := cut.NewIDCounter(1_000_000_000)
		wiring, err := cut.Cut(store, joins, barriers, cut.Config{ShouldCut: func(b barrier.Barrier) bool { return !b.Removed }}, counter, log)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(stageOut, 0o755); err != nil {
			return err
		}
		if err := store.SaveGob(stageOut + "/cut.flowlines.gob"); err != nil {
			return err
		}
		if err := joins.SaveGob(stageOut + "/cut.joins.gob"); err != nil {
			return err
		}
		fmt.Printf("cut %d barrier locations -> %d flowlines\n", len(wiring), store.Len())
		return nil
	},
}

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Assemble functional networks from a cut flowline graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := flowline.LoadGobStore(stageIn + "/cut.flowlines.gob")
		if err != nil {
			return err
		}
		joins, err := join.LoadGobTable(stageIn + "/cut.joins.gob")
		if err != nil {
			return err
		}
		log := diag.New()
		networks := network.Build(store, joins, nil, log)
		fmt.Printf("assembled %d networks over %d flowlines\n", len(networks), store.Len())
		return nil
	},
}

func discoverHUC4sIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		name := e.Name()
		const suffix = ".flowlines.gob"
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix && name != "merged"+suffix && name != "cut"+suffix {
			huc4 := name[:len(name)-len(suffix)]
			if !seen[huc4] {
				seen[huc4] = true
				out = append(out, huc4)
			}
		}
	}
	return out, nil
}
