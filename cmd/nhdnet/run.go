package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brendan-ward/nhdnet/barrier"
	"github.com/brendan-ward/nhdnet/config"
	"github.com/brendan-ward/nhdnet/flowline"
	"github.com/brendan-ward/nhdnet/iotable"
	"github.com/brendan-ward/nhdnet/join"
	"github.com/brendan-ward/nhdnet/pipeline"
	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

var (
	configFP  string
	basinsDir string
	outDir    string
)

func init() {
	runCmd.Flags().StringVar(&configFP, "config", "", "pipeline control file (see config.Load)")
	runCmd.Flags().StringVar(&basinsDir, "basins", "", "directory of per-HUC4 <huc4>.{flowlines,joins,barriers}.gob triples")
	runCmd.Flags().StringVar(&outDir, "out", ".", "output directory for the result tables")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full merge-snap-cut-network-stats pipeline over a set of basins",
	RunE:  runRun,
}

// loadBasin reads one basin from basinsDir, following the on-disk naming
// convention <huc4>.flowlines.gob, <huc4>.joins.gob, <huc4>.barriers.gob.
func loadBasin(huc4 string) (pipeline.Basin, error) {
	store, err := flowline.LoadGobStore(filepath.Join(basinsDir, huc4+".flowlines.gob"))
	if err != nil {
		return pipeline.Basin{}, err
	}
	joins, err := join.LoadGobTable(filepath.Join(basinsDir, huc4+".joins.gob"))
	if err != nil {
		return pipeline.Basin{}, err
	}
	barriers, err := barrier.LoadGob(filepath.Join(basinsDir, huc4+".barriers.gob"))
	if err != nil {
		return pipeline.Basin{}, err
	}
	return pipeline.Basin{HUC4: huc4, Store: store, Joins: joins, Barriers: barriers}, nil
}

func discoverHUC4s() ([]string, error) {
	entries, err := os.ReadDir(basinsDir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, e := range entries {
		name := e.Name()
		const suffix = ".flowlines.gob"
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			huc4 := name[:len(name)-len(suffix)]
			if !seen[huc4] {
				seen[huc4] = true
				out = append(out, huc4)
			}
		}
	}
	return out, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if configFP != "" {
		loaded, err := config.Load(configFP)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	huc4s, err := discoverHUC4s()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if len(huc4s) == 0 {
		return fmt.Errorf("run: no *.flowlines.gob files found under %s", basinsDir)
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(huc4s)).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("ingesting basins (%d/%d)", b.Current(), len(huc4s))
	})

	basins := make([]pipeline.Basin, 0, len(huc4s))
	for _, huc4 := range huc4s {
		b, err := loadBasin(huc4)
		if err != nil {
			return fmt.Errorf("run: loading basin %s: %w", huc4, err)
		}
		basins = append(basins, b)
		bar.Incr()
	}
	uiprogress.Stop()

	result, err := pipeline.Run(basins, nil, cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	rootOf := iotable.RootOf(result.Networks)
	flowlineTable, err := iotable.FlowlineTable(result.Store, rootOf, result.Log.RunID)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if err := writeTable(filepath.Join(outDir, "flowlines.bin"), flowlineTable); err != nil {
		return err
	}

	linkTable := iotable.BarrierLinkTable(result.Links, result.Barriers, result.Log.RunID)
	if err := writeTable(filepath.Join(outDir, "barrier_networks.bin"), linkTable); err != nil {
		return err
	}

	statsTable := iotable.NetworkStatsTable(result.Stats, result.Log.RunID)
	if err := writeTable(filepath.Join(outDir, "network_stats.bin"), statsTable); err != nil {
		return err
	}

	fmt.Printf("run %s: %d networks, %d diagnostics, %d border ambiguities\n",
		result.Log.RunID, len(result.Networks), len(result.Log.All()), len(result.Ambiguities))
	return nil
}

func writeTable(fp string, t *iotable.Table) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer f.Close()
	if err := iotable.WriteTable(f, t); err != nil {
		return fmt.Errorf("run: writing %s: %w", fp, err)
	}
	return nil
}
