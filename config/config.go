// Package config loads pipeline parameters from a control file via the
// teacher's own mmio.Instruct reader (see builder.go's ins.Param), except
// parse errors are returned rather than panicked: this is a library entry
// point, not a CLI main.
package config

import (
	"fmt"
	"strconv"

	"github.com/maseology/mmio"
)

// Pipeline holds the configuration parameters enumerated in spec.md §6,
// plus the external-collaborator source paths and the SPEC_FULL.md §5.1
// supplement.
type Pipeline struct {
	MaxSnapDist             float64 // meters, default 100
	EndpointEpsilon         float64 // meters, default 1
	NameSimilarityThreshold float64 // 0-1, default 0.8
	IDCounterBase           int64

	MinNetworkLengthKM float64 // SPEC_FULL.md §5.1; 0 disables

	FlowlineSource   string
	JoinsSource      string
	BarriersSource   string
	FloodplainSource string
}

// Default returns the documented defaults (spec.md §6); source paths are
// left empty for the caller to fill in.
func Default() Pipeline {
	return Pipeline{
		MaxSnapDist:             100,
		EndpointEpsilon:         1,
		NameSimilarityThreshold: 0.8,
		IDCounterBase:           1_000_000_000,
	}
}

// Load parses a control file into a Pipeline via mmio.NewInstruct,
// starting from Default() so an omitted key keeps its default value.
// Instruct.Param panics on a malformed control file (the teacher never
// guards against this, since builder.go is a CLI entry point); Load
// recovers that panic into a returned error instead, since this is a
// library call.
func Load(fp string) (p *Pipeline, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("config.Load: %v", r)
		}
	}()

	ins := mmio.NewInstruct(fp)
	params := ins.Param

	pp := Default()
	if err := applyFloat(params, "maxsnapdist", &pp.MaxSnapDist); err != nil {
		return nil, err
	}
	if err := applyFloat(params, "endpointepsilon", &pp.EndpointEpsilon); err != nil {
		return nil, err
	}
	if err := applyFloat(params, "namesimilaritythreshold", &pp.NameSimilarityThreshold); err != nil {
		return nil, err
	}
	if err := applyInt(params, "idcounterbase", &pp.IDCounterBase); err != nil {
		return nil, err
	}
	if err := applyFloat(params, "minnetworklengthkm", &pp.MinNetworkLengthKM); err != nil {
		return nil, err
	}
	applyString(params, "flowlinesource", &pp.FlowlineSource)
	applyString(params, "joinssource", &pp.JoinsSource)
	applyString(params, "barrierssource", &pp.BarriersSource)
	applyString(params, "floodplainsource", &pp.FloodplainSource)

	return &pp, nil
}

// Validate checks the invariants spec.md §6 implies: thresholds in range,
// positive distances.
func (p *Pipeline) Validate() error {
	if p.MaxSnapDist <= 0 {
		return fmt.Errorf("config: max_snap_dist must be positive, got %v", p.MaxSnapDist)
	}
	if p.EndpointEpsilon <= 0 {
		return fmt.Errorf("config: endpoint_epsilon must be positive, got %v", p.EndpointEpsilon)
	}
	if p.NameSimilarityThreshold < 0 || p.NameSimilarityThreshold > 1 {
		return fmt.Errorf("config: name_similarity_threshold must be in [0,1], got %v", p.NameSimilarityThreshold)
	}
	return nil
}

func applyFloat(params map[string][]string, key string, dst *float64) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v[0], 64)
	if err != nil {
		return fmt.Errorf("config.Load: %s: %w", key, err)
	}
	*dst = f
	return nil
}

func applyInt(params map[string][]string, key string, dst *int64) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	i, err := strconv.ParseInt(v[0], 10, 64)
	if err != nil {
		return fmt.Errorf("config.Load: %s: %w", key, err)
	}
	*dst = i
	return nil
}

func applyString(params map[string][]string, key string, dst *string) {
	if v, ok := params[key]; ok {
		*dst = v[0]
	}
}
