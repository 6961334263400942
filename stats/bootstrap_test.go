package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootstrapSinuosityCI_ZeroIterationsSkipped(t *testing.T) {
	networks := []NetworkStats{{SinuosityLengthWeighted: 1.2, TotalLengthKM: 5}}
	lo, hi := BootstrapSinuosityCI(networks, 0, 1)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestBootstrapSinuosityCI_EmptyInputSkipped(t *testing.T) {
	lo, hi := BootstrapSinuosityCI(nil, 1000, 1)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestBootstrapSinuosityCI_SameSeedIsDeterministic(t *testing.T) {
	networks := []NetworkStats{
		{SinuosityLengthWeighted: 1.1, TotalLengthKM: 3},
		{SinuosityLengthWeighted: 1.4, TotalLengthKM: 7},
		{SinuosityLengthWeighted: 1.25, TotalLengthKM: 1},
	}
	lo1, hi1 := BootstrapSinuosityCI(networks, 500, 42)
	lo2, hi2 := BootstrapSinuosityCI(networks, 500, 42)
	assert.Equal(t, lo1, lo2)
	assert.Equal(t, hi1, hi2)
	assert.LessOrEqual(t, lo1, hi1)
}

func TestBootstrapSinuosityCI_ConstantInputCollapsesInterval(t *testing.T) {
	networks := []NetworkStats{
		{SinuosityLengthWeighted: 1.3, TotalLengthKM: 1},
		{SinuosityLengthWeighted: 1.3, TotalLengthKM: 1},
	}
	lo, hi := BootstrapSinuosityCI(networks, 200, 7)
	assert.InDelta(t, 1.3, lo, 1e-9)
	assert.InDelta(t, 1.3, hi, 1e-9)
}
