package snap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "elk creek", normalizeName("Elk Creek"))
	assert.Equal(t, "elk creek", normalizeName("  Elk   Creek  "))
	assert.Equal(t, "elk creek", normalizeName("Elk, Creek."))
	assert.Equal(t, "", normalizeName(""))
}

func TestTokenSetSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, tokenSetSimilarity("elk creek", "elk creek"))
	assert.InDelta(t, 1.0/3.0, tokenSetSimilarity("elk ck", "elk creek"), 1e-9)
	assert.Equal(t, 0.0, tokenSetSimilarity("bear run", "elk creek"))
	assert.Equal(t, 0.0, tokenSetSimilarity("", "elk creek"))
}
