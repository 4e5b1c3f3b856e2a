// File: internal/simulant/simulant_test.go
package simulant

import (
	"math/rand"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource drives rand.Float64 to an exact value, for pinning down where a
// specific draw lands in the weight walk.
type fixedSource struct{ f float64 }

func (s fixedSource) Int63() int64 { return int64(s.f * (1 << 63)) }
func (s fixedSource) Seed(int64)   {}

func TestPickWeightedEmptyListFailsLoudly(t *testing.T) {
	_, err := PickWeighted(rand.New(rand.NewSource(1)), []WeightedOption[string]{})
	assert.Error(t, err)
}

func TestPickWeightedNegativeWeightFails(t *testing.T) {
	opts := []WeightedOption[string]{{Weight: -1, Value: "a"}}
	_, err := PickWeighted(rand.New(rand.NewSource(1)), opts)
	assert.Error(t, err)
}

func TestPickWeightedSingleOptionAlwaysWins(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	opts := []WeightedOption[string]{{Weight: 3, Value: "only"}}

	for i := 0; i < 100; i++ {
		v, err := PickWeighted(rng, opts)
		require.NoError(t, err)
		require.Equal(t, "only", v)
	}
}

func TestPickWeightedAllZeroWeightsFallsBackToFirst(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	opts := []WeightedOption[string]{
		{Weight: 0, Value: "first"},
		{Weight: 0, Value: "second"},
	}

	v, err := PickWeighted(rng, opts)
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestPickWeightedExactDrawPositions(t *testing.T) {
	// 60/30/10 plan weights: a draw at the very bottom of the range lands
	// on the first option, a draw at 0.95 of the total lands on the last.
	opts := []WeightedOption[string]{
		{Weight: 60, Value: "basic"},
		{Weight: 30, Value: "standard"},
		{Weight: 10, Value: "premium"},
	}

	v, err := PickWeighted(rand.New(fixedSource{f: 0}), opts)
	require.NoError(t, err)
	assert.Equal(t, "basic", v)

	v, err = PickWeighted(rand.New(fixedSource{f: 0.95}), opts)
	require.NoError(t, err)
	assert.Equal(t, "premium", v)
}

func TestPickWeightedConvergesToWeightRatios(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	opts := []WeightedOption[string]{
		{Weight: 60, Value: "basic"},
		{Weight: 30, Value: "standard"},
		{Weight: 10, Value: "premium"},
	}

	counts := make(map[string]int)
	const draws = 10000
	for i := 0; i < draws; i++ {
		v, err := PickWeighted(rng, opts)
		require.NoError(t, err)
		counts[v]++
	}

	assert.InDelta(t, 0.60, float64(counts["basic"])/draws, 0.02)
	assert.InDelta(t, 0.30, float64(counts["standard"])/draws, 0.02)
	assert.InDelta(t, 0.10, float64(counts["premium"])/draws, 0.02)
}

func TestNewProfileIsComplete(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := NewProfile(rng)

	assert.NotEmpty(t, p.Device.UserAgent)
	assert.Positive(t, p.Device.ViewportWidth)
	assert.Positive(t, p.Device.ViewportHeight)
	assert.NotEmpty(t, p.Acquisition.Source)
	assert.NotEmpty(t, p.Plan.PlanID)
	assert.NotEmpty(t, p.DisplayName)
	assert.True(t, strings.HasSuffix(p.Credentials.Email, "@hogmail.example"))
	assert.NotEmpty(t, p.Credentials.Password)
}

func TestNewProfileEmailsDoNotCollide(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		email := NewProfile(rng).Credentials.Email
		require.False(t, seen[email], "duplicate email %s", email)
		seen[email] = true
	}
}

func TestLandingURLCarriesAttribution(t *testing.T) {
	p := Profile{Acquisition: Acquisition{Source: "newsletter", Medium: "email"}}

	u, err := url.Parse(p.LandingURL("https://hogflix-demo.netlify.app"))
	require.NoError(t, err)
	assert.Equal(t, "newsletter", u.Query().Get("utm_source"))
	assert.Equal(t, "email", u.Query().Get("utm_medium"))
}

func TestLandingURLOmitsMediumForDirectTraffic(t *testing.T) {
	p := Profile{Acquisition: Acquisition{Source: "direct", Medium: "none"}}

	u, err := url.Parse(p.LandingURL("https://hogflix-demo.netlify.app"))
	require.NoError(t, err)
	assert.Equal(t, "direct", u.Query().Get("utm_source"))
	assert.Empty(t, u.Query().Get("utm_medium"))
}

func TestDistinctIDIsStable(t *testing.T) {
	p := NewProfile(rand.New(rand.NewSource(7)))
	assert.Equal(t, p.Credentials.Email, p.DistinctID())
}
