package ranking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/internal/contracts"
)

var testDate = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

func momentumOnly(ticker string, momentum float64) contracts.TickerFactors {
	return contracts.TickerFactors{
		Ticker:  ticker,
		Factors: contracts.FactorValues{Momentum: momentum},
	}
}

func TestRank_OrdersByCompositeDescending(t *testing.T) {
	ranker := NewRanker(Weights{Momentum: 1.0}, nil)

	rows := ranker.Rank(testDate, []contracts.TickerFactors{
		momentumOnly("AAA", 0.01),
		momentumOnly("BBB", 0.10),
		momentumOnly("CCC", -0.05),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "BBB", rows[0].Ticker)
	assert.Equal(t, "AAA", rows[1].Ticker)
	assert.Equal(t, "CCC", rows[2].Ticker)
	assert.Greater(t, rows[0].Composite, rows[1].Composite)
	assert.Greater(t, rows[1].Composite, rows[2].Composite)
}

func TestRank_TieBreakIsTickerLexicographic(t *testing.T) {
	ranker := NewRanker(Weights{Momentum: 1.0}, nil)

	// ZZZ and AAA share a momentum value, so they share a composite.
	rows := ranker.Rank(testDate, []contracts.TickerFactors{
		momentumOnly("ZZZ", 0.5),
		momentumOnly("MMM", -0.2),
		momentumOnly("AAA", 0.5),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "AAA", rows[0].Ticker)
	assert.Equal(t, "ZZZ", rows[1].Ticker)
	assert.Equal(t, "MMM", rows[2].Ticker)
	assert.Equal(t, rows[0].Composite, rows[1].Composite)
}

func TestRank_PermutationInvariant(t *testing.T) {
	universe := []contracts.TickerFactors{
		{Ticker: "AAA", Factors: contracts.FactorValues{Momentum: 0.1, PE: f64(12), ROE: f64(0.2)}},
		{Ticker: "BBB", Factors: contracts.FactorValues{Momentum: -0.02, PE: f64(30), ROE: f64(0.05)}},
		{Ticker: "CCC", Factors: contracts.FactorValues{Momentum: 0.04, ROE: f64(0.12)}},
		{Ticker: "DDD", Factors: contracts.FactorValues{Momentum: 0.0, PE: f64(8)}},
	}
	ranker := NewRanker(DefaultWeights(), nil)

	baseline := map[string]float64{}
	for _, row := range ranker.Rank(testDate, universe) {
		baseline[row.Ticker] = row.Composite
	}

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]contracts.TickerFactors, len(universe))
		copy(shuffled, universe)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		for _, row := range ranker.Rank(testDate, shuffled) {
			assert.InDelta(t, baseline[row.Ticker], row.Composite, 1e-12)
		}
	}
}

func TestRank_MissingRatioContributesNothing(t *testing.T) {
	// PE is nil across the whole cross-section: every inverted entry is 0,
	// the z-scores are all 0, and PE moves no composite.
	withPE := NewRanker(Weights{Momentum: 1.0, PE: 5.0}, nil)
	withoutPE := NewRanker(Weights{Momentum: 1.0}, nil)

	universe := []contracts.TickerFactors{
		momentumOnly("AAA", 0.1),
		momentumOnly("BBB", -0.1),
		momentumOnly("CCC", 0.02),
	}

	a := withPE.Rank(testDate, universe)
	b := withoutPE.Rank(testDate, universe)
	require.Len(t, a, 3)
	for i := range a {
		assert.Equal(t, b[i].Ticker, a[i].Ticker)
		assert.InDelta(t, b[i].Composite, a[i].Composite, 1e-12)
	}
}

func TestRank_AbsentWeightMeansZero(t *testing.T) {
	// Only momentum weighted: wild values in unweighted factors are inert.
	ranker := NewRanker(Weights{Momentum: 1.0}, nil)

	universe := []contracts.TickerFactors{
		{Ticker: "AAA", Factors: contracts.FactorValues{Momentum: 0.2, Volume: 1e12, DE: f64(900)}},
		{Ticker: "BBB", Factors: contracts.FactorValues{Momentum: 0.1}},
	}

	rows := ranker.Rank(testDate, universe)
	assert.Equal(t, "AAA", rows[0].Ticker)
	// With two entries, z-scores are +1/-1; composite is exactly the weight.
	assert.InDelta(t, 1.0, rows[0].Composite, 1e-9)
	assert.InDelta(t, -1.0, rows[1].Composite, 1e-9)
}

func TestRank_NegativeWeightFlipsFactor(t *testing.T) {
	ranker := NewRanker(Weights{Volatility: -1.0}, nil)

	rows := ranker.Rank(testDate, []contracts.TickerFactors{
		{Ticker: "CALM", Factors: contracts.FactorValues{Volatility: 0.01}},
		{Ticker: "WILD", Factors: contracts.FactorValues{Volatility: 0.40}},
	})

	assert.Equal(t, "CALM", rows[0].Ticker)
}

func TestRank_EmptyUniverse(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	rows := ranker.Rank(testDate, nil)
	assert.Empty(t, rows)
}

func TestRank_RowsCarryRawFactors(t *testing.T) {
	ranker := NewRanker(DefaultWeights(), nil)
	pe := 12.5
	rows := ranker.Rank(testDate, []contracts.TickerFactors{
		{Ticker: "AAA", Factors: contracts.FactorValues{Momentum: 0.1, PE: &pe}},
		{Ticker: "BBB", Factors: contracts.FactorValues{Momentum: 0.2}},
	})

	for _, row := range rows {
		assert.Equal(t, testDate, row.Date)
		if row.Ticker == "AAA" {
			require.NotNil(t, row.Factors.PE)
			assert.Equal(t, 12.5, *row.Factors.PE)
		} else {
			// The stored ratio stays nil even though it entered the
			// composite as zero.
			assert.Nil(t, row.Factors.PE)
		}
	}
}
