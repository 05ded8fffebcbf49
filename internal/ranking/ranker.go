package ranking

import (
	"sort"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/factors"
	"github.com/wonny/equityrank/pkg/logger"
)

// Ranker turns a date's raw factor cross-section into composite-ranked score
// rows. Ratios where lower is better are inverted before z-scoring so that
// in every normalized factor, higher is better; missing ratios enter the
// cross-section as 0.
type Ranker struct {
	weights Weights
	logger  *logger.Logger
}

// NewRanker creates a ranker with a fixed weight map. Weights are an
// explicit parameter of the pipeline, never ambient state.
func NewRanker(weights Weights, log *logger.Logger) *Ranker {
	return &Ranker{
		weights: weights,
		logger:  log,
	}
}

// Rank computes the weighted composite for every ticker and returns rows
// sorted by composite descending, ties broken ticker-lexicographic
// ascending. The math is order-independent: permuting the input changes
// nothing about the ticker→composite mapping.
func (r *Ranker) Rank(date time.Time, universe []contracts.TickerFactors) []contracts.ScoreRow {
	n := len(universe)
	if n == 0 {
		return []contracts.ScoreRow{}
	}

	// Canonical base order so equal composites always resolve the same way.
	sorted := make([]contracts.TickerFactors, n)
	copy(sorted, universe)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Ticker < sorted[j].Ticker
	})

	composite := make([]float64, n)
	for _, cs := range crossSections(sorted) {
		weight := cs.weight(r.weights)
		if weight == 0 {
			continue
		}
		for i, z := range factors.ZScores(cs.values) {
			composite[i] += weight * z
		}
	}

	rows := make([]contracts.ScoreRow, n)
	for i, tf := range sorted {
		rows[i] = contracts.ScoreRow{
			Date:      date,
			Ticker:    tf.Ticker,
			Factors:   tf.Factors,
			Composite: composite[i],
		}
	}

	// Stable sort on the ticker-ordered slice makes the tie-break
	// deterministic without a secondary comparator.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Composite > rows[j].Composite
	})

	if r.logger != nil {
		r.logger.WithFields(map[string]interface{}{
			"date":       date.Format("2006-01-02"),
			"tickers":    n,
			"top_ticker": rows[0].Ticker,
			"top_score":  rows[0].Composite,
		}).Info("Composite ranking completed")
	}

	return rows
}

// crossSection is one factor's value array over the whole universe, paired
// with the weight it draws from the configuration.
type crossSection struct {
	values []float64
	weight func(Weights) float64
}

func crossSections(universe []contracts.TickerFactors) []crossSection {
	n := len(universe)
	collect := func(get func(contracts.FactorValues) float64) []float64 {
		out := make([]float64, n)
		for i, tf := range universe {
			out[i] = get(tf.Factors)
		}
		return out
	}

	return []crossSection{
		{collect(func(f contracts.FactorValues) float64 { return f.Momentum }),
			func(w Weights) float64 { return w.Momentum }},
		{collect(func(f contracts.FactorValues) float64 { return f.Volatility }),
			func(w Weights) float64 { return w.Volatility }},
		{collect(func(f contracts.FactorValues) float64 { return f.Volume }),
			func(w Weights) float64 { return w.Volume }},
		{collect(func(f contracts.FactorValues) float64 { return f.VWAPDev }),
			func(w Weights) float64 { return w.VWAP }},
		{collect(func(f contracts.FactorValues) float64 { return invert(f.PE) }),
			func(w Weights) float64 { return w.PE }},
		{collect(func(f contracts.FactorValues) float64 { return invert(f.PB) }),
			func(w Weights) float64 { return w.PB }},
		{collect(func(f contracts.FactorValues) float64 { return invert(f.DE) }),
			func(w Weights) float64 { return w.DE }},
		{collect(func(f contracts.FactorValues) float64 { return orZero(f.FCFYield) }),
			func(w Weights) float64 { return w.FCFYield }},
		{collect(func(f contracts.FactorValues) float64 { return invert(f.PEG) }),
			func(w Weights) float64 { return w.PEG }},
		{collect(func(f contracts.FactorValues) float64 { return invert(f.PS) }),
			func(w Weights) float64 { return w.PS }},
		{collect(func(f contracts.FactorValues) float64 { return orZero(f.ROE) }),
			func(w Weights) float64 { return w.ROE }},
		{collect(func(f contracts.FactorValues) float64 { return orZero(f.DividendYield) }),
			func(w Weights) float64 { return w.DividendYield }},
	}
}

// invert maps a lower-is-better ratio to higher-is-better space. Nil and
// zero both become 0: a missing ratio must not look like an extreme value.
func invert(v *float64) float64 {
	if v == nil || *v == 0 {
		return 0
	}
	return 1 / *v
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
