package ranking

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weights assigns one weight per recognized factor. A factor omitted from
// the YAML file keeps its zero value and contributes nothing to the
// composite; weights may be negative.
type Weights struct {
	Momentum      float64 `yaml:"momentum"`
	Volatility    float64 `yaml:"volatility"`
	Volume        float64 `yaml:"volume"`
	VWAP          float64 `yaml:"vwap"`
	PE            float64 `yaml:"pe"`
	PB            float64 `yaml:"pb"`
	DE            float64 `yaml:"de"`
	FCFYield      float64 `yaml:"fcf_yield"`
	PEG           float64 `yaml:"peg"`
	PS            float64 `yaml:"ps"`
	ROE           float64 `yaml:"roe"`
	DividendYield float64 `yaml:"dividend_yield"`
}

// LoadWeights reads a weight map from a YAML file. Unknown keys fail
// immediately so a typo never silently zeroes a factor.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights file: %w", err)
	}

	var w Weights
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return Weights{}, fmt.Errorf("decode weights file %s: %w", path, err)
	}

	return w, nil
}

// DefaultWeights returns the baseline factor weighting used when no weights
// file is configured: momentum-tilted with a broad valuation sleeve.
func DefaultWeights() Weights {
	return Weights{
		Momentum:      0.20,
		Volatility:    0.05,
		Volume:        0.05,
		VWAP:          0.05,
		PE:            0.10,
		PB:            0.10,
		DE:            0.05,
		FCFYield:      0.10,
		PEG:           0.05,
		PS:            0.05,
		ROE:           0.10,
		DividendYield: 0.10,
	}
}
