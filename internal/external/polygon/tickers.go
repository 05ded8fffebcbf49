package polygon

import (
	"context"
)

// tickersPageLimit bounds next_url pagination for the reference listing.
const tickersPageLimit = 50

type tickersResponse struct {
	Status  string            `json:"status"`
	Results []referenceTicker `json:"results"`
	Next    string            `json:"next_url"`
}

type referenceTicker struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

// ActiveTickers lists every active US common stock.
func (c *Client) ActiveTickers(ctx context.Context) ([]string, error) {
	params := map[string]string{
		"market": "stocks",
		"type":   "CS",
		"active": "true",
		"limit":  "1000",
	}

	var tickers []string
	url := "/v3/reference/tickers"

	for page := 0; page < tickersPageLimit; page++ {
		var resp tickersResponse
		if err := c.get(ctx, url, params, &resp); err != nil {
			return nil, err
		}

		for _, t := range resp.Results {
			tickers = append(tickers, t.Ticker)
		}

		if resp.Next == "" {
			break
		}
		url = resp.Next
		params = nil
	}

	return tickers, nil
}
