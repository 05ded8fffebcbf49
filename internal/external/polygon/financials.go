package polygon

import (
	"context"

	"github.com/goccy/go-json"
)

// financialsPageLimit bounds next_url pagination per ticker.
const financialsPageLimit = 20

type financialsResponse struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
	Next    string          `json:"next_url"`
}

// Financials fetches every available financial-statement filing for a ticker
// as raw documents. Upstream filing schemas drift over time, so decoding into
// canonical periods is left to the normalizer.
func (c *Client) Financials(ctx context.Context, ticker string) ([]map[string]any, error) {
	params := map[string]string{
		"ticker": ticker,
		"limit":  "100",
	}

	var filings []map[string]any
	url := "/vX/reference/financials"

	for page := 0; page < financialsPageLimit; page++ {
		var resp financialsResponse
		if err := c.get(ctx, url, params, &resp); err != nil {
			return nil, err
		}

		var results []map[string]any
		if len(resp.Results) > 0 {
			if err := json.Unmarshal(resp.Results, &results); err != nil {
				return nil, err
			}
		}
		filings = append(filings, results...)

		if resp.Next == "" {
			break
		}
		// next_url carries the cursor and original filters
		url = resp.Next
		params = nil
	}

	return filings, nil
}
