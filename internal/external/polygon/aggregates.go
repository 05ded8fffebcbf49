package polygon

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/equityrank/internal/contracts"
)

type groupedDailyResponse struct {
	Status       string       `json:"status"`
	ResultsCount int          `json:"resultsCount"`
	Results      []groupedBar `json:"results"`
}

type groupedBar struct {
	Ticker string   `json:"T"`
	Open   float64  `json:"o"`
	High   float64  `json:"h"`
	Low    float64  `json:"l"`
	Close  float64  `json:"c"`
	Volume float64  `json:"v"`
	VWAP   *float64 `json:"vw"`
}

// GroupedDaily fetches every US stock's daily bar for one trading date.
// A market holiday returns an empty slice, not an error.
func (c *Client) GroupedDaily(ctx context.Context, date time.Time) ([]contracts.DailyBar, error) {
	url := fmt.Sprintf("/v2/aggs/grouped/locale/us/market/stocks/%s", date.Format("2006-01-02"))

	var resp groupedDailyResponse
	if err := c.get(ctx, url, map[string]string{"adjusted": "true"}, &resp); err != nil {
		return nil, err
	}

	bars := make([]contracts.DailyBar, 0, len(resp.Results))
	for _, r := range resp.Results {
		bars = append(bars, contracts.DailyBar{
			Date:   date,
			Ticker: r.Ticker,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			VWAP:   r.VWAP,
		})
	}
	return bars, nil
}
