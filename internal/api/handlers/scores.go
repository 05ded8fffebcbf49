package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/equityrank/pkg/logger"
	"github.com/wonny/equityrank/pkg/redis"
)

const (
	defaultLimit = 50
	maxLimit     = 500
	cacheTTL     = 5 * time.Minute
)

// ScoresHandler serves persisted scoring results.
type ScoresHandler struct {
	pool   *pgxpool.Pool
	cache  *redis.Cache
	logger *logger.Logger
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(pool *pgxpool.Pool, cache *redis.Cache, log *logger.Logger) *ScoresHandler {
	return &ScoresHandler{
		pool:   pool,
		cache:  cache,
		logger: log,
	}
}

// ScoreItem is one row of the scores response. Valuation ratios are nullable:
// a null means the figure was not derivable from filings, not zero.
type ScoreItem struct {
	Date      string  `json:"date"`
	Ticker    string  `json:"ticker"`
	Composite float64 `json:"composite"`

	Momentum   float64 `json:"momentum"`
	Volatility float64 `json:"volatility"`
	Volume     float64 `json:"volume"`
	VWAPDev    float64 `json:"vwap_dev"`

	PE            *float64 `json:"pe"`
	PB            *float64 `json:"pb"`
	DE            *float64 `json:"de"`
	FCFYield      *float64 `json:"fcf_yield"`
	PEG           *float64 `json:"peg"`
	PEG3          *float64 `json:"peg3"`
	PS            *float64 `json:"ps"`
	ROE           *float64 `json:"roe"`
	DividendYield *float64 `json:"dividend_yield"`

	MarketCap *float64 `json:"market_cap"`
	AvgVolume *float64 `json:"avg_volume"`
}

// ScoresResponse is the envelope for GET /api/scores.
type ScoresResponse struct {
	Date    string      `json:"date"`
	Count   int         `json:"count"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	Results []ScoreItem `json:"results"`
}

// GetScores returns ranked scores for a date.
// GET /api/scores?date=&ticker=&min_market_cap=&min_avg_volume=&limit=&offset=
func (h *ScoresHandler) GetScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	date, err := h.resolveDate(r)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "No scores available")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticker := q.Get("ticker")

	minMarketCap, err := parseOptionalFloat(q.Get("min_market_cap"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid min_market_cap")
		return
	}
	minAvgVolume, err := parseOptionalFloat(q.Get("min_avg_volume"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid min_avg_volume")
		return
	}

	limit := parseBoundedInt(q.Get("limit"), defaultLimit, maxLimit)
	offset := parseBoundedInt(q.Get("offset"), 0, 1<<30)

	cacheKey := "scores:" + date.Format("2006-01-02") + ":" + r.URL.RawQuery
	var cached ScoresResponse
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	// Filters on universe columns treat missing snapshot rows as non-members.
	query := `
		SELECT
			s.date, s.ticker, s.composite,
			s.momentum, s.volatility, s.volume, s.vwap_dev,
			s.pe, s.pb, s.de, s.fcf_yield, s.peg, s.peg3, s.ps, s.roe, s.dividend_yield,
			u.market_cap, u.avg_volume
		FROM scores s
		LEFT JOIN universe u ON u.date = s.date AND u.ticker = s.ticker
		WHERE s.date = $1
		  AND ($2 = '' OR s.ticker ILIKE '%' || $2 || '%')
		  AND ($3::float8 IS NULL OR u.market_cap >= $3)
		  AND ($4::float8 IS NULL OR u.avg_volume >= $4)
		ORDER BY s.composite DESC, s.ticker ASC
		LIMIT $5 OFFSET $6
	`

	rows, err := h.pool.Query(ctx, query, date, ticker, minMarketCap, minAvgVolume, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query scores")
		respondError(w, http.StatusInternalServerError, "Failed to query scores")
		return
	}
	defer rows.Close()

	results := make([]ScoreItem, 0, limit)
	for rows.Next() {
		var item ScoreItem
		var rowDate time.Time
		if err := rows.Scan(
			&rowDate, &item.Ticker, &item.Composite,
			&item.Momentum, &item.Volatility, &item.Volume, &item.VWAPDev,
			&item.PE, &item.PB, &item.DE, &item.FCFYield, &item.PEG, &item.PEG3,
			&item.PS, &item.ROE, &item.DividendYield,
			&item.MarketCap, &item.AvgVolume,
		); err != nil {
			h.logger.WithError(err).Error("Failed to scan score row")
			respondError(w, http.StatusInternalServerError, "Failed to read scores")
			return
		}
		item.Date = rowDate.Format("2006-01-02")
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("Failed to read score rows")
		respondError(w, http.StatusInternalServerError, "Failed to read scores")
		return
	}

	resp := ScoresResponse{
		Date:    date.Format("2006-01-02"),
		Count:   len(results),
		Limit:   limit,
		Offset:  offset,
		Results: results,
	}

	if err := h.cache.Set(ctx, cacheKey, resp, cacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache scores response")
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetDates returns the scored dates, newest first.
// GET /api/scores/dates
func (h *ScoresHandler) GetDates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.pool.Query(ctx, `SELECT DISTINCT date FROM scores ORDER BY date DESC`)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query scored dates")
		respondError(w, http.StatusInternalServerError, "Failed to query dates")
		return
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to read dates")
			return
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	if err := rows.Err(); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read dates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(dates),
		"dates": dates,
	})
}

// resolveDate returns the requested date, or the latest scored date when the
// parameter is absent.
func (h *ScoresHandler) resolveDate(r *http.Request) (time.Time, error) {
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
		}
		return date, nil
	}

	var latest *time.Time
	if err := h.pool.QueryRow(r.Context(), `SELECT MAX(date) FROM scores`).Scan(&latest); err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, pgx.ErrNoRows
	}
	return *latest, nil
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseBoundedInt(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
