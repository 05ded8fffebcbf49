package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/equityrank/db"
	"github.com/wonny/equityrank/internal/contracts"
	"github.com/wonny/equityrank/internal/store"
	"github.com/wonny/equityrank/pkg/config"
	"github.com/wonny/equityrank/pkg/logger"
	"github.com/wonny/equityrank/pkg/redis"
)

func TestGetScores_InvalidDate(t *testing.T) {
	h := NewScoresHandler(nil, nil, logger.Discard())

	req := httptest.NewRequest(http.MethodGet, "/api/scores?date=not-a-date", nil)
	rec := httptest.NewRecorder()
	h.GetScores(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

// Integration test against a real database, skipped unless DATABASE_URL is
// set. The cache runs disabled, exercising the transparent no-op path.
func TestGetScores_EndToEnd(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	require.NoError(t, db.Migrate(url))
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	date := time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC)

	pe := 15.0
	rows := []contracts.ScoreRow{
		{Date: date, Ticker: "ZZAPI1", Composite: 2.0, Factors: contracts.FactorValues{Momentum: 0.2, PE: &pe}},
		{Date: date, Ticker: "ZZAPI2", Composite: 1.0, Factors: contracts.FactorValues{Momentum: 0.1}},
		{Date: date, Ticker: "ZZAPI3", Composite: -1.0, Factors: contracts.FactorValues{Momentum: -0.1}},
	}
	require.NoError(t, store.NewScoreRepository(pool).ReplaceForDate(ctx, date, rows))

	_, err = pool.Exec(ctx, `
		INSERT INTO universe (date, ticker, market_cap, avg_volume) VALUES
			($1, 'ZZAPI1', 5e9, 1e6),
			($1, 'ZZAPI2', 1e8, 2e5),
			($1, 'ZZAPI3', 8e9, 3e6)
		ON CONFLICT (date, ticker) DO UPDATE SET
			market_cap = EXCLUDED.market_cap,
			avg_volume = EXCLUDED.avg_volume
	`, date)
	require.NoError(t, err)

	cache := redis.NewCache(redis.New(&config.Config{}), "test")
	h := NewScoresHandler(pool, cache, logger.Discard())

	t.Run("ordered envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/scores?date=2030-02-01", nil)
		rec := httptest.NewRecorder()
		h.GetScores(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ScoresResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, "2030-02-01", resp.Date)
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, defaultLimit, resp.Limit)
		require.Len(t, resp.Results, 3)
		assert.Equal(t, "ZZAPI1", resp.Results[0].Ticker)
		assert.Equal(t, "ZZAPI3", resp.Results[2].Ticker)

		require.NotNil(t, resp.Results[0].PE)
		assert.Equal(t, 15.0, *resp.Results[0].PE)
		assert.Nil(t, resp.Results[1].PE)
		require.NotNil(t, resp.Results[0].MarketCap)
		assert.Equal(t, 5e9, *resp.Results[0].MarketCap)
	})

	t.Run("market cap filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/scores?date=2030-02-01&min_market_cap=1e9", nil)
		rec := httptest.NewRecorder()
		h.GetScores(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ScoresResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		require.Len(t, resp.Results, 2)
		assert.Equal(t, "ZZAPI1", resp.Results[0].Ticker)
		assert.Equal(t, "ZZAPI3", resp.Results[1].Ticker)
	})

	t.Run("limit and offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/scores?date=2030-02-01&limit=1&offset=1", nil)
		rec := httptest.NewRecorder()
		h.GetScores(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ScoresResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, 1, resp.Limit)
		assert.Equal(t, 1, resp.Offset)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "ZZAPI2", resp.Results[0].Ticker)
	})

	t.Run("ticker substring", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet,
			"/api/scores?date=2030-02-01&ticker=zzapi3", nil)
		rec := httptest.NewRecorder()
		h.GetScores(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ScoresResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		require.Len(t, resp.Results, 1)
		assert.Equal(t, "ZZAPI3", resp.Results[0].Ticker)
	})
}

func TestParseBoundedInt(t *testing.T) {
	assert.Equal(t, defaultLimit, parseBoundedInt("", defaultLimit, maxLimit))
	assert.Equal(t, 100, parseBoundedInt("100", defaultLimit, maxLimit))
	assert.Equal(t, maxLimit, parseBoundedInt("9999", defaultLimit, maxLimit))
	assert.Equal(t, defaultLimit, parseBoundedInt("-5", defaultLimit, maxLimit))
	assert.Equal(t, defaultLimit, parseBoundedInt("abc", defaultLimit, maxLimit))
}

func TestParseOptionalFloat(t *testing.T) {
	v, err := parseOptionalFloat("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseOptionalFloat("2e9")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 2e9, *v)

	_, err = parseOptionalFloat("big")
	assert.Error(t, err)
}
