package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/kyotei-edge/internal/config"
	"github.com/yourusername/kyotei-edge/internal/models"
)

// HTTPSource fetches race cards, predictions, and odds from the upstream
// data service over HTTP. Odds tables are cached briefly because the same
// table is read by the filter and by both bet-type evaluations.
type HTTPSource struct {
	client    *RateLimitedHTTPClient
	baseURL   string
	apiKey    string
	oddsCache *cache.Cache
	logger    *logrus.Logger
}

// NewHTTPSource creates an HTTP-backed datasource from configuration
func NewHTTPSource(cfg *config.DataSourceConfig, logger *logrus.Logger) *HTTPSource {
	if logger == nil {
		logger = logrus.New()
	}

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RateLimitPerSecond

	ttl := time.Duration(cfg.OddsCacheTTLSeconds) * time.Second

	return &HTTPSource{
		client:    NewRateLimitedHTTPClient(httpCfg, logger),
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		oddsCache: cache.New(ttl, ttl*2),
		logger:    logger,
	}
}

// FetchRaceCards retrieves all race cards for a day
func (s *HTTPSource) FetchRaceCards(ctx context.Context, date string) ([]RaceCardData, error) {
	endpoint := fmt.Sprintf("%s/api/v1/racecards?date=%s", s.baseURL, url.QueryEscape(date))

	var cards []RaceCardData
	if err := s.getJSON(ctx, endpoint, &cards); err != nil {
		return nil, fmt.Errorf("failed to fetch race cards for %s: %w", date, err)
	}

	s.logger.WithFields(logrus.Fields{
		"date":  date,
		"count": len(cards),
	}).Info("Race cards fetched")

	return cards, nil
}

// FetchOdds retrieves the current odds table for a race, serving cached
// tables while they are fresh
func (s *HTTPSource) FetchOdds(ctx context.Context, raceID string) (models.OddsTable, error) {
	if cached, found := s.oddsCache.Get(raceID); found {
		if table, ok := cached.(models.OddsTable); ok {
			return table, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v1/odds/%s", s.baseURL, url.PathEscape(raceID))

	var table models.OddsTable
	if err := s.getJSON(ctx, endpoint, &table); err != nil {
		return nil, fmt.Errorf("failed to fetch odds for race %s: %w", raceID, err)
	}

	s.oddsCache.Set(raceID, table, cache.DefaultExpiration)
	return table, nil
}

// FetchPrediction retrieves the ranked predictions for a race
func (s *HTTPSource) FetchPrediction(ctx context.Context, raceID string) (*models.Prediction, error) {
	endpoint := fmt.Sprintf("%s/api/v1/predictions/%s", s.baseURL, url.PathEscape(raceID))

	pred := &models.Prediction{}
	if err := s.getJSON(ctx, endpoint, pred); err != nil {
		return nil, fmt.Errorf("failed to fetch prediction for race %s: %w", raceID, err)
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}

	return pred, nil
}

// UpdateOdds replaces the cached odds table for a race, called by the
// stream client when a push update arrives
func (s *HTTPSource) UpdateOdds(raceID string, table models.OddsTable) {
	s.oddsCache.Set(raceID, table, cache.DefaultExpiration)
}

// Close releases the underlying HTTP client
func (s *HTTPSource) Close() error {
	return s.client.Close()
}

func (s *HTTPSource) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRaceNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
