package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/oddsedge/internal/config"
	"github.com/yourusername/oddsedge/internal/metrics"
)

const oddsAPIName = "the-odds-api"

// OddsAPIClient fetches sports and bookmaker odds from a the-odds-api
// compatible aggregation service
type OddsAPIClient struct {
	baseURL    string
	apiKey     string
	regions    []string
	markets    []string
	httpClient *RateLimitedHTTPClient
	logger     *logrus.Entry
}

// NewOddsAPIClient creates an odds provider client from configuration
func NewOddsAPIClient(cfg config.OddsProviderConfig, logger *logrus.Logger) *OddsAPIClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.RetryAttempts
	httpCfg.RateLimit = cfg.RateLimitPerSec

	return &OddsAPIClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		regions:    cfg.Regions,
		markets:    cfg.Markets,
		httpClient: NewRateLimitedHTTPClient(httpCfg, logger),
		logger:     logger.WithField("component", "odds_api"),
	}
}

// Name returns the provider name
func (c *OddsAPIClient) Name() string {
	return oddsAPIName
}

// IsEnabled reports whether the client has credentials to operate
func (c *OddsAPIClient) IsEnabled() bool {
	return c.apiKey != ""
}

// FetchSports retrieves the sports the provider currently covers
func (c *OddsAPIClient) FetchSports(ctx context.Context) ([]SportInfo, error) {
	endpoint := fmt.Sprintf("%s/sports?apiKey=%s", c.baseURL, url.QueryEscape(c.apiKey))

	start := time.Now()
	body, err := c.get(ctx, endpoint)
	metrics.RecordProviderCall(oddsAPIName, "fetch_sports", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(oddsAPIName)
		return nil, err
	}

	var sports []SportInfo
	if err := json.Unmarshal(body, &sports); err != nil {
		metrics.RecordProviderError(oddsAPIName)
		return nil, NewProviderError(oddsAPIName, ErrCodeInvalidData, "failed to decode sports response", err)
	}

	c.logger.WithField("count", len(sports)).Debug("Fetched sports list")
	return sports, nil
}

// FetchOdds retrieves upcoming events with bookmaker odds for a sport.
// An empty result is not an error: quiet sports simply have no upcoming
// events with coverage.
func (c *OddsAPIClient) FetchOdds(ctx context.Context, sportKey string, opts OddsRequestOptions) ([]EventOdds, error) {
	if sportKey == "" {
		return nil, NewProviderError(oddsAPIName, ErrCodeInvalidData, "sport key is required", nil)
	}

	regions := opts.Regions
	if len(regions) == 0 {
		regions = c.regions
	}
	marketKeys := opts.Markets
	if len(marketKeys) == 0 {
		marketKeys = c.markets
	}
	oddsFormat := opts.OddsFormat
	if oddsFormat == "" {
		oddsFormat = "decimal"
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", strings.Join(regions, ","))
	params.Set("markets", strings.Join(marketKeys, ","))
	params.Set("oddsFormat", oddsFormat)

	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, url.PathEscape(sportKey), params.Encode())

	start := time.Now()
	body, err := c.get(ctx, endpoint)
	metrics.RecordProviderCall(oddsAPIName, "fetch_odds", time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(oddsAPIName)
		return nil, err
	}

	var events []EventOdds
	if err := json.Unmarshal(body, &events); err != nil {
		metrics.RecordProviderError(oddsAPIName)
		return nil, NewProviderError(oddsAPIName, ErrCodeInvalidData, "failed to decode odds response", err)
	}

	c.logger.WithFields(logrus.Fields{
		"sport_key": sportKey,
		"events":    len(events),
	}).Debug("Fetched odds")

	return events, nil
}

// get performs a GET request and maps non-2xx statuses onto provider errors
func (c *OddsAPIClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, NewProviderError(oddsAPIName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError(oddsAPIName, ErrCodeNetworkError, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewProviderError(oddsAPIName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewProviderError(oddsAPIName, ErrCodeNotFound, "resource not found", ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewProviderError(oddsAPIName, ErrCodeRateLimitExceeded, "request quota exceeded", ErrRateLimitExceeded)
	case resp.StatusCode >= 500:
		return nil, NewProviderError(oddsAPIName, ErrCodeServerError, fmt.Sprintf("server error: %d", resp.StatusCode), ErrServerError)
	default:
		return nil, NewProviderError(oddsAPIName, ErrCodeUnknown, fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}
}

// Close releases the underlying HTTP client resources
func (c *OddsAPIClient) Close() error {
	return c.httpClient.Close()
}
