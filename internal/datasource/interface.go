package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OddsProvider defines the interface for fetching odds data from external
// bookmaker aggregation APIs
type OddsProvider interface {
	// FetchSports retrieves the sports the provider currently covers
	FetchSports(ctx context.Context) ([]SportInfo, error)

	// FetchOdds retrieves upcoming events with bookmaker odds for a sport
	FetchOdds(ctx context.Context, sportKey string, opts OddsRequestOptions) ([]EventOdds, error)

	// Name returns the name of the provider
	Name() string

	// IsEnabled returns whether this provider is currently enabled
	IsEnabled() bool

	// Close releases the provider's resources
	Close() error
}

// OddsRequestOptions narrows an odds request
type OddsRequestOptions struct {
	Regions    []string
	Markets    []string
	OddsFormat string
}

// SportInfo represents a sport category as reported by the provider
type SportInfo struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	GroupBy string `json:"group"`
	Active  bool   `json:"active"`
}

// EventOdds represents one upcoming event with nested bookmaker quotes
type EventOdds struct {
	ID         string      `json:"id"`
	SportKey   string      `json:"sport_key"`
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	StartTime  time.Time   `json:"commence_time"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// Bookmaker represents one bookmaker's quotes for an event
type Bookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []MarketOdds `json:"markets"`
}

// MarketOdds represents one market's outcomes at a bookmaker
type MarketOdds struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome represents one priced selection
type Outcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Point *float64        `json:"point,omitempty"`
}

// BookmakerCount returns how many bookmakers quote the given market key
func (e *EventOdds) BookmakerCount(marketKey string) int {
	count := 0
	for _, bm := range e.Bookmakers {
		for _, m := range bm.Markets {
			if m.Key == marketKey {
				count++
				break
			}
		}
	}
	return count
}

// ProviderError represents errors from provider operations
type ProviderError struct {
	Source  string // Provider name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewProviderError creates a new provider error
func NewProviderError(source, code, message string, err error) ProviderError {
	return ProviderError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
