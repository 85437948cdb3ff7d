// Package coingecko is a thin client for the CoinGecko coin listing and simple price endpoints.
package coingecko

import (
	"context" // Request scoped cancellation
	"strings" // Id normalisation
	"time"    // Request timeout

	"networth/internal/metrics" // Provider metrics

	"github.com/go-resty/resty/v2" // HTTP client
	"github.com/pkg/errors"        // Error wrapping
	"github.com/sirupsen/logrus"   // Logging
)

const (
	coinsListPath   = "/coins/list"       // Every coin id the provider knows
	simplePricePath = "/simple/price"     // Prices of several ids in one currency
	apiKeyHeader    = "x-cg-demo-api-key" // Demo plan API key
)

// ErrUpstream is returned when the provider cannot be reached or answers with a non-success status
var ErrUpstream = errors.New("price provider request failed")

// SymbolStatus is the outcome of a symbol check
type SymbolStatus int

const (
	// SymbolUnknown means the provider could not be queried
	SymbolUnknown SymbolStatus = iota
	// SymbolSupported means the provider lists the symbol
	SymbolSupported
	// SymbolUnsupported means the provider answered and does not list the symbol
	SymbolUnsupported
)

func (s SymbolStatus) String() string {
	switch s {
	case SymbolSupported:
		return "supported"
	case SymbolUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Prices maps a coin id to its price per target currency, e.g. prices["bitcoin"]["usd"]
type Prices map[string]map[string]float64

// Price returns the price of id in currency
func (p Prices) Price(id, currency string) (float64, bool) {
	byCurrency, ok := p[id]
	if !ok {
		return 0, false
	}
	price, ok := byCurrency[currency]
	return price, ok
}

// Coin is one entry of the provider's coin list
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Client talks to the CoinGecko REST API
type Client struct {
	http *resty.Client
}

// NewClient creates a client for baseURL. apiKey may be empty.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		rc.SetHeader(apiKeyHeader, apiKey) // Anonymous access otherwise
	}
	return &Client{http: rc}
}

// CheckSymbol asks the provider whether symbol is a known coin id (case-insensitive)
func (c *Client) CheckSymbol(ctx context.Context, symbol string) (SymbolStatus, error) {
	var coins []Coin // Decoded coin list
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&coins).
		Get(coinsListPath)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("coins_list", "error").Inc()
		return SymbolUnknown, errors.Wrap(ErrUpstream, err.Error())
	}
	if !resp.IsSuccess() {
		metrics.ProviderRequests.WithLabelValues("coins_list", "error").Inc()
		return SymbolUnknown, errors.Wrapf(ErrUpstream, "coin list returned status %d", resp.StatusCode())
	}
	metrics.ProviderRequests.WithLabelValues("coins_list", "ok").Inc()

	id := strings.ToLower(symbol) // Ids are lowercase
	for _, coin := range coins {
		if coin.ID == id {
			return SymbolSupported, nil
		}
	}
	return SymbolUnsupported, nil
}

// IsSymbolSupported reports whether the provider lists symbol. Errors are logged and reported as false.
func (c *Client) IsSymbolSupported(ctx context.Context, symbol string) bool {
	status, err := c.CheckSymbol(ctx, symbol)
	if err != nil {
		logrus.WithField("symbol", symbol).WithError(err).Error("Error checking coin existence")
		return false // Indistinguishable from an unknown symbol
	}
	return status == SymbolSupported
}

// GetPrices fetches the prices of ids in currency with a single request
func (c *Client) GetPrices(ctx context.Context, ids []string, currency string) (Prices, error) {
	prices := Prices{} // Decoded price table
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":           strings.Join(ids, ","),
			"vs_currencies": currency,
		}).
		SetResult(&prices).
		Get(simplePricePath)
	if err != nil {
		metrics.ProviderRequests.WithLabelValues("simple_price", "error").Inc()
		return nil, errors.Wrap(ErrUpstream, err.Error())
	}
	if !resp.IsSuccess() {
		metrics.ProviderRequests.WithLabelValues("simple_price", "error").Inc()
		return nil, errors.Wrapf(ErrUpstream, "simple price returned status %d", resp.StatusCode())
	}
	metrics.ProviderRequests.WithLabelValues("simple_price", "ok").Inc()
	logrus.WithFields(logrus.Fields{
		"ids":      ids,
		"currency": currency,
		"prices":   prices,
	}).Debug("Fetched prices")
	return prices, nil
}
