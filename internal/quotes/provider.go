// Package quotes requests credit offers from the quote provider and falls back
// to a static offer list when the provider cannot be used.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

// Provider returns raw offer records for a credit request.
type Provider interface {
	Quote(ctx context.Context, category planner.Category, principal decimal.Decimal, termMonths int) ([]planner.OfferRecord, error)
}

// HTTPProvider calls a JSON quote API:
// GET {baseURL}/quotes?category=&amount=&term= returning an array of records.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// ProviderOption configures an HTTPProvider.
type ProviderOption func(*HTTPProvider)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithTimeout bounds a single provider call.
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *HTTPProvider) {
		if timeout > 0 {
			p.timeout = timeout
		}
	}
}

// WithAPIKey sends the key as a bearer token.
func WithAPIKey(key string) ProviderOption {
	return func(p *HTTPProvider) { p.apiKey = key }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ProviderOption {
	return func(p *HTTPProvider) { p.userAgent = userAgent }
}

// NewHTTPProvider creates a provider for baseURL.
func NewHTTPProvider(baseURL string, opts ...ProviderOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "payment-planner",
		timeout:    time.Duration(constants.DefaultQuoteTimeoutSeconds) * time.Second,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Quote fetches records. Transport errors and non-2xx responses wrap
// planner.ErrUpstreamUnavailable.
func (p *HTTPProvider) Quote(ctx context.Context, category planner.Category, principal decimal.Decimal, termMonths int) ([]planner.OfferRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := url.Values{}
	query.Set("category", string(category))
	query.Set("amount", principal.StringFixed(constants.DecimalPlaces))
	query.Set("term", strconv.Itoa(termMonths))
	endpoint := p.baseURL + "/quotes?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote provider request failed: %v: %w", err, planner.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("quote provider returned status %d: %w", resp.StatusCode, planner.ErrUpstreamUnavailable)
	}

	var records []planner.OfferRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding quote response: %v: %w", err, planner.ErrUpstreamUnavailable)
	}
	return records, nil
}
