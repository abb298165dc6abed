// Package edinet provides an EDINET API v2 client for searching and downloading
// filings submitted to the Japanese Financial Services Agency.
// API documentation: https://disclosure2dl.edinet-fsa.go.jp/guide/static/disclosure/WZEK0110.html
package edinet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.edinet-fsa.go.jp/api/v2"

	// EDINET allows roughly three requests per second.
	DefaultRequestInterval = 350 * time.Millisecond

	DefaultSearchTimeout   = 30 * time.Second
	DefaultDownloadTimeout = 60 * time.Second

	apiKeyParam = "Subscription-Key"
)

// ErrMissingAPIKey is returned by NewClient when no subscription key is configured.
var ErrMissingAPIKey = errors.New(`EDINET_API_KEY is not set

Setup:
  1. Create a .env file in the project root
  2. Add the line:
     EDINET_API_KEY=<your API key>

Get an API key at:
  https://api.edinet-fsa.go.jp/api/auth/index.aspx?mode=1`)

// APIError wraps every failure talking to EDINET.
type APIError struct {
	Msg string
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *APIError) Unwrap() error { return e.Err }

// ClientConfig configures a Client. Zero values fall back to the defaults.
type ClientConfig struct {
	APIKey          string
	BaseURL         string
	RequestInterval time.Duration
	SearchTimeout   time.Duration
	DownloadTimeout time.Duration
	HTTPClient      *http.Client
}

// Client handles EDINET API requests. It is safe for concurrent use; the
// limiter spaces requests across all goroutines.
type Client struct {
	apiKey          string
	baseURL         string
	httpClient      *http.Client
	limiter         *rate.Limiter
	searchTimeout   time.Duration
	downloadTimeout time.Duration
}

// NewClient creates a new EDINET API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = DefaultRequestInterval
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = DefaultSearchTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		apiKey:          cfg.APIKey,
		baseURL:         cfg.BaseURL,
		httpClient:      cfg.HTTPClient,
		limiter:         rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		searchTimeout:   cfg.SearchTimeout,
		downloadTimeout: cfg.DownloadTimeout,
	}, nil
}

// get performs a rate-limited GET. The caller closes the response body.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params.Set(apiKeyParam, c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, redactURL(err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("EDINET returned status %d: %s", resp.StatusCode, string(body))
	}

	return resp, nil
}

// redactURL strips the query string, which carries the subscription key,
// from the URL embedded in a transport error.
func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		uerr.URL = u.String()
	} else {
		uerr.URL = "<redacted>"
	}
	return err
}

// errorEnvelope is the JSON body EDINET sends instead of a document when a
// request is rejected. Depending on the endpoint it arrives either at the top
// level or inside "metadata".
type errorEnvelope struct {
	StatusCode json.Number `json:"StatusCode"`
	Message    string      `json:"message"`
	Metadata   struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"metadata"`
}

func (e errorEnvelope) String() string {
	switch {
	case e.Metadata.Status != "":
		return fmt.Sprintf("status %s: %s", e.Metadata.Status, e.Metadata.Message)
	case e.StatusCode != "":
		return fmt.Sprintf("status %s: %s", e.StatusCode, e.Message)
	default:
		return e.Message
	}
}
