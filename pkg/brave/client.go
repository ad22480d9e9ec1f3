package brave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.search.brave.com"

// Client performs web searches against the Brave Search API.
type Client interface {
	WebSearch(ctx context.Context, query string, count int) (*WebSearchResponse, error)
}

// WebSearchResponse is the response from GET /res/v1/web/search.
type WebSearchResponse struct {
	Web WebResults `json:"web"`
}

// WebResults holds the web result list.
type WebResults struct {
	Results []WebResult `json:"results"`
}

// WebResult is a single web result. Brave calls the snippet field
// "description".
type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Brave Search API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) WebSearch(ctx context.Context, query string, count int) (*WebSearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if count > 0 {
		params.Set("count", strconv.Itoa(count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/res/v1/web/search?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "brave: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "brave: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "brave: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("brave: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result WebSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "brave: unmarshal response")
	}

	return &result, nil
}
