package brave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/res/v1/web/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "Jane Doe", r.URL.Query().Get("q"))
		assert.Equal(t, "4", r.URL.Query().Get("count"))

		json.NewEncoder(w).Encode(WebSearchResponse{
			Web: WebResults{Results: []WebResult{
				{Title: "Jane Doe - Acme", URL: "https://acme.com/team/jane", Description: "VP of Engineering"},
			}},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	resp, err := c.WebSearch(context.Background(), "Jane Doe", 4)
	require.NoError(t, err)
	require.Len(t, resp.Web.Results, 1)
	assert.Equal(t, "VP of Engineering", resp.Web.Results[0].Description)
}

func TestWebSearchOmitsZeroCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("count"))
		json.NewEncoder(w).Encode(WebSearchResponse{})
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := c.WebSearch(context.Background(), "Jane Doe", 0)
	require.NoError(t, err)
}

func TestWebSearchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	_, err := c.WebSearch(context.Background(), "Jane Doe", 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}
