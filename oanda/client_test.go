package oanda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Timeout: 5 * time.Second}),
	}, opts...)
	return NewClient("test-token", true, opts...)
}

func TestNewClient(t *testing.T) {
	t.Run("practice mode", func(t *testing.T) {
		client := NewClient("test-token", true)
		assert.Equal(t, PracticeURL, client.baseURL)
		assert.Equal(t, "test-token", client.token)
		assert.NotNil(t, client.httpClient)
	})

	t.Run("live mode", func(t *testing.T) {
		client := NewClient("test-token", false)
		assert.Equal(t, LiveURL, client.baseURL)
		assert.Equal(t, "test-token", client.token)
		assert.NotNil(t, client.httpClient)
	})

	t.Run("options", func(t *testing.T) {
		hc := &http.Client{}
		client := NewClient("t", true, WithAccountID("101-001"), WithHTTPClient(hc), WithBaseURL("http://localhost:1/"))
		assert.Equal(t, "101-001", client.accountID)
		assert.Same(t, hc, client.httpClient)
		assert.Equal(t, "http://localhost:1", client.baseURL)
	})
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env     string
		want    string
		wantErr bool
	}{
		{"practice", PracticeURL, false},
		{"Demo", PracticeURL, false},
		{" live ", LiveURL, false},
		{"sandbox", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := BaseURL(tt.env)
		if tt.wantErr {
			assert.Error(t, err, tt.env)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	c, err := NewClientForEnv("tok", "live")
	require.NoError(t, err)
	assert.Equal(t, LiveURL, c.baseURL)

	_, err = NewClientForEnv("tok", "nope")
	require.Error(t, err)
}

func TestDoAPIError(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errorMessage": "Invalid access token"}`))
	})

	err := client.do(context.Background(), http.MethodGet, "/v3/accounts", nil, nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Invalid access token")
	assert.Contains(t, err.Error(), "API error (status 401)")
}

func TestDoMissingToken(t *testing.T) {
	t.Parallel()

	client := NewClient("", true)
	err := client.do(context.Background(), http.MethodGet, "/v3/accounts", nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token")
}

func TestDoBadJSON(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	var out map[string]any
	err := client.do(context.Background(), http.MethodGet, "/v3/accounts", nil, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
