package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTweets(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "shortener links stripped",
			input: []string{"Check this out https://t.co/abc123 amazing"},
			want:  []string{"Check this out  amazing"},
		},
		{
			name:  "leading mentions stripped",
			input: []string{"@alice @bob here is the real content"},
			want:  []string{"here is the real content"},
		},
		{
			name:  "thread numbering stripped",
			input: []string{"1/ First point", "2/12 Second point", "3) Third point"},
			want:  []string{"First point", "Second point", "Third point"},
		},
		{
			name:  "blank tweets dropped",
			input: []string{"   ", "real one", "https://t.co/only"},
			want:  []string{"real one"},
		},
		{
			name:  "mid-text mentions kept",
			input: []string{"Thanks to @carol for the idea"},
			want:  []string{"Thanks to @carol for the idea"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTweets(tt.input))
		})
	}
}

func TestFetchThread_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/thread", r.URL.Path)

		var req struct {
			URL string `json:"url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://x.com/someone/status/1", req.URL)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"author":  "someone",
			"tweets":  []string{"1/ intro", "2/ body", ""},
			"success": true,
		})
	}))
	defer server.Close()

	client := NewThreadFetcherClient(server.URL)
	thread, err := client.FetchThread(context.Background(), "https://x.com/someone/status/1")
	require.NoError(t, err)

	assert.Equal(t, "someone", thread.Author)
	assert.Equal(t, []string{"intro", "body"}, thread.Tweets)
	assert.Equal(t, "https://x.com/someone/status/1", thread.URL)
}

func TestFetchThread_AllNoise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"author":  "someone",
			"tweets":  []string{"https://t.co/a", "  "},
			"success": true,
		})
	}))
	defer server.Close()

	client := NewThreadFetcherClient(server.URL)
	_, err := client.FetchThread(context.Background(), "https://x.com/someone/status/2")
	assert.ErrorIs(t, err, ErrEmptyThread)
}

func TestFetchThread_SidecarRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "thread not found",
		})
	}))
	defer server.Close()

	client := NewThreadFetcherClient(server.URL)
	_, err := client.FetchThread(context.Background(), "https://x.com/gone/status/3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thread not found")
}

func TestFetchThread_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewThreadFetcherClient(server.URL)
	_, err := client.FetchThread(context.Background(), "https://x.com/someone/status/4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
