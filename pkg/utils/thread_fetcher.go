package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ThreadFetcherInterface resolves a tweet URL into the ordered, cleaned
// texts of the whole thread. Scraping itself happens in a sidecar service;
// this is only the client.
type ThreadFetcherInterface interface {
	FetchThread(ctx context.Context, tweetURL string) (*Thread, error)
}

type Thread struct {
	Author string
	URL    string
	Tweets []string
}

type ThreadFetcherClient struct {
	httpClient *http.Client
	baseURL    string
}

type fetchThreadRequest struct {
	URL string `json:"url"`
}

type fetchThreadResponse struct {
	Author  string   `json:"author"`
	Tweets  []string `json:"tweets"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
}

func NewThreadFetcherClient(baseURL string) *ThreadFetcherClient {
	return &ThreadFetcherClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (c *ThreadFetcherClient) FetchThread(ctx context.Context, tweetURL string) (*Thread, error) {
	jsonData, err := json.Marshal(fetchThreadRequest{URL: tweetURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/thread", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thread fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thread fetch returned status %d", resp.StatusCode)
	}

	var parsed fetchThreadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid fetcher response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("thread fetch rejected: %s", parsed.Error)
	}

	cleaned := CleanTweets(parsed.Tweets)
	if len(cleaned) == 0 {
		return nil, ErrEmptyThread
	}

	return &Thread{
		Author: parsed.Author,
		URL:    tweetURL,
		Tweets: cleaned,
	}, nil
}

var (
	tcoLinkRe   = regexp.MustCompile(`https?://t\.co/\S+`)
	numberingRe = regexp.MustCompile(`^\s*\d+\s*[/.)]\s*(\d+\s*)?`)
	mentionRe   = regexp.MustCompile(`^(\s*@\w+)+\s*`)
)

// CleanTweets strips scraping noise from tweet texts: shortener links,
// leading reply mentions, "1/" style thread numbering, and blanks.
func CleanTweets(tweets []string) []string {
	out := make([]string, 0, len(tweets))
	for _, t := range tweets {
		t = tcoLinkRe.ReplaceAllString(t, "")
		t = mentionRe.ReplaceAllString(t, "")
		t = numberingRe.ReplaceAllString(t, "")
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
