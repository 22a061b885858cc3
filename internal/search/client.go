package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Client talks to an OpenLibrary-compatible search endpoint:
// GET {base}/search.json?q=...&limit=...
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]Doc]
	log        *slog.Logger
}

const (
	defaultSearchTimeout = 10 * time.Second
	breakerFailures      = 5
)

// NewClient creates a search client with rate limiting and a circuit breaker
// that opens after consecutive upstream failures.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker[[]Doc](gobreaker.Settings{
		Name:    "search",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("search breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		breaker:    cb,
		log:        log,
	}
}

// searchResponse is the provider's search document shape.
type searchResponse struct {
	Docs []struct {
		Title      string   `json:"title"`
		AuthorName []string `json:"author_name"`
		Key        string   `json:"key"`
	} `json:"docs"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]Doc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return c.breaker.Execute(func() ([]Doc, error) {
		params := url.Values{
			"q":      {query},
			"limit":  {strconv.Itoa(limit)},
			"fields": {"title,author_name,key"},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/search.json?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("search: unexpected status %d", resp.StatusCode)
		}

		var sr searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
			return nil, fmt.Errorf("search: decode response: %w", err)
		}

		docs := make([]Doc, 0, len(sr.Docs))
		for _, d := range sr.Docs {
			docs = append(docs, Doc{
				Title:       d.Title,
				AuthorNames: d.AuthorName,
				ExternalKey: d.Key,
			})
		}
		return docs, nil
	})
}
