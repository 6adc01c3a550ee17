package freedict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordbook/internal/entity"
)

const (
	DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	DefaultTimeout = 5 * time.Second

	// responses larger than this are treated as unparseable
	maxBodyBytes = 4 << 20
)

// Client fetches example sentences from the Free Dictionary API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at another server (tests, mirrors).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout bounds each request, connection and body read included.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client for DefaultBaseURL with DefaultTimeout.
func NewClient(logger logrus.FieldLogger, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger.WithField("adapter", "freedict"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LookupExample issues a single GET for word and returns the first example
// sentence found. found is false when the service answers with a non-2xx status,
// an unparseable body, or no example at all. Transport failures return
// entity.ErrLookupUnavailable.
func (c *Client) LookupExample(ctx context.Context, word string) (example string, found bool, err error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", false, entity.NewValidationError("word", "is required")
	}

	reqURL := c.baseURL + "/" + url.PathEscape(word)
	log := c.logger.WithField("word", word)
	log.Debug("freedict request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("freedict: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("freedict request failed")
		return "", false, fmt.Errorf("%w: %w", entity.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithField("status", resp.StatusCode).Debug("freedict returned no entry")
		return "", false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// a body cut off by the timeout is still a transport failure
		log.WithError(err).Warn("freedict read body failed")
		return "", false, fmt.Errorf("%w: read body: %w", entity.ErrLookupUnavailable, err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		log.WithError(err).Debug("freedict returned unparseable body")
		return "", false, nil
	}

	example, found = firstExample(entries)
	log.WithFields(logrus.Fields{"status": resp.StatusCode, "entries": len(entries), "found": found}).Debug("freedict response")
	return example, found, nil
}
