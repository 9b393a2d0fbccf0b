// Package feed downloads and decompresses the remote program guide.
package feed

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avkb/epg-api/config"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnexpectedStatus is returned when the feed source responds with a
	// non-200 status code.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrInvalidPayload is returned when the downloaded payload is not
	// valid gzip data.
	ErrInvalidPayload = errors.New("invalid gzip payload")
)

// retryDelay is the pause between download attempts.
const retryDelay = 500 * time.Millisecond

// Loader fetches the gzip-compressed XMLTV feed from its remote source.
type Loader struct {
	url     string
	client  *http.Client
	retries int
	delay   time.Duration
	logger  *logrus.Logger
}

// NewLoader creates a new loader instance.
func NewLoader(cfg *config.Config, logger *logrus.Logger) *Loader {
	return &Loader{
		url: cfg.FeedURL,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		retries: cfg.FetchRetries,
		delay:   retryDelay,
		logger:  logger,
	}
}

// Load downloads the feed and returns its decompressed bytes. Transient
// failures (connection errors, 5xx responses) are retried a bounded number of
// times; decode failures and 4xx responses are not.
func (l *Loader) Load(ctx context.Context) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= l.retries; attempt++ {
		if attempt > 0 {
			l.logger.WithFields(logrus.Fields{
				"url":     l.url,
				"attempt": attempt + 1,
			}).Warn("Retrying feed download")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(l.delay):
			}
		}

		data, retryable, err := l.fetch(ctx)
		if err == nil {
			l.logger.WithFields(logrus.Fields{
				"url":   l.url,
				"bytes": len(data),
			}).Debug("Downloaded program guide")
			return data, nil
		}

		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, lastErr
}

// fetch performs a single download attempt. The second return value reports
// whether the failure is worth retrying.
func (l *Loader) fetch(ctx context.Context) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	// Decompress straight off the response body; the payload never touches
	// the filesystem.
	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	defer func() {
		_ = gz.Close()
	}()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return data, false, nil
}
