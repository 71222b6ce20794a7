package archive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/ports"
)

// Client snapshots URLs with a Wayback-style save endpoint. Without an API
// key the client is disabled and reports every call as skipped, performing
// no network activity.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.Archiver = (*Client)(nil)

// New builds a client with its own short timeout so a slow archive backend
// never stalls a verification.
func New(endpoint, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Archive requests a snapshot of rawURL. The outcome distinguishes a
// successful snapshot, a disabled client, and a failed attempt; the error is
// informational and safe to absorb.
func (c *Client) Archive(ctx context.Context, rawURL string) (domain.ArchiveOutcome, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return domain.ArchiveOutcome{Status: domain.ArchiveSkipped}, nil
	}

	saveURL := c.endpoint + "/" + rawURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, saveURL, nil)
	if err != nil {
		return domain.ArchiveOutcome{Status: domain.ArchiveFailed}, &domain.ArchiveError{URL: rawURL, Err: err}
	}
	req.Header.Set("Authorization", "LOW "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ArchiveOutcome{Status: domain.ArchiveFailed}, &domain.ArchiveError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.ArchiveOutcome{Status: domain.ArchiveFailed},
			&domain.ArchiveError{URL: rawURL, Err: fmt.Errorf("archive backend returned %s", resp.Status)}
	}

	archiveURL := snapshotURL(resp, saveURL)
	if c.logger != nil {
		c.logger.Debug("page archived", "url", rawURL, "archive_url", archiveURL)
	}

	return domain.ArchiveOutcome{Status: domain.ArchiveDone, URL: archiveURL}, nil
}

// snapshotURL prefers the backend-reported snapshot location and falls back
// to the save URL itself.
func snapshotURL(resp *http.Response, saveURL string) string {
	loc := resp.Header.Get("Content-Location")
	if loc == "" {
		loc = resp.Header.Get("Location")
	}
	if loc == "" {
		return saveURL
	}
	if strings.HasPrefix(loc, "http") {
		return loc
	}
	if base := resp.Request.URL; base != nil {
		return (&url.URL{Scheme: base.Scheme, Host: base.Host, Path: loc}).String()
	}
	return loc
}
