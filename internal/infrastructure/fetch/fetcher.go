package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"sourceverifier/internal/domain"
	"sourceverifier/internal/ports"
)

const userAgent = "sourceverifier/1.0"

var errTooManyRedirects = errors.New("too many redirects")

var whitespaceRe = regexp.MustCompile(`\s+`)

// Elements that never carry article text.
var strippedTags = "script,noscript,style,nav,footer,header,aside,form,iframe"

// Containers preferred over the full body, most specific first.
var contentSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	"#content",
	".content",
	".article-body",
	".post",
}

// Config bounds outbound retrieval.
type Config struct {
	Timeout           time.Duration
	MaxRedirects      int
	MaxBodyBytes      int64
	RequestsPerSecond int
}

// Fetcher retrieves pages and extracts readable text with light metadata.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	maxBody int64
	logger  *slog.Logger
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// New builds a fetcher with a bounded redirect chain and a politeness
// limiter shared across all outbound requests.
func New(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 5 * 1024 * 1024
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		maxBody: cfg.MaxBodyBytes,
		logger:  logger,
	}
}

// Fetch retrieves the URL and extracts title, description and main text.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (domain.PageContent, error) {
	parsed, err := domain.ValidateURL(rawURL)
	if err != nil {
		return domain.PageContent{}, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return domain.PageContent{}, &domain.FetchError{Kind: domain.FetchTimeout, URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return domain.PageContent{}, &domain.FetchError{Kind: domain.FetchUnreachable, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.PageContent{}, classifyTransportError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.PageContent{}, &domain.FetchError{
			Kind:   domain.FetchNon2xx,
			URL:    rawURL,
			Status: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return domain.PageContent{}, classifyTransportError(rawURL, err)
	}

	content, err := extract(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return domain.PageContent{}, &domain.FetchError{Kind: domain.FetchUnreachable, URL: rawURL, Err: err}
	}
	content.FinalURL = resp.Request.URL.String()

	if f.logger != nil {
		f.logger.Debug("page fetched",
			"url", rawURL,
			"status", resp.StatusCode,
			"text_len", len(content.MainText))
	}

	return content, nil
}

func classifyTransportError(rawURL string, err error) *domain.FetchError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && errors.Is(urlErr.Err, errTooManyRedirects) {
		return &domain.FetchError{Kind: domain.FetchTooManyRedirects, URL: rawURL, Err: err}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.FetchError{Kind: domain.FetchTimeout, URL: rawURL, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.FetchError{Kind: domain.FetchTimeout, URL: rawURL, Err: err}
	}

	return &domain.FetchError{Kind: domain.FetchUnreachable, URL: rawURL, Err: err}
}

// extract parses HTML, strips non-content markup and pulls text from the
// best semantic container.
func extract(body []byte, contentType string) (domain.PageContent, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		if !utf8.Valid(body) {
			return domain.PageContent{}, fmt.Errorf("decode body: %w", err)
		}
		decoded = body
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(decoded))
	if err != nil {
		return domain.PageContent{}, fmt.Errorf("parse html: %w", err)
	}

	doc.Find(strippedTags).Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find(`meta[property="og:title"]`).AttrOr("content", ""))
	}

	description := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", ""))
	if description == "" {
		description = strings.TrimSpace(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
	}

	container := doc.Selection
	for _, sel := range contentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 && strings.TrimSpace(found.Text()) != "" {
			container = found
			break
		}
	}
	if container == doc.Selection {
		if pageBody := doc.Find("body").First(); pageBody.Length() > 0 {
			container = pageBody
		}
	}

	text := strings.TrimSpace(whitespaceRe.ReplaceAllString(container.Text(), " "))

	return domain.PageContent{
		Title:       title,
		Description: description,
		MainText:    text,
	}, nil
}
