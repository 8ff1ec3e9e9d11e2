// Package scraper implements the bestseller aggregation pipeline: resilient
// document fetching, spreadsheet and markup extraction, per-source strategy
// chains, and a TTL result cache behind a single facade.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
)

// documentSource is a fallback fetch tier kept behind the same interface as
// the primary HTTP path so it can be stubbed out in tests.
type documentSource interface {
	Name() string
	Fetch(ctx context.Context, url string, timeout time.Duration) (*goquery.Document, error)
}

// DocumentFetcher performs HTTP GETs against scraping targets with
// browser-like headers, bounded retries, and subprocess/browser fallback
// tiers once in-process attempts are exhausted.
type DocumentFetcher struct {
	client    *http.Client
	cfg       config.ScrapeConfig
	log       zerolog.Logger
	fallbacks []documentSource
}

func NewDocumentFetcher(cfg config.Config, log zerolog.Logger) *DocumentFetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	f := &DocumentFetcher{
		// Per-call deadlines come from the request context; the client
		// itself carries no timeout.
		client:    &http.Client{Transport: transport},
		cfg:       cfg.Scrape,
		log:       log,
		fallbacks: []documentSource{NewCurlFetcher(cfg.Scrape, log)},
	}
	if cfg.Scrape.BrowserFallback {
		f.fallbacks = append(f.fallbacks, NewBrowserFetcher(cfg.Scrape, log))
	}
	return f
}

// Fetch retrieves and parses the document at url. Network errors are retried
// up to the configured attempt count with a fixed delay; when all in-process
// attempts fail, the fallback tiers run in order. If every tier fails, the
// original network error is returned.
func (f *DocumentFetcher) Fetch(ctx context.Context, url, referrer string, timeout time.Duration) (*goquery.Document, error) {
	var doc *goquery.Document
	attempt := 0

	operation := func() error {
		attempt++
		d, err := f.fetchOnce(ctx, url, referrer, timeout)
		if err != nil {
			var netErr *models.NetworkError
			if !errors.As(err, &netErr) {
				// Empty bodies and malformed documents will not get
				// better on a retry.
				return backoff.Permanent(err)
			}
			f.log.Warn().
				Str("url", url).
				Int("attempt", attempt).
				Int("max_attempts", f.cfg.RetryCount).
				Err(err).
				Msg("document fetch attempt failed")
			return err
		}
		doc = d
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(f.cfg.RetryDelay()),
			uint64(f.cfg.RetryCount-1),
		),
		ctx,
	)
	err := backoff.Retry(operation, policy)
	if err == nil {
		return doc, nil
	}

	var netErr *models.NetworkError
	if !errors.As(err, &netErr) {
		return nil, err
	}

	for _, fb := range f.fallbacks {
		d, fbErr := fb.Fetch(ctx, url, timeout)
		if fbErr == nil {
			f.log.Info().Str("url", url).Str("source", fb.Name()).Msg("fallback fetch succeeded")
			return d, nil
		}
		f.log.Warn().Str("url", url).Str("source", fb.Name()).Err(fbErr).Msg("fallback fetch failed")
	}

	return nil, err
}

func (f *DocumentFetcher) fetchOnce(ctx context.Context, url, referrer string, timeout time.Duration) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	f.setRequestHeaders(req, referrer)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &models.NetworkError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(f.cfg.SizeLimitBytes)))
	if err != nil {
		return nil, &models.NetworkError{URL: url, Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &models.EmptyResponseError{URL: url}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &models.ParseError{Step: "parse document", Err: err}
	}
	return doc, nil
}

// setRequestHeaders sets browser-like headers on the request
func (f *DocumentFetcher) setRequestHeaders(req *http.Request, referrer string) {
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
	if referrer != "" {
		req.Header.Set("Referer", referrer)
	}
}
