package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
)

// Browser configuration
const (
	browserWindowWidth  = 1366
	browserWindowHeight = 900
)

// BrowserFetcher drives a headless browser as an optional final fetch tier
// for targets that serve their listings only to script-capable clients. It
// is disabled by default; the subprocess tier remains the standard fallback.
type BrowserFetcher struct {
	userAgent string
	log       zerolog.Logger
}

func NewBrowserFetcher(cfg config.ScrapeConfig, log zerolog.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		userAgent: cfg.UserAgent,
		log:       log,
	}
}

func (b *BrowserFetcher) Name() string { return "browser" }

// Fetch navigates to the URL, waits for the body, and parses the rendered
// markup.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(b.userAgent),
		chromedp.WindowSize(browserWindowWidth, browserWindowHeight),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	b.log.Debug().Str("url", url).Msg("browser navigation started")

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if strings.TrimSpace(html) == "" {
		return nil, &models.EmptyResponseError{URL: url}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &models.ParseError{Step: "parse rendered document", Err: err}
	}
	return doc, nil
}
