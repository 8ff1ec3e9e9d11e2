package scraper

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
)

// CommandRunner runs an external command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// CurlFetcher shells out to a command-line HTTP client as a last-resort
// document source. Some targets reject Go's HTTP client fingerprint but
// answer curl.
type CurlFetcher struct {
	binary    string
	userAgent string
	runner    CommandRunner
	log       zerolog.Logger
}

func NewCurlFetcher(cfg config.ScrapeConfig, log zerolog.Logger) *CurlFetcher {
	return &CurlFetcher{
		binary:    cfg.CurlBinary,
		userAgent: cfg.UserAgent,
		runner:    execRunner{},
		log:       log,
	}
}

func (c *CurlFetcher) Name() string { return c.binary }

// Fetch runs the external client and parses its stdout as the document.
// Success is exit code 0 with non-empty output.
func (c *CurlFetcher) Fetch(ctx context.Context, url string, timeout time.Duration) (*goquery.Document, error) {
	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	out, err := c.runner.Run(ctx, c.binary,
		"-L",
		"--max-time", strconv.Itoa(seconds),
		"-A", c.userAgent,
		url,
	)
	if err != nil {
		return nil, fmt.Errorf("%s fallback failed: %w", c.binary, err)
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, &models.EmptyResponseError{URL: url}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		return nil, &models.ParseError{Step: "parse subprocess output", Err: err}
	}
	return doc, nil
}
