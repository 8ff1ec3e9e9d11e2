package scraper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
)

type stubRunner struct {
	out   []byte
	err   error
	calls int
	args  []string
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls++
	r.args = append([]string{name}, args...)
	return r.out, r.err
}

func newTestFetcher(runner CommandRunner) *DocumentFetcher {
	cfg := config.Default()
	cfg.Scrape.RetryDelayMs = 1

	f := NewDocumentFetcher(cfg, zerolog.Nop())
	curl := NewCurlFetcher(cfg.Scrape, zerolog.Nop())
	curl.runner = runner
	f.fallbacks = []documentSource{curl}
	return f
}

func TestDocumentFetcher_Success(t *testing.T) {
	var gotUA, gotReferer string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		io.WriteString(w, `<html><body><p class="msg">hello</p></body></html>`)
	}))
	defer ts.Close()

	runner := &stubRunner{}
	f := newTestFetcher(runner)

	doc, err := f.Fetch(context.Background(), ts.URL, "https://ref.example", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find(".msg").Text())
	assert.Equal(t, config.Default().Scrape.UserAgent, gotUA)
	assert.Equal(t, "https://ref.example", gotReferer)
	assert.Zero(t, runner.calls, "fallback must not run on success")
}

func TestDocumentFetcher_RetriesNetworkErrors(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, `<html><body>ok</body></html>`)
	}))
	defer ts.Close()

	f := newTestFetcher(&stubRunner{})

	_, err := f.Fetch(context.Background(), ts.URL, "", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load(), "third attempt succeeds within the retry budget")
}

func TestDocumentFetcher_SubprocessFallbackAfterExhaustion(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	runner := &stubRunner{out: []byte(`<html><body><p class="msg">from curl</p></body></html>`)}
	f := newTestFetcher(runner)

	doc, err := f.Fetch(context.Background(), ts.URL, "", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "from curl", doc.Find(".msg").Text())
	assert.Equal(t, int32(3), hits.Load(), "all in-process attempts run before the fallback")
	assert.Equal(t, 1, runner.calls)

	require.NotEmpty(t, runner.args)
	assert.Equal(t, "curl", runner.args[0])
	assert.Contains(t, runner.args, "-L")
	assert.Contains(t, runner.args, "--max-time")
	assert.Contains(t, runner.args, "-A")
	assert.Equal(t, ts.URL, runner.args[len(runner.args)-1])
}

func TestDocumentFetcher_PropagatesOriginalErrorWhenAllTiersFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	runner := &stubRunner{err: errors.New("exit status 7")}
	f := newTestFetcher(runner)

	_, err := f.Fetch(context.Background(), ts.URL, "", 5*time.Second)
	require.Error(t, err)

	var netErr *models.NetworkError
	assert.ErrorAs(t, err, &netErr, "the original network error must surface, not the fallback's")
	assert.Equal(t, 1, runner.calls)
}

func TestDocumentFetcher_EmptyBodyIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, "   \n")
	}))
	defer ts.Close()

	runner := &stubRunner{}
	f := newTestFetcher(runner)

	_, err := f.Fetch(context.Background(), ts.URL, "", 5*time.Second)
	require.Error(t, err)

	var emptyErr *models.EmptyResponseError
	assert.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, int32(1), hits.Load(), "a blank body will not improve on retry")
	assert.Zero(t, runner.calls, "blank bodies do not trigger the subprocess fallback")
}

func TestCurlFetcher_RejectsEmptyOutput(t *testing.T) {
	cfg := config.Default()
	curl := NewCurlFetcher(cfg.Scrape, zerolog.Nop())
	curl.runner = &stubRunner{out: []byte("  ")}

	_, err := curl.Fetch(context.Background(), "https://example.com", time.Second)
	var emptyErr *models.EmptyResponseError
	assert.ErrorAs(t, err, &emptyErr)
}

func TestCurlFetcher_MaxTimeFloorsAtOneSecond(t *testing.T) {
	cfg := config.Default()
	runner := &stubRunner{out: []byte("<html></html>")}
	curl := NewCurlFetcher(cfg.Scrape, zerolog.Nop())
	curl.runner = runner

	_, err := curl.Fetch(context.Background(), "https://example.com", 200*time.Millisecond)
	require.NoError(t, err)
	assert.Contains(t, runner.args, "1")
}
