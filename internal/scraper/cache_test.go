package scraper

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"bestseller-aggregator/internal/models"
)

func newTestCache(ttl time.Duration) (*ResultCache, *time.Time) {
	c := NewResultCache(ttl, zerolog.Nop())
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }
	return c, &current
}

func TestResultCache_ServesLiveEntryWithoutFetching(t *testing.T) {
	c, current := newTestCache(6 * time.Hour)

	calls := 0
	fetch := func() []models.BestsellerItem {
		calls++
		return []models.BestsellerItem{{Title: "Book A"}, {Title: "Book B"}}
	}

	first := c.GetOrFetch("kyobo", fetch)
	*current = current.Add(time.Hour)
	second := c.GetOrFetch("kyobo", fetch)

	assert.Equal(t, 1, calls, "live entry must be served without a fetch")
	assert.Equal(t, first, second)
}

func TestResultCache_RefetchesAfterExpiry(t *testing.T) {
	c, current := newTestCache(6 * time.Hour)

	calls := 0
	fetch := func() []models.BestsellerItem {
		calls++
		return []models.BestsellerItem{{Title: "Book A"}}
	}

	c.GetOrFetch("kyobo", fetch)
	*current = current.Add(6*time.Hour + time.Minute)
	c.GetOrFetch("kyobo", fetch)

	assert.Equal(t, 2, calls)
}

func TestResultCache_ServesStaleWhenRefreshComesBackEmpty(t *testing.T) {
	c, current := newTestCache(6 * time.Hour)

	good := []models.BestsellerItem{{Title: "Book A"}}
	c.GetOrFetch("kyobo", func() []models.BestsellerItem { return good })

	*current = current.Add(7 * time.Hour)

	emptyCalls := 0
	emptyFetch := func() []models.BestsellerItem {
		emptyCalls++
		return nil
	}

	got := c.GetOrFetch("kyobo", emptyFetch)
	assert.Equal(t, good, got, "stale items must be served unchanged")

	// The timestamp was not advanced, so the next call retries the fetch.
	c.GetOrFetch("kyobo", emptyFetch)
	assert.Equal(t, 2, emptyCalls)
}

func TestResultCache_EmptyThenPopulate(t *testing.T) {
	c, _ := newTestCache(6 * time.Hour)

	got := c.GetOrFetch("yes24", func() []models.BestsellerItem { return nil })
	assert.Empty(t, got)

	fresh := []models.BestsellerItem{{Title: "Book A"}}
	got = c.GetOrFetch("yes24", func() []models.BestsellerItem { return fresh })
	assert.Equal(t, fresh, got)

	// Now cached: a failing fetch no longer matters.
	got = c.GetOrFetch("yes24", func() []models.BestsellerItem {
		t.Fatal("live entry must not trigger a fetch")
		return nil
	})
	assert.Equal(t, fresh, got)
}

func TestResultCache_KeysAreIndependent(t *testing.T) {
	c, _ := newTestCache(6 * time.Hour)

	kyobo := []models.BestsellerItem{{Title: "Kyobo Book"}}
	yes24 := []models.BestsellerItem{{Title: "Yes24 Book"}}

	assert.Equal(t, kyobo, c.GetOrFetch("kyobo", func() []models.BestsellerItem { return kyobo }))
	assert.Equal(t, yes24, c.GetOrFetch("yes24", func() []models.BestsellerItem { return yes24 }))
	assert.Equal(t, kyobo, c.GetOrFetch("kyobo", func() []models.BestsellerItem { return nil }))
}
