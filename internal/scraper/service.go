package scraper

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/models"
)

// strategy is one concrete way of obtaining a source's list. Strategies run
// strictly in chain order; the first one yielding items wins.
type strategy struct {
	name  string
	fetch func(ctx context.Context) ([]models.BestsellerItem, error)
}

// Service is the aggregation facade. It resolves top-10 requests through the
// result cache and per-source strategy chains, and never returns an error to
// its caller: unrecoverable failures surface as an empty list.
type Service struct {
	log    zerolog.Logger
	cache  *ResultCache
	docs   *DocumentFetcher
	sheets *SpreadsheetClient
	cfg    config.ScrapeConfig
	chains map[string][]strategy
}

func NewService(cfg config.Config, log zerolog.Logger) *Service {
	s := &Service{
		log:    log,
		cache:  NewResultCache(cfg.Cache.TTL(), log),
		docs:   NewDocumentFetcher(cfg, log),
		sheets: NewSpreadsheetClient(cfg, log),
		cfg:    cfg.Scrape,
	}
	s.chains = map[string][]strategy{
		SourceKyobo: {
			{name: "excel", fetch: s.fetchKyoboExcel},
			{name: "store", fetch: s.scrapeKyoboStore},
			{name: "product", fetch: s.scrapeKyoboProduct},
			{name: "mobile", fetch: s.scrapeKyoboMobile},
			{name: "legacy", fetch: s.scrapeKyoboLegacy},
		},
		SourceYes24: {
			{name: "dom", fetch: s.scrapeYes24},
		},
	}
	return s
}

// Sources returns the known source keys, sorted.
func (s *Service) Sources() []string {
	keys := make([]string, 0, len(s.chains))
	for key := range s.chains {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasSource reports whether the facade knows the given source key.
func (s *Service) HasSource(key string) bool {
	_, ok := s.chains[key]
	return ok
}

// FetchTopTen returns the ranked top-10 for the source, from cache when live,
// otherwise by running the source's strategy chain. Unknown sources and
// exhausted chains yield an empty list, never an error.
func (s *Service) FetchTopTen(ctx context.Context, source string) []models.BestsellerItem {
	chain, ok := s.chains[source]
	if !ok {
		s.log.Warn().Str("source", source).Msg("unknown bestseller source")
		return nil
	}
	return s.cache.GetOrFetch(source, func() []models.BestsellerItem {
		return s.runChain(ctx, source, chain)
	})
}

// WarmUp fetches every source once, concurrently, to populate the cache.
func (s *Service) WarmUp(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range s.Sources() {
		key := key
		g.Go(func() error {
			items := s.FetchTopTen(ctx, key)
			s.log.Info().Str("source", key).Int("items", len(items)).Msg("cache warm-up done")
			return nil
		})
	}
	g.Wait()
}

// runChain tries each strategy in order. A failure or empty result moves on
// to the next strategy and never escapes the chain.
func (s *Service) runChain(ctx context.Context, source string, chain []strategy) []models.BestsellerItem {
	for _, st := range chain {
		items, err := st.fetch(ctx)
		if err != nil {
			s.log.Error().
				Str("source", source).
				Str("strategy", st.name).
				Err(err).
				Msg("bestseller strategy failed")
			continue
		}
		if len(items) == 0 {
			s.log.Warn().
				Str("source", source).
				Str("strategy", st.name).
				Msg("bestseller strategy returned no items")
			continue
		}
		if len(items) > maxItems {
			items = items[:maxItems]
		}
		return items
	}
	return nil
}

func (s *Service) scrapeDOM(ctx context.Context, url, referrer string, timeout time.Duration, rule ItemRule) ([]models.BestsellerItem, error) {
	doc, err := s.docs.Fetch(ctx, url, referrer, timeout)
	if err != nil {
		return nil, err
	}
	return ExtractItems(doc, rule), nil
}

func (s *Service) fetchKyoboExcel(ctx context.Context) ([]models.BestsellerItem, error) {
	return s.sheets.FetchTopTen(ctx, kyoboExcelURL)
}

func (s *Service) scrapeKyoboStore(ctx context.Context) ([]models.BestsellerItem, error) {
	return s.scrapeDOM(ctx, kyoboStoreURL, kyoboStoreReferrer, s.cfg.Timeout(), kyoboStoreRule)
}

func (s *Service) scrapeKyoboProduct(ctx context.Context) ([]models.BestsellerItem, error) {
	return s.scrapeDOM(ctx, kyoboProductURL, kyoboProductReferrer, s.cfg.Timeout(), kyoboProductRule)
}

func (s *Service) scrapeKyoboMobile(ctx context.Context) ([]models.BestsellerItem, error) {
	return s.scrapeDOM(ctx, kyoboMobileURL, kyoboMobileReferrer, s.cfg.Timeout(), kyoboProductRule)
}

func (s *Service) scrapeKyoboLegacy(ctx context.Context) ([]models.BestsellerItem, error) {
	return s.scrapeDOM(ctx, kyoboLegacyURL, kyoboLegacyReferrer, s.cfg.Timeout(), kyoboLegacyRule)
}

func (s *Service) scrapeYes24(ctx context.Context) ([]models.BestsellerItem, error) {
	return s.scrapeDOM(ctx, yes24BestURL, yes24Referrer, s.cfg.QuickTimeout(), yes24Rule)
}
