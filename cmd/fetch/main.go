// Command fetch retrieves one source's bestseller top-10 and prints it as
// JSON, e.g.:
//
//	fetch -source kyobo
//	fetch -source yes24 -timeout 60s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bestseller-aggregator/internal/config"
	"bestseller-aggregator/internal/scraper"
)

func main() {
	source := flag.String("source", scraper.SourceKyobo, "source key to fetch")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall fetch deadline")
	verbose := flag.Bool("v", false, "log scrape progress to stderr")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.ErrorLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	svc := scraper.NewService(cfg, log)
	if !svc.HasSource(*source) {
		log.Fatal().
			Str("source", *source).
			Str("known", strings.Join(svc.Sources(), ", ")).
			Msg("unknown source")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	items := svc.FetchTopTen(ctx, *source)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		log.Fatal().Err(err).Msg("failed to encode items")
	}
}
