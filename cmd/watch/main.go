// Command watch is a terminal client for the prayer API. It subscribes to the
// /ws fan-out endpoint and prints every event, and can optionally post a
// prayer on startup (exercising the idempotent submission path) and page
// through the current public feed.
//
// Usage:
//
//	watch -api http://localhost:8080/api/v1 -ws ws://localhost:8080/ws \
//	      -user demo-user [-post "Please pray for my family this week"] [-page]
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prayoverus/go-prayer-backend/internal/client"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080/api/v1", "API base URL")
	wsURL := flag.String("ws", "ws://localhost:8080/ws", "WebSocket endpoint")
	user := flag.String("user", "demo-user", "user id sent as X-User-ID")
	post := flag.String("post", "", "content of a prayer to post on startup")
	page := flag.Bool("page", false, "page through the public feed before watching")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, *user, nil)

	if *post != "" {
		submit := client.NewSubmitController(api)
		res, err := submit.Submit(ctx, client.CreatePrayerInput{Content: *post, Public: true})
		switch {
		case err != nil:
			log.Error().Err(err).Msg("post failed")
		case res.Pending:
			log.Warn().Str("key", res.Key).Msg("offline; prayer saved locally, will sync later")
		default:
			log.Info().Str("id", res.Prayer.ID).Bool("replayed", res.Replayed).Msg("posted")
		}
	}

	if *page {
		pageFeed(ctx, api)
	}

	log.Info().Str("url", *wsURL).Msg("watching for events")
	err := client.Subscribe(ctx, *wsURL, func(ev client.Event) {
		log.Info().Str("type", ev.Type).RawJSON("data", ev.Data).Msg("event")
	})
	if err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("subscription ended")
	}
}

// pageFeed walks the first feed page front to back, the way a swipe-through
// session would, and reports cache behavior.
func pageFeed(ctx context.Context, api *client.Client) {
	ids, err := api.FeedIDs(ctx, 1, 20)
	if err != nil {
		log.Error().Err(err).Msg("fetch feed")
		return
	}
	if len(ids) == 0 {
		log.Info().Msg("feed is empty")
		return
	}

	pager := client.NewPager(api, ids, ids[0])
	if _, err := pager.Open(ctx, ids[0]); err != nil {
		log.Error().Err(err).Msg("open first record")
		return
	}
	for {
		v, err := pager.Next(ctx)
		if err == client.ErrAtBound {
			break
		}
		if err != nil {
			log.Error().Err(err).Int("index", pager.Index()).Msg("page forward")
			return
		}
		log.Info().Int("index", pager.Index()).Str("id", v.ID).Msg("paged")
	}
	log.Info().Int("records", len(ids)).Msg("reached end of feed")
}
