package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcelsud/webhook-inspector/config"
	"github.com/marcelsud/webhook-inspector/webhook/redis"
)

/* tail - prints captured requests as they arrive on the capture feed
 * Usage: go run ./cmd/tail [-from-start]
 */

func main() {
	fromStart := flag.Bool("from-start", false, "replay the whole feed before following it")
	flag.Parse()

	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.CaptureFeedEnabled() {
		fmt.Fprintf(os.Stderr, "REDIS_ADDR is not set, there is no capture feed to follow\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed, err := redis.NewFeed(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CaptureFeedMaxLen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to redis: %v\n", err)
		os.Exit(1)
	}
	defer feed.Close(context.Background())

	lastID := redis.FromNow
	if *fromStart {
		lastID = redis.FromStart
	}
	for ctx.Err() == nil {
		events, next, err := feed.Tail(ctx, lastID, 100, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "Error reading feed: %v\n", err)
			time.Sleep(time.Second)
			continue
		}
		for _, e := range events {
			fmt.Printf("%s  %-7s %-40s %-15s %6dB  %s\n",
				e.CreatedAt.Local().Format(time.TimeOnly), e.Method, e.Pathname, e.IP, e.BodyBytes, e.ID)
		}
		lastID = next
	}
}
