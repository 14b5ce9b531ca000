package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Shopify/gomatchclient/internal/client"
	clientfactory "github.com/Shopify/gomatchclient/internal/client/impl"
	"github.com/Shopify/gomatchclient/internal/metrics"

	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", os.Getenv("MM_CONFIG_PATH"), "path to matchclient TOML config")
	flag.Parse()

	cfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "matchclient: %v\n", err)
		os.Exit(2)
	}
	if err := setLogging(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "matchclient: %v\n", err)
		os.Exit(2)
	}
	if cfg.StatsdAddr != "" {
		_ = metrics.Configure(cfg.StatsdAddr)
	}
	metrics.AddGlobalTags([]string{fmt.Sprintf("region:%s", cfg.Region)})

	matchClient, err := clientfactory.MakeClientFromConfig(cfg.Client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "matchclient: %v\n", err)
		os.Exit(2)
	}

	// Prepare background context configured to listen for cancelling.
	ctx, cancel := context.WithCancel(context.Background())

	// Configure channel to receive terminal interrupt.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	params := client.SearchParams{UserID: cfg.UserID, AuthToken: cfg.AuthToken, Region: cfg.Region}
	code := runSearch(ctx, cancel, matchClient, params, sig, os.Stdout)
	cancel()
	metrics.Close()
	os.Exit(code)
}

// runSearch enqueues, polls until a terminal outcome, and turns an interrupt
// into a CancelSearch. Returns the process exit code.
func runSearch(
	ctx context.Context,
	cancel context.CancelFunc,
	c client.Client,
	params client.SearchParams,
	interrupt <-chan os.Signal,
	out io.Writer,
) int {
	started := c.StartSearch(ctx, params)
	var outcome client.Outcome
	select {
	case outcome = <-started:
	case <-interrupt:
		// Enqueue cannot be aborted mid-request; stop its backoff instead.
		log.Info().Msg("interrupt received while enqueuing")
		cancel()
		outcome = <-started
	}
	if outcome.Kind != client.Enqueued {
		log.Info().Err(outcome.Err).Str("kind", outcome.Kind.String()).Msg("failed to connect to the coordinator")
		fmt.Fprintln(out, "Failed to connect to the coordinator.")
		return 1
	}

	polled := c.Poll(ctx)
	select {
	case outcome = <-polled:
		return reportPoll(outcome, out)
	case <-interrupt:
		// A match that is already delivered wins over the interrupt.
		select {
		case outcome = <-polled:
			return reportPoll(outcome, out)
		default:
		}
		log.Info().Msg("interrupt received, cancelling search")
		cancelled := <-c.CancelSearch(ctx)
		// Wake the poll loop from its interval wait.
		cancel()
		if outcome = <-polled; outcome.Kind == client.Matched {
			return reportPoll(outcome, out)
		}
		if !cancelled.Accepted() && c.State() == client.Searching {
			// The cancel raced a poll request; retry now that the loop is gone.
			cancelled = <-c.CancelSearch(context.Background())
		}
		log.Info().Bool("confirmed", cancelled.Confirmed).Msg("search cancelled")
		fmt.Fprintln(out, "Search cancelled.")
		return 130
	}
}

func reportPoll(outcome client.Outcome, out io.Writer) int {
	switch outcome.Kind {
	case client.Matched:
		info := outcome.Match
		fmt.Fprintf(out, "Found Match: Server = (%s, %d), JoinToken = (%s)\n", info.ServerAddress, info.ServerPort, info.JoinToken)
		return 0
	case client.Stopped:
		fmt.Fprintln(out, "Search cancelled.")
		return 130
	default:
		log.Info().Err(outcome.Err).Str("kind", outcome.Kind.String()).Msg("search ended without a match")
		fmt.Fprintln(out, "Failed to find a match.")
		return 1
	}
}
