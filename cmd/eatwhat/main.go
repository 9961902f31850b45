// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/tomtom215/eatwhat/internal/client"
	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
	"github.com/tomtom215/eatwhat/internal/session"
)

const (
	serverEnvVar = "EATWHAT_SERVER"
	deviceIDKey  = "device_id"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type globalOptions struct {
	server   string
	stateDir string
	logLevel string
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("eatwhat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: eatwhat [flags] [pick|stats|ranking] [command flags]")
		fs.PrintDefaults()
	}

	var opts globalOptions
	fs.StringVar(&opts.server, "server", envOr(serverEnvVar, "http://localhost:3001"), "server base URL")
	fs.StringVar(&opts.stateDir, "state", defaultStateDir(), "directory for the local session store")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logging.Init(logging.Config{Level: opts.logLevel, Format: "console", Output: stderr})

	cmd, rest := "pick", fs.Args()
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	var err error
	switch cmd {
	case "pick":
		err = runPick(ctx, opts, rest, stdin, stdout)
	case "stats":
		err = runStats(ctx, opts, stdout)
	case "ranking":
		err = runRanking(ctx, opts, rest, stdout)
	default:
		fs.Usage()
		return 2
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "eatwhat:", err)
		return 1
	}
	return 0
}

func runPick(ctx context.Context, opts globalOptions, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	drink := fs.Bool("drink", false, "pair the dish with a drink")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(opts.stateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	store, err := session.OpenBadgerStorage(filepath.Join(opts.stateDir, "session"))
	if err != nil {
		return err
	}
	defer store.Close()

	device, err := loadDeviceID(ctx, store)
	if err != nil {
		return err
	}

	c, err := client.New(client.Config{BaseURL: opts.server, DeviceID: device})
	if err != nil {
		return err
	}
	reporter := client.NewReporter(c, client.ReporterConfig{})
	go reporter.Run(ctx)
	defer reporter.Close()

	tracker, err := session.NewTracker(session.TrackerConfig{
		DeviceID: device,
		Backend:  c,
		Reporter: reporter,
		Storage:  store,
	})
	if err != nil {
		return err
	}

	_, err = newPickFlow(c, tracker, stdin, stdout, *drink).run(ctx)
	return err
}

func runStats(ctx context.Context, opts globalOptions, stdout io.Writer) error {
	c, err := client.New(client.Config{BaseURL: opts.server})
	if err != nil {
		return err
	}

	usage, err := c.SimpleUsage(ctx)
	if err != nil {
		return err
	}
	summary, err := c.SessionSummary(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Decisions helped:\t%d\n", usage.TotalHelped)
	fmt.Fprintf(w, "Users:\t%d\n", usage.TotalUsers)
	fmt.Fprintf(w, "Sessions:\t%d (%d completed)\n", summary.TotalSessions, summary.CompletedSessions)
	fmt.Fprintf(w, "Acceptance rate:\t%s%%\n", summary.AcceptanceRate)
	fmt.Fprintf(w, "Abandon rate:\t%s%%\n", summary.AbandonRate)
	fmt.Fprintf(w, "Avg attempts:\t%s\n", summary.AvgAttempts)
	return w.Flush()
}

func runRanking(ctx context.Context, opts globalOptions, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("ranking", flag.ContinueOnError)
	typ := fs.String("type", "all", "all, dish or drink")
	limit := fs.Int("limit", 10, "number of rows")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var kind models.FoodKind
	if *typ != "all" {
		k, ok := models.ParseFoodKind(*typ)
		if !ok {
			return fmt.Errorf("unknown type %q", *typ)
		}
		kind = k
	}

	c, err := client.New(client.Config{BaseURL: opts.server})
	if err != nil {
		return err
	}
	ranking, err := c.Ranking(ctx, kind, *limit)
	if err != nil {
		return err
	}
	return printRanking(stdout, ranking)
}

func printRanking(out io.Writer, r *client.Ranking) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tACCEPTED\tSHOWN\tRATE\tSCORE")
	for i, row := range r.Ranking {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%.1f%%\t%.2f\n",
			i+1, row.Food.Name, row.Stats.AcceptCount, row.Stats.RecommendCount,
			row.Stats.AcceptanceRate, row.Stats.HotScore)
	}
	return w.Flush()
}

// loadDeviceID returns the persisted device id, creating one on first use.
func loadDeviceID(ctx context.Context, store session.Storage) (string, error) {
	raw, err := store.Get(ctx, deviceIDKey)
	if err == nil && len(raw) > 0 {
		return string(raw), nil
	}
	if err != nil && !errors.Is(err, session.ErrKeyNotFound) {
		return "", fmt.Errorf("read device id: %w", err)
	}
	id := uuid.NewString()
	if err := store.Set(ctx, deviceIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("store device id: %w", err)
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "eatwhat")
	}
	return ".eatwhat"
}
