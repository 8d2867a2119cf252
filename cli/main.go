package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"ytlive/auth"
	"ytlive/config"
	"ytlive/internal/logging"
	"ytlive/internal/metrics"
	"ytlive/internal/timefmt"
	"ytlive/youtube"
)

func main() {
	// A .env file is optional; real environment variables win over it.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "run":
		cmdRun(args)
	case "auth":
		cmdAuth(args)
	case "cleanup":
		cmdCleanup(args)
	case "playlists":
		cmdPlaylists(args)
	case "broadcasts":
		cmdBroadcasts(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytlive - indefinite YouTube livestream automation

Usage:
  ytlive run                     Run the broadcast scheduling loop
  ytlive auth                    Authorize against the YouTube account
  ytlive cleanup                 Delete leftover upcoming broadcasts
  ytlive playlists [flags]       Inspect or retire week playlists
  ytlive broadcasts [flags]      List the channel's broadcasts
  ytlive help                    Show this help message

Examples:
  ytlive auth                                         # First-time authorization
  ytlive run                                          # Run until interrupted
  ytlive cleanup                                      # One-off orphan sweep
  ytlive playlists                                    # List all playlists
  ytlive playlists --make-private-before 2024-01-01   # Retire old weeks
  ytlive playlists --delete-before 2024-01-01 --dry-run
  ytlive broadcasts --status active                   # What is live right now

For help on specific command: ytlive <command> -h
`)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytlive run\n\nRuns the scheduling loop until interrupted. SIGINT and SIGTERM stop it gracefully.\n")
	}
	fs.Parse(args)

	cfg := loadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	zone := loadZone(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	client := buildClient(ctx, cfg, log, m)

	endpoint := youtube.NewIngestEndpoint(client, cfg.Title, nil, log)
	filer := youtube.NewPlaylistFiler(client, cfg.Title, log)
	scheduler := youtube.NewScheduler(client, endpoint, filer, youtube.SchedulerConfig{
		Title:            cfg.Title,
		Duration:         cfg.DefaultDuration,
		GranularityHours: cfg.RoundingGranularityHours,
		PrivacyStatus:    cfg.PrivacyStatus,
		Zone:             zone,
		PollInterval:     cfg.PollInterval,
		PollTimeout:      cfg.PollTimeout,
	}, nil, log, m)
	cleanup := youtube.NewCleanupSweep(client, zone, log)

	runner := youtube.NewRunner(scheduler, cleanup, youtube.RunnerConfig{
		MaxScheduled:      cfg.MaxScheduled,
		LoopInterval:      cfg.LoopInterval,
		HealthLogInterval: cfg.HealthLogInterval,
		MetricsAddr:       cfg.MetricsAddr,
		MetricsHandler:    m.Handler(nil),
	}, nil, nil, log, m)

	if err := runner.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdAuth(args []string) {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytlive auth\n\nRuns the one-time OAuth flow and stores the token for later runs.\n")
	}
	fs.Parse(args)

	cfg := loadConfig()
	flow, err := auth.NewFlow(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing authorization: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Visit the URL below, authorize the account, and paste the code back here.\n\n%s\n\nCode: ", flow.AuthURL())
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading code: %v\n", err)
		os.Exit(1)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		fmt.Fprintf(os.Stderr, "Error: empty authorization code\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := flow.Exchange(ctx, code); err != nil {
		fmt.Fprintf(os.Stderr, "Error exchanging code: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Token stored in %s\n", cfg.TokenFile)
}

func cmdCleanup(args []string) {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytlive cleanup\n\nDeletes every upcoming broadcast on the channel, the sweep a normal run performs at startup.\n")
	}
	fs.Parse(args)

	cfg := loadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	zone := loadZone(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	client := buildClient(ctx, cfg, log, nil)

	deleted, err := youtube.NewCleanupSweep(client, zone, log).Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (%d broadcasts deleted before the failure)\n", err, deleted)
		os.Exit(1)
	}
	fmt.Printf("Deleted %d upcoming broadcasts.\n", deleted)
}

func cmdPlaylists(args []string) {
	fs := flag.NewFlagSet("playlists", flag.ExitOnError)
	makePrivateBefore := fs.String("make-private-before", "", "Make week playlists from weeks before this date private (YYYY-MM-DD)")
	deleteBefore := fs.String("delete-before", "", "Delete week playlists from weeks before this date (YYYY-MM-DD)")
	dryRun := fs.Bool("dry-run", false, "List the playlists that would be affected without touching them")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytlive playlists [flags]\n\nWithout flags, lists the channel's playlists.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if *makePrivateBefore != "" && *deleteBefore != "" {
		fmt.Fprintf(os.Stderr, "Error: --make-private-before and --delete-before are mutually exclusive\n")
		os.Exit(1)
	}

	cfg := loadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	zone := loadZone(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	client := buildClient(ctx, cfg, log, nil)

	if *makePrivateBefore == "" && *deleteBefore == "" {
		lists, err := client.ListPlaylists(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing playlists: %v\n", err)
			os.Exit(1)
		}
		if len(lists) == 0 {
			fmt.Println("No playlists found.")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PLAYLIST ID\tTITLE")
		for _, p := range lists {
			fmt.Fprintf(w, "%s\t%s\n", p.ID, truncate(p.Title, 60))
		}
		w.Flush()
		return
	}

	cutoffStr, action := *makePrivateBefore, "make private"
	if *deleteBefore != "" {
		cutoffStr, action = *deleteBefore, "delete"
	}
	cutoff, err := time.ParseInLocation(timefmt.Date, cutoffStr, zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date %q: %v (use YYYY-MM-DD)\n", cutoffStr, err)
		os.Exit(1)
	}

	janitor := youtube.NewPlaylistJanitor(client, zone, log)

	if *dryRun {
		targets, err := janitor.Before(ctx, cutoff)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(targets) == 0 {
			fmt.Println("No week playlists before the cutoff.")
			return
		}
		fmt.Printf("Would %s %d week playlists:\n", action, len(targets))
		for _, p := range targets {
			fmt.Printf("  %s  %s\n", p.ID, p.Title)
		}
		return
	}

	var n int
	if *deleteBefore != "" {
		n, err = janitor.DeleteBefore(ctx, cutoff)
	} else {
		n, err = janitor.MakePrivateBefore(ctx, cutoff)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (%d playlists processed before the failure)\n", err, n)
		os.Exit(1)
	}
	fmt.Printf("Processed %d week playlists (%s).\n", n, action)
}

func cmdBroadcasts(args []string) {
	fs := flag.NewFlagSet("broadcasts", flag.ExitOnError)
	status := fs.String("status", youtube.BroadcastStatusUpcoming, "Broadcast status: upcoming, active, or completed")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytlive broadcasts [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	switch *status {
	case youtube.BroadcastStatusUpcoming, youtube.BroadcastStatusActive, youtube.BroadcastStatusCompleted:
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid --status value %q (use upcoming, active, or completed)\n", *status)
		os.Exit(1)
	}

	cfg := loadConfig()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	client := buildClient(ctx, cfg, log, nil)

	remotes, err := client.ListBroadcasts(ctx, *status)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing broadcasts: %v\n", err)
		os.Exit(1)
	}
	if len(remotes) == 0 {
		fmt.Println("No broadcasts found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BROADCAST ID\tSTATUS\tSCHEDULED START\tACTUAL START\tTITLE")
	for _, r := range remotes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.LifeCycleStatus, r.ScheduledStart, r.ActualStart, truncate(r.Title, 50))
	}
	w.Flush()
	fmt.Fprintf(os.Stderr, "\nTotal: %d broadcasts\n", len(remotes))
}

// loadConfig loads and validates the configuration, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func loadZone(cfg *config.Config) *time.Location {
	zone, err := timefmt.LoadLocation(cfg.Timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}
	return zone
}

// buildClient builds the authorized API client, exiting with a hint to run
// the auth flow when no token is stored yet.
func buildClient(ctx context.Context, cfg *config.Config, log *slog.Logger, m youtube.ClientMetrics) *youtube.Client {
	svc, err := auth.Service(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, auth.ErrNoToken) {
			fmt.Fprintf(os.Stderr, "Error: no stored token at %s. Run: ytlive auth\n", cfg.TokenFile)
		} else {
			fmt.Fprintf(os.Stderr, "Error building youtube client: %v\n", err)
		}
		os.Exit(1)
	}
	return youtube.NewClient(svc, youtube.ClientConfig{
		Rate:          cfg.APIRate,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		PrivacyStatus: cfg.PrivacyStatus,
		CategoryID:    cfg.CategoryID,
		Tags:          cfg.Tags,
	}, log, m)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
