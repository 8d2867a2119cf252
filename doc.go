// Package ytlive keeps an indefinite YouTube livestream on the air.
//
// It maintains a rolling window of scheduled liveBroadcasts bound to one
// reusable liveStream, takes each broadcast live when its slot arrives,
// ends it when the slot expires, and files every part into a per-week
// playlist. The stream itself never stops; the broadcasts segment it
// into videos of a bounded length.
//
// Overview
//
// The youtube package carries the scheduling machinery:
//
//   - Scheduler: schedules, starts, and ends individual broadcasts
//   - Runner: drives the scheduler in a loop until interrupted
//   - CleanupSweep: deletes leftover upcoming broadcasts at startup
//   - PlaylistFiler: files each broadcast into its week playlist
//   - PlaylistJanitor: retires week playlists older than a cutoff
//   - Client: the rate-limited, retrying YouTube Data API wrapper
//
// Quick Start
//
// Wire a runner against an authorized API service:
//
//	svc, err := auth.Service(ctx, cfg, log)
//	if err != nil {
//		log.Error("auth", "error", err)
//		os.Exit(1)
//	}
//	client := youtube.NewClient(svc, youtube.ClientConfig{Rate: cfg.APIRate}, log, nil)
//	endpoint := youtube.NewIngestEndpoint(client, cfg.Title, nil, log)
//	filer := youtube.NewPlaylistFiler(client, cfg.Title, log)
//	scheduler := youtube.NewScheduler(client, endpoint, filer, youtube.SchedulerConfig{
//		Title:    cfg.Title,
//		Duration: cfg.DefaultDuration,
//	}, nil, log, nil)
//	cleanup := youtube.NewCleanupSweep(client, zone, log)
//	runner := youtube.NewRunner(scheduler, cleanup, youtube.RunnerConfig{
//		MaxScheduled: cfg.MaxScheduled,
//		LoopInterval: cfg.LoopInterval,
//	}, nil, nil, log, nil)
//	err = runner.Run(ctx)
//
// The cli package packages the same wiring as the ytlive command.
//
// Configuration
//
// ytlive loads settings from multiple sources:
//
//   1. Environment variables (highest priority)
//   2. Config file (ytlive.json or ~/.config/ytlive/ytlive.json)
//   3. Default values (lowest priority)
//
// Environment variables:
//
//   - YTLIVE_TIMEZONE: IANA zone broadcast times are rounded in
//   - YTLIVE_TITLE: Base title for broadcasts, playlists, and the stream
//   - YTLIVE_DEFAULT_DURATION: Length of each broadcast slot
//   - YTLIVE_ROUNDING_GRANULARITY_HOURS: Wall-clock grid slot ends round to
//   - YTLIVE_PRIVACY_STATUS: Privacy of new broadcasts
//   - YTLIVE_MAX_SCHEDULED: Depth of the scheduled-broadcast window
//   - YTLIVE_POLL_INTERVAL: Stream health poll cadence
//   - YTLIVE_POLL_TIMEOUT: Stream health poll budget
//   - YTLIVE_LOOP_INTERVAL: Runner pass cadence
//   - YTLIVE_MAX_RETRIES: API retry attempts after the first call
//   - YTLIVE_RETRY_BACKOFF: Pause between API retries
//   - YTLIVE_API_RATE: API calls per second
//   - YTLIVE_CLIENT_SECRET_FILE: OAuth client secret path
//   - YTLIVE_TOKEN_FILE: Stored OAuth token path
//   - YTLIVE_METRICS_ADDR: Prometheus listen address, empty disables
//   - YTLIVE_LOG_LEVEL: debug, info, warn, or error
//   - YTLIVE_LOG_FORMAT: text or json
//
// Error Handling
//
// All operations return errors that implement standard Go error handling:
//
//	if errors.Is(err, youtube.ErrStreamNotActive) {
//		fmt.Println("encoder is not sending video")
//	}
//
//	var apiErr *youtube.APIError
//	if errors.As(err, &apiErr) {
//		fmt.Printf("%s failed for %s: %v\n", apiErr.Op, apiErr.ID, apiErr.Err)
//	}
//
// Authorization
//
// The YouTube Data API requires OAuth2 with the youtube scope. Run the
// one-time flow to store a refresh token:
//
//	ytlive auth
//
// Later runs refresh the token automatically and persist the rotated
// token back to YTLIVE_TOKEN_FILE.
package ytlive
