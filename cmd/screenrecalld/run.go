package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"screenrecall/pkg/capture"
	"screenrecall/pkg/cli"
	"screenrecall/pkg/config"
	"screenrecall/pkg/evidence"
	"screenrecall/pkg/evidence/blob"
	"screenrecall/pkg/evidence/ledger"
	"screenrecall/pkg/evidence/retention"
	"screenrecall/pkg/evidence/storage"
	"screenrecall/pkg/extract"
	"screenrecall/pkg/governor"
	"screenrecall/pkg/ingest"
	"screenrecall/pkg/plugin"
	"screenrecall/pkg/query"
	"screenrecall/pkg/retrieval"
	"screenrecall/pkg/server"
	"screenrecall/pkg/telemetry/health"
	"screenrecall/pkg/telemetry/metrics"
)

// currentSchemaVersion is the evidence record schema version this build
// writes (see the SchemaVer literals in pkg/ingest/normalizer.go).
const currentSchemaVersion = 1

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the screenrecalld daemon",
	Long: `Start the screenrecalld daemon with the specified configuration.

The daemon captures the screen on an activity-aware cadence, normalizes and
extracts derived evidence from each surviving frame, and serves the
read-only query API on the configured loopback address.

Examples:
  # Start with default config
  screenrecalld run

  # Start with custom config
  screenrecalld run --config /etc/screenrecalld/config.yaml

  # Override listen address
  screenrecalld run --listen 127.0.0.1:9090

  # Validate config without starting the daemon
  screenrecalld run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override query API listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the daemon")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Query.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	var logLevel slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if runFlags.dryRun {
		fmt.Println("Configuration valid")
		return nil
	}

	fmt.Printf("screenrecalld v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)

	// Stage-1 dependency-graph audit (spec.md §4.3): verify at boot that
	// nothing Stage-1 wiring takes a compile-time dependency on is a
	// forbidden extractor import, before the capture pipeline starts.
	if err := ingest.AuditStartup(); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("stage1 dependency audit failed: %v", err))
	}

	// Evidence store, ledger, blob store (C1).
	sqliteCfg := &storage.SQLiteConfig{
		Path:         cfg.Evidence.SQLite.Path,
		MaxOpenConns: cfg.Evidence.SQLite.MaxOpenConns,
		MaxIdleConns: cfg.Evidence.SQLite.MaxIdleConns,
		WALMode:      cfg.Evidence.SQLite.WALMode,
		BusyTimeout:  cfg.Evidence.SQLite.BusyTimeout,
	}
	evidenceStorage, err := storage.NewSQLiteStorage(sqliteCfg)
	if err != nil {
		return fmt.Errorf("failed to open evidence store: %w", err)
	}
	defer evidenceStorage.Close()

	auditLedger, err := ledger.Open(cfg.Evidence.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer auditLedger.Close()

	blobs, err := blob.New(cfg.Evidence.BlobDir)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	fmt.Println("Evidence store initialized")

	// Retention & reap-safety gate (C9).
	retentionCfg := &retention.Config{
		RevalidateSchedule: cfg.Retention.RevalidateSchedule,
		HorizonHours:       cfg.Retention.HorizonHours,
	}
	gate := retention.NewGate(evidenceStorage, auditLedger, retentionCfg, currentSchemaVersion)
	scheduler := retention.NewScheduler(gate)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if retentionCfg.RevalidateSchedule != "" {
		if err := scheduler.Start(ctx); err != nil {
			slog.Warn("failed to start retention scheduler", "error", err)
		} else {
			defer scheduler.Stop()
		}
	}

	// Plugin capability broker & governor (C4/C5).
	broker := plugin.NewBroker(cfg.PluginHost.MaxConcurrentProcesses, auditLedger)
	governorCfg := &governor.Config{
		CPUCapPercent:        cfg.Governor.CPUCapPct,
		RAMCapPercent:        cfg.Governor.RAMCapPct,
		StaleAfter:           time.Duration(cfg.Governor.TelemetryStaleS * float64(time.Second)),
		MaxConcurrentPlugins: cfg.PluginHost.MaxConcurrentProcesses,
	}
	gov := governor.New(governorCfg, broker)
	sampler := governor.NewSampler(resourceReader{}, gov, time.Second)
	go sampler.Run(ctx)

	// Extractor plugins (C4): load manifests, start each stage2 plugin's
	// subprocess, and declare its capabilities on the broker. An empty
	// ManifestDir runs with zero extractor plugins registered.
	extractorRouter, pluginProcs := loadExtractorPlugins(cfg.PluginHost.ManifestDir, broker, auditLedger)
	for _, proc := range pluginProcs {
		proc := proc
		defer proc.Stop()
	}

	// Stage-2 extractor pool (C6).
	extractCfg := &extract.Config{
		Parallelism:           cfg.Extract.Parallelism,
		MaxParallelism:        cfg.Extract.MaxParallelism,
		MaxRetries:            cfg.Extract.MaxRetries,
		RetryBackoff:          cfg.Extract.RetryBackoff,
		RetentionHorizonHours: cfg.Retention.HorizonHours,
		LagWarnRatio:          cfg.Retention.LagWarnRatio,
	}
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	extractPool := extract.NewPool(extractCfg, evidenceStorage, instrumentExtractor(extractorRouter, collector))
	defer extractPool.Close()
	go drainExtractResults(ctx, extractPool)

	// Capture scheduler & Stage-1 normalizer (C2/C3).
	runID := uuid.NewString()
	normalizer := ingest.NewNormalizer(evidenceStorage, blobs, runID)
	captureCfg := &capture.Config{
		ActiveWindowSeconds:   cfg.Capture.ActiveWindowS,
		ActiveIntervalSeconds: cfg.Capture.ActiveIntervalS,
		IdleIntervalSeconds:   cfg.Capture.IdleIntervalS,
		ThumbSize:             cfg.Capture.ThumbSize,
		Sources:               []string{"primary"},
	}
	signal := activitySignal{}
	captureScheduler := capture.NewScheduler(captureCfg, signal, screenGrabber{})

	var frameIndex int64
	go runCapturePipeline(ctx, captureScheduler, normalizer, extractPool, extractorRouter, &frameIndex, collector)
	go func() {
		if err := captureScheduler.Run(ctx); err != nil && err != context.Canceled {
			slog.Warn("capture scheduler stopped", "error", err)
		}
	}()
	defer captureScheduler.Stop()

	// Drive the governor's ACTIVE/IDLE mode transition from the same
	// activity signal the capture scheduler polls (spec.md §4.5). USER_QUERY
	// is raised separately, per request, by the query orchestrator below.
	go pollActivity(ctx, captureScheduler, captureCfg, gov)

	fmt.Println("Capture pipeline initialized")

	// Retrieval & query orchestrator (C7/C8): compose the time, lexical,
	// and vector indexes so a query with TextQuery or Embedding set
	// actually ranks by relevance instead of degrading to a time-range scan.
	timeIndex := retrieval.NewTimeIndex(evidenceStorage)
	var lexicalIndex retrieval.Index // left nil (not a typed-nil *LexicalIndex) when no DB path is configured
	if cfg.Retrieval.LexicalDBPath != "" {
		li, lexErr := retrieval.NewLexicalIndex(cfg.Retrieval.LexicalDBPath)
		if lexErr != nil {
			return fmt.Errorf("failed to open lexical index: %w", lexErr)
		}
		defer li.Close()
		lexicalIndex = li
	}
	vectorIndex := retrieval.NewVectorIndex()
	composedIndex := instrumentIndex(retrieval.NewMultiIndex(timeIndex, lexicalIndex, vectorIndex), collector, "multi")
	resolver := retrieval.NewResolver(evidenceStorage)
	traces := query.NewMemoryTraceStore()
	orchestrator := query.NewOrchestrator(composedIndex, resolver, evidenceStorage, traces, nil, gov)

	// Health checks and the loopback query server.
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("evidence_store", func(ctx context.Context) error {
		_, err := evidenceStorage.Count(ctx, &evidence.Query{Limit: 1})
		return err
	})

	srv := server.NewServer(&cfg.Query, orchestrator, checker).WithMetrics(collector, &cfg.Telemetry.Metrics)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting query server", "address", cfg.Query.ListenAddress)
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	fmt.Println()
	fmt.Printf("Query API listening on %s\n", cfg.Query.ListenAddress)
	fmt.Printf("Health endpoint: http://%s/health\n", cfg.Query.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled && cfg.Telemetry.Metrics.Port == 0 {
		path := cfg.Telemetry.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		fmt.Printf("Metrics endpoint: http://%s%s\n", cfg.Query.ListenAddress, path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Query.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		fmt.Println("Daemon stopped")
		return nil
	}
}

// runCapturePipeline drains the scheduler's surviving candidates into the
// Stage-1 normalizer and, for each frame the normalizer marks reap-safe
// complete, submits one Stage-2 extraction job per registered extractor
// plugin. Stage-1 normalize is lightweight and runs unconditionally. Stage-2
// jobs are submitted without a governor admission check: extract.Pool has
// no governor hook, this function does not call Governor.AdmitHeavy, and no
// throughput guard resizes the pool here.
func runCapturePipeline(ctx context.Context, sched *capture.Scheduler, n *ingest.Normalizer, pool *extract.Pool, extractors *multiExtractor, frameIndex *int64, collector *metrics.Collector) {
	logger := slog.Default().With("component", "cmd.capture_pipeline")
	for {
		select {
		case <-ctx.Done():
			return
		case cand, ok := <-sched.Candidates():
			if !ok {
				return
			}
			*frameIndex++
			start := time.Now()
			result, err := n.Normalize(ctx, cand.SourceID, *frameIndex, cand, nil)
			if err != nil {
				logger.Warn("stage1 normalize failed", "source", cand.SourceID, "error", err)
				collector.RecordCapture(cand.SourceID, "error", time.Since(start), 0)
				continue
			}
			collector.RecordCapture(cand.SourceID, "kept", time.Since(start), len(cand.Frame))
			logger.Debug("frame normalized", "frame_id", result.FrameID, "complete", result.Complete)

			if !result.Complete {
				continue // no Stage-2 work for a frame that isn't reap-safe complete (spec.md §4.3)
			}
			for _, extractorID := range extractors.registeredIDs() {
				recordType, ok := extractors.recordTypeFor(extractorID)
				if !ok || recordType == "" {
					continue
				}
				job := extract.Job{
					FrameID:          result.FrameID,
					FrameHash:        result.ContentHash,
					ExtractorID:      extractorID,
					ExtractorVersion: "1",
					RecordType:       recordType,
				}
				if !pool.Submit(job) {
					logger.Warn("extract pool closed, dropping job", "frame_id", result.FrameID, "extractor_id", extractorID)
				}
			}
		}
	}
}

// drainExtractResults logs each Stage-2 job outcome. The pool's result
// channel must be drained or its buffered channel fills and workers block
// (extract.Pool.Close's drain-then-close sequence depends on a reader
// staying attached to Results()).
func drainExtractResults(ctx context.Context, pool *extract.Pool) {
	logger := slog.Default().With("component", "cmd.extract_results")
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-pool.Results():
			if !ok {
				return
			}
			if res.Err != nil {
				logger.Warn("extraction failed", "frame_id", res.Job.FrameID, "extractor_id", res.Job.ExtractorID, "error", res.Err)
				continue
			}
			logger.Debug("extraction complete", "frame_id", res.Job.FrameID, "record_id", res.RecordID, "reused", res.Reused)
		}
	}
}

// pollActivity drives the governor's ACTIVE_CAPTURE_ONLY/IDLE_DRAIN mode
// transition from the same activity signal the capture scheduler polls
// (spec.md §4.5), at the scheduler's active-interval cadence. USER_QUERY is
// raised separately and independently by the query orchestrator on each
// request (query.Orchestrator.Handle), which always takes priority over
// whatever this loop last reported (governor.Governor.SetActivity).
func pollActivity(ctx context.Context, sched *capture.Scheduler, cfg *capture.Config, gov *governor.Governor) {
	interval := time.Duration(cfg.ActiveIntervalSeconds * float64(time.Second))
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gov.SetActivity(sched.CurrentState() == capture.StateActive, false)
		}
	}
}
