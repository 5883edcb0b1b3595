package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/logkeeper/pkg/cli"
	"mercator-hq/logkeeper/pkg/config"
	"mercator-hq/logkeeper/pkg/logging"
	"mercator-hq/logkeeper/pkg/retention"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the log pipeline and retention scheduler",
	Long: `Initialize logging, start the retention scheduler and, if enabled, the
metrics endpoint. With --config the file is watched and level or retention
changes are applied without a restart. Runs until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return err
	}

	guard, handle, err := logging.Init(cfg.LoggingOptions())
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() {
		if err := guard.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "flushing log file: %v\n", err)
		}
	}()
	handle.SetLevel(cfg.LogLevel())

	logger := slog.Default()
	logger.Info("logkeeper starting",
		"version", Version,
		"log_dir", cfg.LogDir(),
		"targets", handle.Targets().String(),
	)

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sched, err := startScheduler(cfg, reg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	if sched != nil {
		defer sched.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.ListenAddress,
			Handler:           metricsMux(cfg.Metrics.Path, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics endpoint listening",
				"address", srv.Addr,
				"path", cfg.Metrics.Path,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer watcher.Close()

		reload := newReloader(logger, handle, sched, cfg)
		g.Go(func() error {
			return watcher.Watch(ctx, reload.apply)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("logkeeper stopped with error", "error", err)
		return err
	}
	logger.Info("logkeeper stopped")
	return nil
}

// startScheduler registers the retention job. It returns a nil scheduler when
// retention is disabled.
func startScheduler(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*retention.Scheduler, error) {
	if !cfg.RetentionEnabled() {
		logger.Info("retention disabled")
		return nil, nil
	}

	loc, err := cfg.ScheduleLocation()
	if err != nil {
		return nil, err
	}

	retentionLogger := logger.With("component", "retention")
	cleaner := retention.NewCleaner(
		retention.WithLogger(retentionLogger),
		retention.WithMetrics(retention.NewMetrics(reg, cfg.Metrics.Namespace)),
	)

	return retention.Schedule(
		cfg.RetentionPolicy(),
		cfg.Retention.Schedule,
		retention.ErrorHandlerFunc(func(err error) {
			retentionLogger.Error("log cleanup failed",
				"kind", retention.KindOf(err).String(),
				"error", err,
			)
		}),
		retention.WithLocation(loc),
		retention.WithSchedulerLogger(retentionLogger),
		retention.WithCleaner(cleaner),
	)
}

// reloader applies the live-reloadable parts of a changed configuration: the
// log threshold and the retention policy. Everything else is reported and
// waits for a restart.
type reloader struct {
	logger *slog.Logger
	handle *logging.Handle
	sched  *retention.Scheduler

	mu      sync.Mutex
	current *config.Config
}

func newReloader(logger *slog.Logger, handle *logging.Handle, sched *retention.Scheduler, current *config.Config) *reloader {
	return &reloader{logger: logger, handle: handle, sched: sched, current: current}
}

func (r *reloader) apply(next *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.current

	// SetLevel resets every target, so per-target overrides only survive
	// reloads that leave the level alone.
	if next.LogLevel() != prev.LogLevel() {
		r.handle.SetLevel(next.LogLevel())
		r.logger.Info("log level applied",
			"level", next.LogLevel().String(),
			"previous", prev.LogLevel().String(),
		)
	}
	if next.App.Name != prev.App.Name || !slices.Equal(next.Logging.Targets, prev.Logging.Targets) {
		r.logger.Warn("log targets changes take effect on restart",
			"running", r.handle.Targets().String(),
			"configured", strings.Join(append([]string{next.App.Name}, next.Logging.Targets...), ","),
		)
	}

	if r.sched != nil {
		if err := r.sched.UpdatePolicy(next.RetentionPolicy()); err != nil {
			r.logger.Error("retention policy not applied", "error", err)
		}
		if next.Retention.Schedule != r.sched.Expression() {
			r.logger.Warn("retention schedule changes take effect on restart",
				"running", r.sched.Expression(),
				"configured", next.Retention.Schedule,
			)
		}
	}

	r.current = next
}

func metricsMux(path string, reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}))
	return mux
}
