// Command csyncdemo narrates the channel and select package's documented
// scenarios end to end, the way the teaching service's cmd/service/main.go
// wires config, logging, and metrics around a runnable program instead of
// leaving them as bare library calls.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dando385/csync"
	"github.com/dando385/csync/cmd/csyncdemo/config"
	"github.com/dando385/csync/metrics"
	"github.com/dando385/csync/task"
)

func main() {
	configPath := flag.String("config", "demo.yaml", "path to demo config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "csyncdemo: ", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging.Level)
	logger.Info().Msg("starting csyncdemo")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		task.SpawnDetached(func(ctx context.Context) {
			logger.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics endpoint listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		})
		defer server.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runSyncRendezvous(ctx, logger, m)
	runBufferedBackpressure(ctx, logger, m, cfg.Buffered)
	runSelectTimeoutRace(ctx, logger, m, cfg.Timeout.Duration)
	runSelectPreference(ctx, logger, m)
	runSelectNowait(logger, m)
	runSelectF(ctx, logger, m)

	logger.Info().Msg("stopping background tasks")
	task.StopAll()
	logger.Info().Msg("csyncdemo finished")
}

func setupLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
}

// runSyncRendezvous shows a Sync channel handing values to a consumer
// in strict put order, each Put blocking until its Take.
func runSyncRendezvous(ctx context.Context, logger zerolog.Logger, m *metrics.Metrics) {
	logger.Info().Msg("scenario: sync rendezvous ordering")
	ch := metrics.Instrument(m, csync.NewSync())

	h := task.Spawn(func(ctx context.Context) error {
		for i := 0; i < 3; i++ {
			if err := ch.Put(ctx, i); err != nil {
				return err
			}
		}
		return nil
	})

	for i := 0; i < 3; i++ {
		v, err := ch.Take(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("sync take failed")
			return
		}
		logger.Info().Interface("value", v).Msg("took from sync channel")
	}
	h.Cancel()
}

// runBufferedBackpressure shows buffer capacity bounding with a rate-governed producer pool
// instead of a bare loop, throttling Put calls with rate.Limiter so the
// capacity bound is exercised under a realistic load shape.
func runBufferedBackpressure(ctx context.Context, logger zerolog.Logger, m *metrics.Metrics, cfg config.BufferedConfig) {
	logger.Info().Int("capacity", cfg.Capacity).Msg("scenario: buffered backpressure")
	bc, err := csync.NewBuffered(cfg.Capacity)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build buffered channel")
		return
	}
	ch := metrics.Instrument(m, bc)

	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)

	runCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for p := 0; p < cfg.ProducerCount; p++ {
		producer := p
		task.SpawnDetached(func(taskCtx context.Context) {
			for i := 0; ; i++ {
				if err := limiter.Wait(runCtx); err != nil {
					return
				}
				if err := ch.Put(runCtx, fmt.Sprintf("p%d-%d", producer, i)); err != nil {
					return
				}
			}
		})
	}

	drained := 0
	for {
		v, err := ch.Take(runCtx)
		if err != nil {
			break
		}
		drained++
		logger.Debug().Interface("value", v).Msg("drained buffered value")
	}
	logger.Info().Int("drained", drained).Msg("buffered demo complete")
	ch.Close()
}

// runSelectTimeoutRace shows a Timeout channel racing a slower Sync
// producer, and the select engine reports whichever becomes ready first.
func runSelectTimeoutRace(ctx context.Context, logger zerolog.Logger, m *metrics.Metrics, d time.Duration) {
	logger.Info().Dur("duration", d).Msg("scenario: select timeout race")
	data := csync.NewSync()
	timeout := csync.NewTimeout(d)

	task.SpawnDetached(func(taskCtx context.Context) {
		time.Sleep(2 * d)
		_ = data.Put(taskCtx, "too-late")
	})

	v, winner, err := csync.Select(ctx, data, timeout)
	outcome := "timeout"
	if err == nil && winner == data {
		outcome = "data"
	}
	m.SelectOutcomesTotal.WithLabelValues(outcome).Inc()
	logger.Info().Interface("value", v).Str("outcome", outcome).Msg("select timeout race resolved")
	timeout.Close()
}

// runSelectPreference shows a preferred channel winning whenever both a
// preferred and a non-preferred channel are simultaneously ready.
func runSelectPreference(ctx context.Context, logger zerolog.Logger, m *metrics.Metrics) {
	logger.Info().Msg("scenario: select preference dominance")
	preferred, _ := csync.NewBuffered(4)
	preferred.Prefer()
	fallback, _ := csync.NewBuffered(4)

	for i := 0; i < 4; i++ {
		_ = preferred.Put(ctx, fmt.Sprintf("pref-%d", i))
		_ = fallback.Put(ctx, fmt.Sprintf("fall-%d", i))
	}

	for i := 0; i < 4; i++ {
		v, winner, err := csync.Select(ctx, preferred, fallback)
		if err != nil {
			logger.Error().Err(err).Msg("preference select failed")
			return
		}
		outcome := "fallback"
		if winner == preferred {
			outcome = "preferred"
		}
		m.SelectOutcomesTotal.WithLabelValues(outcome).Inc()
		logger.Info().Interface("value", v).Str("outcome", outcome).Msg("preference select resolved")
	}
	fallback.Drain()
}

// runSelectNowait shows SelectNowait never blocking, returning the
// supplied sentinel when nothing is ready.
func runSelectNowait(logger zerolog.Logger, m *metrics.Metrics) {
	logger.Info().Msg("scenario: select nowait completeness")
	empty, _ := csync.NewBuffered(1)

	sentinel := "nothing-ready"
	v, _, ok := csync.SelectNowait([]csync.Chan{empty}, sentinel)
	logger.Info().Interface("value", v).Bool("ok", ok).Msg("nowait on empty set")

	ctx := context.Background()
	_ = empty.Put(ctx, "value")
	v, winner, ok := csync.SelectNowait([]csync.Chan{empty})
	logger.Info().Interface("value", v).Bool("delivered", winner != nil && ok).Msg("nowait on ready channel")
}

// runSelectF shows SelectF dispatching the winning channel's value
// straight into its paired handler.
func runSelectF(ctx context.Context, logger zerolog.Logger, m *metrics.Metrics) {
	logger.Info().Msg("scenario: selectf dispatch")
	a, _ := csync.NewBuffered(1)
	b, _ := csync.NewBuffered(1)
	_ = a.Put(ctx, 7)

	result, err := csync.SelectF(ctx, []csync.Clause{
		{Ch: a, Handle: func(v any) (any, error) { return fmt.Sprintf("a saw %v", v), nil }},
		{Ch: b, Handle: func(v any) (any, error) { return fmt.Sprintf("b saw %v", v), nil }},
	}, nil)
	if err != nil {
		logger.Error().Err(err).Msg("selectf failed")
		return
	}
	logger.Info().Interface("result", result).Msg("selectf dispatched")
}
