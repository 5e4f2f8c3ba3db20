package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/neox5/obscell/cell"
	"github.com/neox5/obscell/internal/changecount"
	"github.com/neox5/obscell/internal/config"
	"github.com/neox5/obscell/internal/randwalk"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Drive a value cell and log every broadcast",
	Long: `Start a random-walk driver that mutates a value cell on a fixed
interval. Every mutation is broadcast to a logging sink and signalled to a
change-count aggregate through the deferred notifier. Edits to the config
file are picked up live through a second, config-valued cell.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := newLogger("cellwatch", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The observed reading.
	reading := cell.New(cfg.Initial)
	defer reading.Close()

	sink := reading.Subscribe(func(v float64) {
		logger.Info().Float64("value", v).Msg("broadcast")
	})
	defer sink.Cancel()

	tracker := changecount.New(
		logger.With().Str("component", "changecount").Logger(),
		cfg.ReportInterval,
	)
	defer tracker.Stop()
	reading.RegisterExternalNotifier(tracker.Notify)

	// A second cell fronts the reloadable part of the config so the driver
	// picks up step-bound edits without a restart.
	bound := cell.New(cfg.StepBound)
	defer bound.Close()

	src := randwalk.NewRegistry(cfg.MasterSeed).NewSource(cfg.Initial, cfg.StepBound)
	boundSub := bound.Subscribe(src.SetBound)
	defer boundSub.Cancel()

	logger.Info().
		Float64("initial", cfg.Initial).
		Dur("tick", cfg.TickInterval).
		Float64("step_bound", cfg.StepBound).
		Uint64("seed", cfg.MasterSeed).
		Msg("starting")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reading.Set(src.Step())
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	g.Go(func() error {
		return watchConfig(ctx, logger, cfgFile, bound)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info().Uint64("changes", tracker.Count()).Msg("shutting down")
	return nil
}

// watchConfig reloads the config file on every write and pushes a changed
// step bound through the config-valued cell.
func watchConfig(ctx context.Context, logger zerolog.Logger, path string, bound *cell.ValueCell[float64]) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
			cfg, err := config.Load(path)
			if err != nil {
				logger.Warn().Err(err).Msg("config reload failed, keeping previous settings")
				continue
			}
			if cfg.StepBound != bound.Get() {
				logger.Info().Float64("step_bound", cfg.StepBound).Msg("config reloaded")
				bound.Set(cfg.StepBound)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(werr).Msg("config watcher error")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
