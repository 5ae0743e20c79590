package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mechanical-echo/maxwell-popup/internal/config"
	"github.com/mechanical-echo/maxwell-popup/internal/monitor"
)

// Version is set at build time via ldflags.
var Version = "0.1.0-dev"

var (
	flagConfig   string
	flagOnce     bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "maxwell-monitor",
	Short: "Watch Claude Code sessions and raise pet notifications",
	Long: `maxwell-monitor is the headless half of the Maxwell desktop pet.

It polls Claude Code's approval markers and session transcripts, locally and
on configured SSH hosts, and emits edge-triggered waiting/finished events
for the widget to display. Send SIGUSR1 to dismiss the current finished
batch and SIGHUP to reload the configuration.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to config.toml (default: ~/.maxwell/config.toml)")
	rootCmd.Flags().BoolVar(&flagOnce, "once", false, "run a single poll and exit")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	level, err := logrus.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	logger.SetLevel(level)

	// Short run ID so overlapping launch-agent restarts are tellable apart
	log := logger.WithField("run", uuid.NewString()[:8])

	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	mon, err := monitor.New(cfgPath, newLogSink(os.Stdout, log), log)
	if err != nil {
		return err
	}

	if flagOnce {
		mon.PollOnce()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	notifyControlSignals(ctx, mon, log)

	mon.Run(ctx)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
