//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mechanical-echo/maxwell-popup/internal/monitor"
)

// notifyControlSignals wires the monitor's two inbound commands to signals:
// SIGUSR1 dismisses the current finished batch, SIGHUP reloads the config.
// The widget process sends these when the user clicks the bubble away or
// edits host settings.
func notifyControlSignals(ctx context.Context, mon *monitor.Monitor, log *logrus.Entry) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-ctx.Done():
				signal.Stop(sigs)
				return
			case sig := <-sigs:
				switch sig {
				case syscall.SIGUSR1:
					log.Info("dismissing finished sessions")
					mon.DismissFinished()
				case syscall.SIGHUP:
					if err := mon.ReloadConfig(); err != nil {
						log.WithError(err).Warn("config reload failed")
					}
				}
			}
		}
	}()
}
