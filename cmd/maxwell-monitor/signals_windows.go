//go:build windows

package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mechanical-echo/maxwell-popup/internal/monitor"
)

// notifyControlSignals is a no-op on Windows; there is no SIGUSR1/SIGHUP.
// The widget talks to the monitor in-process there instead.
func notifyControlSignals(ctx context.Context, mon *monitor.Monitor, log *logrus.Entry) {}
