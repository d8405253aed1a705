package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xrpscan/ledgerlens/logger"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// HandleAll runs cleanup and exits once SIGINT or SIGTERM is received.
func HandleAll(cleanup func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, shutdownSignals...)

	go func() {
		sig := <-ch
		logger.Log.Info().Str("signal", sig.String()).Msg("Shutting down")
		if cleanup != nil {
			cleanup()
		}
		os.Exit(0)
	}()
}

// Context returns a context cancelled by SIGINT or SIGTERM.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}
