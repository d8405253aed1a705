package connections

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/xrpscan/ledgerlens/logger"
)

const closeTimeout = 3 * time.Second

// closeWithTimeout runs closeFn, giving up after closeTimeout.
func closeWithTimeout(name string, closeFn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- closeFn()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Log.Warn().Str("connection", name).Err(err).Msg("Error closing connection")
			return err
		}
		logger.Log.Info().Str("connection", name).Msg("Closed connection")
		return nil
	case <-ctx.Done():
		logger.Log.Warn().Str("connection", name).Dur("timeout", closeTimeout).Msg("Timeout closing connection")
		return errors.Errorf("timeout closing %s", name)
	}
}

// CloseAll closes every closer in parallel and waits at most 15 seconds.
// nil entries are skipped.
func CloseAll(closers ...io.Closer) {
	logger.Log.Info().Int("count", len(closers)).Msg("Closing all connections")

	var wg sync.WaitGroup
	for _, c := range closers {
		if c == nil {
			continue
		}
		wg.Add(1)
		go func(c io.Closer) {
			defer wg.Done()
			_ = c.Close()
		}(c)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info().Msg("All connections closed")
	case <-time.After(15 * time.Second):
		logger.Log.Warn().Msg("Timeout waiting for all connections to close")
	}
}
