package connections

import (
	"context"
	"fmt"
	"time"

	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/xrpl-go"
)

// Monitor periodically pings the open XRPL client until ctx is done. A
// client that fails the ping is dropped so the next request reconnects,
// starting with the next server in the list.
func (g *XrplGateway) Monitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		g.mu.Lock()
		client := g.client
		g.mu.Unlock()
		if client == nil {
			continue
		}

		if err := ping(client); err != nil {
			logger.Log.Warn().Err(err).Msg("XRPL ping failed; dropping client")
			g.drop(client)
		}
	}
}

// Healthy reports whether a server can be reached, connecting if needed.
func (g *XrplGateway) Healthy() error {
	client, _, err := g.connection()
	if err != nil {
		return err
	}
	if err := ping(client); err != nil {
		g.drop(client)
		return err
	}
	return nil
}

func ping(client *xrpl.Client) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during ping: %v", r)
		}
	}()
	return client.Ping([]byte("ping"))
}
