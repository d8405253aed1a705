package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/connections"
	"github.com/xrpscan/ledgerlens/controllers"
	"github.com/xrpscan/ledgerlens/explorer"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/routes"
	"github.com/xrpscan/ledgerlens/signals"
)

const (
	sessionTTL           = 30 * time.Minute
	labelRefreshInterval = 6 * time.Hour
	monitorInterval      = 30 * time.Second
)

func main() {
	configFile := flag.String("config", ".env", "Environment config file")
	flag.Parse()

	config.EnvLoad(*configFile)
	logger.New()

	runServerMode()
}

// archivers starts the optional sinks. A sink that cannot start is logged
// and left out.
func archivers(ctx context.Context) ([]explorer.Archiver, []io.Closer) {
	var sinks []explorer.Archiver
	var closers []io.Closer

	if config.EnvClickHouseEnabled() {
		archive, err := connections.NewClickHouseArchiveFromEnv(ctx)
		if err != nil {
			logger.Log.Error().Err(err).Msg("ClickHouse archive disabled")
		} else {
			sinks = append(sinks, archive)
			closers = append(closers, archive)
		}
	}

	if config.EnvKafkaBootstrapServer() != "" {
		publisher := connections.NewKafkaPublisherFromEnv()
		sinks = append(sinks, publisher)
		closers = append(closers, publisher)
	}

	return sinks, closers
}

func runServerMode() {
	ctx, cancel := context.WithCancel(context.Background())

	gateway := connections.NewXrplGatewayFromEnv()
	labels := connections.NewLabelSourceFromEnv()
	sinks, closers := archivers(ctx)

	ex := explorer.New(explorer.Config{
		Gateway:   gateway,
		Prices:    connections.NewPriceFeedFromEnv(),
		Labels:    labels,
		Archivers: sinks,
		PageLimit: config.EnvAccountTxPageLimit(),
	})

	go gateway.Monitor(ctx, monitorInterval)
	go refreshLabels(ctx, labels)

	e := echo.New()
	e.HideBanner = true
	routes.Add(e, controllers.New(ex, explorer.NewSessionStore(sessionTTL), gateway.Healthy))

	signals.HandleAll(func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = e.Shutdown(shutdownCtx)
		_ = ex.Close()
		connections.CloseAll(append(closers, gateway)...)
	})

	serverAddress := fmt.Sprintf("%s:%s", config.EnvServerHost(), config.EnvServerPort())
	logger.Log.Info().Str("address", serverAddress).Msg("Starting HTTP server")
	if err := e.Start(serverAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal().Err(err).Msg("HTTP server failed")
	}
	// The signal handler finishes the cleanup and exits.
	select {}
}

// refreshLabels loads the well-known names now and reloads them periodically.
func refreshLabels(ctx context.Context, labels *connections.LabelSource) {
	_ = labels.Load(ctx, false)

	ticker := time.NewTicker(labelRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = labels.Load(ctx, true)
		}
	}
}
