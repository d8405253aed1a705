package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/connections"
	"github.com/xrpscan/ledgerlens/explorer"
	"github.com/xrpscan/ledgerlens/logger"
)

// commonFlags are shared by every subcommand.
type commonFlags struct {
	fConfigFile string
	fXrplServer string
	fVerbose    bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.fConfigFile, "config", ".env", "Environment config file")
	fs.StringVar(&f.fXrplServer, "server", "", "XRPL protocol compatible server to connect")
	fs.BoolVar(&f.fVerbose, "verbose", false, "Make the command more talkative")
}

// session wires the explorer for a single command run.
type session struct {
	gateway  *connections.XrplGateway
	labels   *connections.LabelSource
	explorer *explorer.Explorer
}

func (f *commonFlags) open(ctx context.Context) *session {
	config.EnvLoadOptional(f.fConfigFile)
	if f.fVerbose {
		os.Setenv("LOG_LEVEL", "debug")
	}
	logger.New()

	servers := config.EnvXrplServers()
	if f.fXrplServer != "" {
		servers = []string{f.fXrplServer}
	}
	gateway := connections.NewXrplGateway(servers, time.Duration(config.EnvXrplRequestTimeoutMs())*time.Millisecond)

	labels := connections.NewLabelSourceFromEnv()
	_ = labels.Load(ctx, false)

	return &session{
		gateway: gateway,
		labels:  labels,
		explorer: explorer.New(explorer.Config{
			Gateway:   gateway,
			Prices:    connections.NewPriceFeedFromEnv(),
			Labels:    labels,
			PageLimit: config.EnvAccountTxPageLimit(),
		}),
	}
}

func (s *session) Close() {
	_ = s.explorer.Close()
	_ = s.gateway.Close()
}

// printJSON writes v to w as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
