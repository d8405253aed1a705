/**
* This file implements `ledgerlens-cli tx` and `ledgerlens-cli trace` subcommands
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/ledgerlens/signals"
)

const (
	TxCommandName    = "tx"
	TraceCommandName = "trace"
	defaultTraceHops = 5
)

type TxCommand struct {
	commonFlags
	fs    *flag.FlagSet
	fHash string
}

func NewTxCommand() *TxCommand {
	cmd := &TxCommand{
		fs: flag.NewFlagSet(TxCommandName, flag.ExitOnError),
	}
	cmd.register(cmd.fs)
	cmd.fs.StringVar(&cmd.fHash, "hash", "", "Transaction hash")
	return cmd
}

func (cmd *TxCommand) Init(args []string) error {
	return cmd.fs.Parse(args)
}

func (cmd *TxCommand) Validate() error {
	if !models.IsTxHash(cmd.fHash) {
		return fmt.Errorf("invalid transaction hash: %q", cmd.fHash)
	}
	return nil
}

func (cmd *TxCommand) Name() string {
	return cmd.fs.Name()
}

func (cmd *TxCommand) Run() error {
	ctx, stop := signals.Context(context.Background())
	defer stop()

	s := cmd.open(ctx)
	defer s.Close()

	tx, err := s.explorer.FetchTransaction(ctx, cmd.fHash)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, tx)
}

type TraceCommand struct {
	commonFlags
	fs    *flag.FlagSet
	fHash string
	fHops int
}

func NewTraceCommand() *TraceCommand {
	cmd := &TraceCommand{
		fs: flag.NewFlagSet(TraceCommandName, flag.ExitOnError),
	}
	cmd.register(cmd.fs)
	cmd.fs.StringVar(&cmd.fHash, "hash", "", "Hash of the payment to trace")
	cmd.fs.IntVar(&cmd.fHops, "hops", defaultTraceHops, "Maximum number of hops to follow")
	return cmd
}

func (cmd *TraceCommand) Init(args []string) error {
	return cmd.fs.Parse(args)
}

func (cmd *TraceCommand) Validate() error {
	if !models.IsTxHash(cmd.fHash) {
		return fmt.Errorf("invalid transaction hash: %q", cmd.fHash)
	}
	if cmd.fHops < 1 {
		return fmt.Errorf("hops must be at least 1")
	}
	return nil
}

func (cmd *TraceCommand) Name() string {
	return cmd.fs.Name()
}

// Run prints the path furthest hop first. A path cut short by an error is
// still printed before the error is returned.
func (cmd *TraceCommand) Run() error {
	ctx, stop := signals.Context(context.Background())
	defer stop()

	s := cmd.open(ctx)
	defer s.Close()

	path, err := s.explorer.TracePath(ctx, cmd.fHash, cmd.fHops)
	if len(path) > 0 {
		if perr := printJSON(os.Stdout, path); perr != nil {
			return perr
		}
	}
	return err
}
