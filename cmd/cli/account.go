/**
* This file implements `ledgerlens-cli account` subcommand
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/xrpscan/ledgerlens/explorer"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
	"github.com/xrpscan/ledgerlens/signals"
)

const AccountCommandName = "account"

type AccountCommand struct {
	commonFlags
	fs       *flag.FlagSet
	fAddress string
	fPages   int
}

func NewAccountCommand() *AccountCommand {
	cmd := &AccountCommand{
		fs: flag.NewFlagSet(AccountCommandName, flag.ExitOnError),
	}
	cmd.register(cmd.fs)
	cmd.fs.StringVar(&cmd.fAddress, "address", "", "Classic address of the account")
	cmd.fs.IntVar(&cmd.fPages, "pages", 1, "Number of history pages to load")
	return cmd
}

func (cmd *AccountCommand) Init(args []string) error {
	return cmd.fs.Parse(args)
}

func (cmd *AccountCommand) Validate() error {
	if !models.IsClassicAddress(cmd.fAddress) {
		return fmt.Errorf("invalid account address: %q", cmd.fAddress)
	}
	if cmd.fPages < 1 {
		return fmt.Errorf("pages must be at least 1")
	}
	return nil
}

func (cmd *AccountCommand) Name() string {
	return cmd.fs.Name()
}

type accountOutput struct {
	*explorer.AccountView
	HasMore bool `json:"hasMore"`
}

func (cmd *AccountCommand) Run() error {
	ctx, stop := signals.Context(context.Background())
	defer stop()

	s := cmd.open(ctx)
	defer s.Close()

	view, err := s.explorer.FetchAccount(ctx, cmd.fAddress)
	if err != nil {
		return err
	}

	history := s.explorer.NewSession(view)
	for page := 1; page < cmd.fPages; page++ {
		added, err := history.LoadMore(ctx)
		if errors.Is(err, explorer.ErrNoMorePages) {
			break
		}
		if err != nil {
			return err
		}
		logger.Log.Debug().Int("page", page+1).Int("added", len(added)).Msg("Loaded history page")
	}

	merged := history.View(*view)
	return printJSON(os.Stdout, accountOutput{AccountView: &merged, HasMore: history.HasMore()})
}
