package main

import (
	"errors"
	"fmt"
	"os"
)

// Command runner interface
type Runner interface {
	Init([]string) error
	Validate() error
	Name() string
	Run() error
}

// command line root
func root(args []string) error {
	if len(args) < 1 {
		return errors.New("you must pass a sub command")
	}
	subcommand := args[0]

	cmds := []Runner{
		NewAccountCommand(),
		NewTxCommand(),
		NewTraceCommand(),
	}

	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:]); err != nil {
				return err
			}
			if err := cmd.Validate(); err != nil {
				return err
			}

			return cmd.Run()
		}
	}

	return fmt.Errorf("unknown subcommand: %s", subcommand)
}

func main() {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := root(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
