// Package main is the entry point for the delta dependency validator.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/delta/cmd/delta/commands"
	"go.trai.ch/delta/internal/app"
	"go.trai.ch/delta/internal/core/domain"
	_ "go.trai.ch/delta/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer func() {
		// Shutdown must not be canceled by the signal that ended the command.
		if err := components.Close(context.WithoutCancel(ctx)); err != nil {
			components.Logger.Error(err)
		}
	}()

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		// Per-set failures were already rendered next to their set.
		if errors.Is(err, domain.ErrCheckFailed) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
