package main

import (
	"context"
	"fmt"
	"os"

	"github.com/harrisonrobin/dayplan/pkg/app"
	"github.com/harrisonrobin/dayplan/pkg/cli"
	"github.com/harrisonrobin/dayplan/pkg/clock"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/mattn/go-isatty"

	// Outlook events may name IANA zones the host lacks.
	_ "time/tzdata"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config %s: %w", config.GetConfigPath(), err)
	}

	a, err := app.New(cfg, clock.Real{})
	if err != nil {
		return err
	}
	defer a.Close()

	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return cli.NewRootCmd(a, color).ExecuteContext(context.Background())
}
