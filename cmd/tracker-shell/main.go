package main

import (
	"context"
	"fmt"
	"os"

	"github.com/GiGurra/boa/pkg/boa"

	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/shell"
	"expensetracker/internal/tracker"
)

type Params struct {
	Backend  string `descr:"Record store" alts:"memory,sqlite" strict:"true" default:"memory" env:"DATA_BACKEND"`
	Locale   string `descr:"Locale used to format dates" default:"en-US" env:"LOCALE"`
	LogLevel string `descr:"Log level (debug, info, warn, error)" default:"warn" env:"LOG_LEVEL"`
}

func main() {
	cli.LoadEnvFile()

	boa.NewCmdT[Params]("tracker-shell").
		WithShort("Track expenses and income from the terminal").
		WithLong("Interactive shell over the expense tracker. Edit a draft with set, add it with submit, and manage records with list and remove. Records live only as long as the shell.").
		WithRunFunc(func(params *Params) {
			logger := cli.SetupLogger(params.LogLevel, os.Stderr)

			cfg := config.Load()
			cfg.DataBackend = params.Backend
			cfg.Locale = params.Locale
			cfg.LogLevel = params.LogLevel
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}

			st, closeStore, err := cli.NewStore(context.Background(), cfg, logger.WithComponent(applog.ComponentStorage))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			defer closeStore()

			publisher := cli.NewPublisher(cfg, logger.WithComponent(applog.ComponentEvents))
			defer publisher.Close()

			tr := tracker.New(st,
				tracker.WithPublisher(publisher),
				tracker.WithLogger(logger.WithComponent(applog.ComponentTracker)))

			ctx, stop := cli.SignalContext(context.Background())
			defer stop()

			fmt.Println("Expense tracker. Type help for commands.")
			sh := shell.New(tr, os.Stdin, os.Stdout,
				shell.WithLocale(cfg.Locale),
				shell.WithLogger(logger.WithComponent(applog.ComponentShell)))
			if err := sh.Run(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}).
		Run()
}
