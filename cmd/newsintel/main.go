package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"NewsIntel/internal/app"
	"NewsIntel/internal/config"
	"NewsIntel/internal/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "newsintel",
		Short:         "Business news intelligence pipeline",
		Long:          "Collects news feeds, deduplicates and classifies articles, and derives risk/opportunity signals.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd(), onceCmd(), retrainCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildApp() (*app.Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, logging.New(cfg.Logging.Level))
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run collection cycles continuously until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.RunContinuous(ctx)
		},
	}
}

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single collection cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			code := application.RunOnce(ctx)
			if code != app.ExitSuccess {
				application.Close()
				os.Exit(code)
			}
			return nil
		},
	}
}

func retrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Train a new model snapshot from the labeled corpus and activate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return application.Retrain(ctx)
		},
	}
}
