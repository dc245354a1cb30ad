package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kernelgate/internal/application"
	"kernelgate/internal/command"
	"kernelgate/internal/config"
	"kernelgate/internal/db"
	"kernelgate/internal/logging"
)

var version = "dev"

func main() {
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := command.BuildApp(command.Deps{
		LoadConfig: config.LoadConfig,
		RunServe: func(ctx context.Context, cfg config.Config) error {
			a, err := application.Start(ctx, cfg)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
		RunMigrateUp: func(_ context.Context, cfg config.Config) error {
			gdb, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			return db.Close(gdb)
		},
	})
	app.Version = version

	if err := app.RunContext(rootCtx, os.Args); err != nil {
		logging.New("error", nil).Error("kernelgate failed", "err", err)
		os.Exit(1)
	}
}
