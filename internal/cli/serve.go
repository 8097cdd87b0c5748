package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"organizer-api/internal/logging"
	"organizer-api/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func registerServeCommand() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.Logger()

	rt, err := newAppState(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	app := server.New(rt.cfg, server.Deps{
		Organizer: rt.organizer,
		Settings:  rt.store,
		Progress:  rt.progress,
	})

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	go func() {
		<-sig
		log.Info().Msg("gracefully shutting down")
		_ = app.Shutdown()
	}()

	log.Info().
		Str("port", rt.cfg.Server.Port).
		Str("db", rt.cfg.Data.DBPath()).
		Msg("starting organizer API")
	return app.Listen(":" + rt.cfg.Server.Port)
}
