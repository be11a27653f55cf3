package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves job generation over HTTP. Programs are streamed as server-sent events,
expanded paths over a websocket. With --port set, jobs can also be sent to a Grbl
controller and its status is published on /events/state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		dir, _ := cmd.Flags().GetString("dir")
		density, _ := cmd.Flags().GetFloat64("density")
		port, _ := cmd.Flags().GetString("port")
		baud, _ := cmd.Flags().GetInt("baud")
		poll, _ := cmd.Flags().GetDuration("poll")

		cfg := apiConfig{
			Log:     log.Named("api"),
			DataDir: dir,
			Density: density,
		}
		if port != "" {
			ctrl, err := openController(port, baud, poll)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			cfg.Controller = ctrl
		}

		a := newAPI(cfg)
		defer a.Close()

		srv := &http.Server{
			Addr:    addr,
			Handler: a,
		}

		serverErrors := make(chan error, 1)
		go func() {
			log.Info("listening", zap.String("addr", srv.Addr), zap.String("dir", dir))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return err
		case sig := <-shutdown:
			log.Info("shutting down", zap.Stringer("signal", sig))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				log.Warn("graceful shutdown did not complete", zap.Error(err))
				return srv.Close()
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":9091", "Address to bind the server to.")
	serveCmd.Flags().String("dir", "./data", "Data directory for stored jobs.")
	serveCmd.Flags().Float64("density", 1, "Default path samples per millimeter or radian.")
	addSerialFlags(serveCmd, "")
}
