package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calloway/weatherline/config"
	"github.com/calloway/weatherline/hotline"
	"github.com/calloway/weatherline/internal/util"
	"github.com/calloway/weatherline/server"
	"github.com/calloway/weatherline/weather"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the hotline webhook server",
	Long: `Start the hotline HTTP server on the configured address (default
0.0.0.0:3030). The server answers Twilio voice webhooks and shuts down
cleanly on SIGTERM or SIGINT.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Both credentials are required up front: a missing auth token would
	// reject every webhook and a missing API key would fail every lookup.
	if cfg.Twilio.AuthToken == "" {
		return fmt.Errorf("twilio auth token is not set; export %s or add it to .env", config.EnvTwilioAuthToken)
	}
	if cfg.Weather.APIKey == "" {
		return fmt.Errorf("weather api key is not set; export %s or add it to .env", config.EnvWeatherAPIKey)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := hotline.New(weather.NewClient(cfg.Weather))
	router := server.NewRouter(svc, cfg.Twilio.AuthToken)
	srv := server.New(cfg.Server, router)

	logger := util.GetLogger("main")
	logger.Info().Str("addr", cfg.Server.Addr()).Msg("Hotline daemon starting")

	return srv.Serve(ctx)
}
