package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DenisStobert/hh-autoapply-backend/internal/enrichment"
	"github.com/DenisStobert/hh-autoapply-backend/internal/server"
	"github.com/DenisStobert/hh-autoapply-backend/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the OAuth proxy server",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-autoapply-backend", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	hh, err := newHeadHunter(config, logger)
	if err != nil {
		logger.Fatal("creating hh.ru client",
			zap.Error(err),
			zap.String("hint", "set HH_CLIENT_ID, HH_CLIENT_SECRET (or HH_CLIENT_SECRET_FILE) and REDIRECT_URI"),
		)
	}

	manager := session.NewManager(session.NewStore(), hh, logger.Named("session"))
	enricher := enrichment.NewEmployers(dialogsConfig(config), hh, logger.Named("enrichment"))

	srv := server.New(server.Config{
		Addr:        config.addr(),
		State:       config.State,
		DeepLink:    config.DeepLink,
		CORSOrigins: config.CORSOrigins,
	}, server.Deps{
		HH:       hh,
		Session:  manager,
		Enricher: enricher,
		Logger:   logger.Named("http"),
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("running the server", zap.Error(err))
	}

	logger.Info("server stopped")
}

func dialogsConfig(config *Config) *enrichment.Config {
	if config.Dialogs == nil {
		return nil
	}
	return &enrichment.Config{Concurrency: config.Dialogs.Concurrency}
}

// redacted returns a copy of config safe to print.
func redacted(config *Config) Config {
	out := *config
	if out.ClientSecret != "" {
		out.ClientSecret = "***"
	}
	return out
}
