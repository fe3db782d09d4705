package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/weaver/internal/config"
	"github.com/toyz/weaver/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var (
		adapter string
		port    string
		apiKey  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Load the configuration, connect the enabled storage and serve the demo app until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if adapter != "" {
				cfg.Server.Adapter = adapter
			}
			if port != "" {
				cfg.Server.Port = port
			}
			if apiKey == "" {
				apiKey = os.Getenv(config.EnvPrefix + "_API_KEY")
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			logger.SetDefault(log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := buildApp(ctx, cfg, log, apiKey)
			if err != nil {
				return err
			}
			defer app.Close()

			log.Info("weaver starting", zap.String("version", Version), zap.String("adapter", cfg.Server.Adapter))
			return app.app.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&adapter, "adapter", "", "web server adapter: gin, echo or fiber")
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "key required in X-Api-Key for writes")
	return cmd
}
