package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qamus/internal/assets"
	"github.com/at-ishikawa/qamus/internal/bootstrap"
	"github.com/at-ishikawa/qamus/internal/config"
	"github.com/at-ishikawa/qamus/internal/inference/gemini"
	"github.com/at-ishikawa/qamus/internal/lexicon"
	"github.com/at-ishikawa/qamus/internal/server"
)

const (
	pageTitle = "Qamus"
	envFile   = ".env"
)

func main() {
	var configFile string
	var debugMode bool
	rootCommand := cobra.Command{
		Use:           "qamus-server",
		Short:         "Serve Arabic dictionary entries generated by Gemini",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configFile, debugMode)
		},
	}
	rootCommand.Flags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.Flags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	if err := rootCommand.ExecuteContext(context.Background()); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string, debugMode bool) error {
	loader, err := config.NewConfigLoader(configFile, envFile)
	if err != nil {
		return fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("loader.Load() > %w", err)
	}
	setupLogger(cfg.Log, debugMode || cfg.Server.Debug)

	if cfg.Gemini.APIKey == "" {
		slog.Default().Warn("GM_API_KEY is not set; lookups will fail until it is configured")
	}

	geminiClient := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	options := lexicon.NewOptions(cfg.Gemini.EnforceSchema, cfg.Gemini.MaxOutputTokens)

	indexPage, err := assets.RenderIndexPage(cfg.Templates.IndexPage, assets.IndexPage{
		Title:      pageTitle,
		DataPath:   server.DataPath,
		HealthPath: server.HealthPath,
	})
	if err != nil {
		return fmt.Errorf("assets.RenderIndexPage() > %w", err)
	}

	handler := server.NewHandler(cfg, geminiClient, options, indexPage)
	httpServer := server.NewHTTPServer(cfg.Server, handler.Routes(), slog.Default())

	app := bootstrap.New(bootstrap.WithShutdownTimeout(cfg.Server.ShutdownTimeout))
	app.AddShutdownHook(func(ctx context.Context) error {
		return geminiClient.Close()
	})
	app.AddShutdownHook(httpServer.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		slog.Default().Info("starting server",
			slog.String("address", httpServer.Addr),
			slog.String("model", geminiClient.GetModel()),
			slog.Bool("enforceSchema", options.EnforceSchema),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer.ListenAndServe() > %w", err)
		}
		return nil
	})
}

// setupLogger configures the default logger from the log configuration.
// debugMode forces the debug level.
func setupLogger(cfg config.LogConfig, debugMode bool) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(cfg.Level)); err != nil {
		logLevel = slog.LevelInfo
	}
	if debugMode {
		logLevel = slog.LevelDebug
	}

	options := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: true,
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, options)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}
