package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/qamus/internal/cli"
	"github.com/at-ishikawa/qamus/internal/config"
	"github.com/at-ishikawa/qamus/internal/inference/gemini"
	"github.com/at-ishikawa/qamus/internal/lexicon"
)

var errMissingAPIKey = errors.New("GM_API_KEY is required")

func newLookupCommand() *cobra.Command {
	format := cli.FormatText
	var pdfPath string

	command := &cobra.Command{
		Use:   "lookup <word>",
		Short: "Look up an Arabic word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Gemini.APIKey == "" {
				return errMissingAPIKey
			}

			geminiClient := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
			defer func() {
				_ = geminiClient.Close()
			}()

			lookupCLI := cli.NewLookupCLI(
				geminiClient,
				lexicon.NewOptions(cfg.Gemini.EnforceSchema, cfg.Gemini.MaxOutputTokens),
				cfg.Templates.EntryMarkdown,
			)
			result, err := lookupCLI.Lookup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookupCLI.Lookup() > %w", err)
			}

			if pdfPath != "" {
				path, err := lookupCLI.WritePDF(result, pdfPath)
				if err != nil {
					return fmt.Errorf("lookupCLI.WritePDF() > %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "PDF written to %s\n", path)
				return nil
			}
			return lookupCLI.Write(result, format)
		},
	}
	flags := command.Flags()
	flags.Var(&format, "format", fmt.Sprintf("output format. Possible values are %v", cli.AllFormats))
	flags.StringVar(&pdfPath, "pdf", "", "write the entry to a PDF file instead of the standard output")
	return command
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile, ".env")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
