package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/qamus/internal/assets"
	"github.com/at-ishikawa/qamus/internal/inference"
	"github.com/at-ishikawa/qamus/internal/lexicon"
	"github.com/at-ishikawa/qamus/internal/pdf"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	_          pflag.Value = (*Format)(nil)
	AllFormats             = []Format{FormatText, FormatJSON, FormatYAML}
)

func (f *Format) Set(val string) error {
	for _, format := range AllFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s", val)
}

func (f Format) String() string {
	return string(f)
}

func (f *Format) Type() string {
	return "format"
}

var errEmptyWord = errors.New("word must not be empty")

// LookupResult is one generated entry with its typed view
type LookupResult struct {
	Word  string
	Entry lexicon.Entry
	// Fields keeps every key the upstream returned, including unknown ones
	Fields map[string]any
}

// LookupCLI looks up a single word from a terminal
type LookupCLI struct {
	client            inference.Client
	options           lexicon.Options
	entryTemplatePath string
	stdoutWriter      io.Writer
	bold              *color.Color
	italic            *color.Color
	heading           *color.Color
}

func NewLookupCLI(client inference.Client, options lexicon.Options, entryTemplatePath string) *LookupCLI {
	return &LookupCLI{
		client:            client,
		options:           options,
		entryTemplatePath: entryTemplatePath,
		stdoutWriter:      os.Stdout,
		bold:              color.New(color.Bold),
		italic:            color.New(color.Italic),
		heading:           color.New(color.FgCyan, color.Bold),
	}
}

func (cli *LookupCLI) Lookup(ctx context.Context, word string) (LookupResult, error) {
	if strings.TrimSpace(word) == "" {
		return LookupResult{}, errEmptyWord
	}

	response, err := cli.client.GenerateEntry(ctx, cli.options.NewRequest(word))
	if err != nil {
		return LookupResult{}, fmt.Errorf("client.GenerateEntry(%s) > %w", word, err)
	}
	if err := cli.options.Check(response.Raw); err != nil {
		return LookupResult{}, fmt.Errorf("options.Check() > %w", err)
	}
	entry, err := lexicon.ParseEntry(response.Raw)
	if err != nil {
		return LookupResult{}, fmt.Errorf("lexicon.ParseEntry() > %w", err)
	}
	slog.Default().Debug("looked up a word", slog.String("word", word))

	return LookupResult{
		Word:   word,
		Entry:  entry,
		Fields: response.Entry,
	}, nil
}

// Write prints result to the standard output in format
func (cli *LookupCLI) Write(result LookupResult, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(cli.stdoutWriter)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(result.Fields); err != nil {
			return fmt.Errorf("encoder.Encode() > %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(cli.stdoutWriter)
		encoder.SetIndent(2)
		if err := encoder.Encode(result.Fields); err != nil {
			return fmt.Errorf("encoder.Encode() > %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encoder.Close() > %w", err)
		}
	case FormatText:
		cli.writeText(result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	return nil
}

func (cli *LookupCLI) writeText(result LookupResult) {
	w := cli.stdoutWriter
	entry := result.Entry

	cli.heading.Fprintln(w, result.Word)
	if entry.DefinitionArabic != "" {
		fmt.Fprintln(w, entry.DefinitionArabic)
	}
	if entry.DefinitionEnglish != "" {
		fmt.Fprintln(w, entry.DefinitionEnglish)
	}
	if entry.RootWordArabic != "" || entry.RootWordEnglish != "" {
		cli.bold.Fprint(w, "Root: ")
		fmt.Fprintln(w, strings.TrimSpace(entry.RootWordArabic+" "+entry.RootWordEnglish))
	}

	for _, section := range assets.NewEntryTemplate(result.Word, entry).Sections {
		if len(section.Pairs) == 0 {
			continue
		}
		fmt.Fprintln(w)
		cli.bold.Fprintln(w, section.Title)
		for _, pair := range section.Pairs {
			fmt.Fprintf(w, "  - %s", pair.Arabic)
			if pair.English != "" {
				fmt.Fprint(w, ": ")
				cli.italic.Fprint(w, pair.English)
			}
			fmt.Fprintln(w)
		}
	}

	if entry.CulturalNotes != "" {
		fmt.Fprintln(w)
		cli.bold.Fprintln(w, "Cultural notes")
		fmt.Fprintln(w, entry.CulturalNotes)
	}
}

// WritePDF renders result through the entry Markdown template into pdfPath
func (cli *LookupCLI) WritePDF(result LookupResult, pdfPath string) (string, error) {
	var markdown bytes.Buffer
	if err := assets.WriteEntryMarkdown(&markdown, cli.entryTemplatePath, assets.NewEntryTemplate(result.Word, result.Entry)); err != nil {
		return "", fmt.Errorf("assets.WriteEntryMarkdown() > %w", err)
	}
	path, err := pdf.WriteMarkdown(markdown.Bytes(), pdfPath)
	if err != nil {
		return "", fmt.Errorf("pdf.WriteMarkdown(%s) > %w", pdfPath, err)
	}
	return path, nil
}
