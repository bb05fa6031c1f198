// Command docdrive runs one document analysis through a CLI AI provider.
//
// The document is read from a file argument or stdin; the analysis text is
// written to stdout. Progress and diagnostics go to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/specialmindsaarhus/docdrive"
	"github.com/specialmindsaarhus/docdrive/config"
	"github.com/specialmindsaarhus/docdrive/engine"
	"github.com/specialmindsaarhus/docdrive/provider"
	"github.com/specialmindsaarhus/docdrive/provider/claude"
	"github.com/specialmindsaarhus/docdrive/provider/gemini"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "docdrive:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		providerID   = flag.String("provider", "", "provider id (default from config)")
		configPath   = flag.String("config", "docdrive.yaml", "config file path")
		instructions = flag.String("instructions", "", "system instructions file")
		timeout      = flag.Duration("timeout", 0, "run timeout (default from config)")
		verbose      = flag.Bool("v", false, "debug logging")
		showVersion  = flag.Bool("probe", false, "print provider availability and version, then exit")
	)
	flag.Parse()

	// Optional .env for tool credentials; absence is fine.
	_ = godotenv.Load()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	registry := buildRegistry(cfg, logger)
	if *showVersion {
		return probe(registry)
	}

	id := *providerID
	if id == "" {
		id = cfg.DefaultProvider
	}
	facade, ok := registry.Get(id)
	if !ok {
		return fmt.Errorf("unknown provider %q (have: %v)", id, registry.Names())
	}

	doc, err := readDocument(flag.Arg(0))
	if err != nil {
		return err
	}

	req := docdrive.Request{
		Messages: []docdrive.Message{
			{Role: docdrive.RoleUser, Content: doc},
		},
	}
	if *instructions != "" {
		text, err := os.ReadFile(*instructions)
		if err != nil {
			return fmt.Errorf("instructions: %w", err)
		}
		req.Instructions = string(text)
	}

	runTimeout := cfg.Timeout()
	if *timeout > 0 {
		runTimeout = *timeout
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp, err := facade.Send(ctx, req,
		provider.WithTimeout(runTimeout),
		provider.WithProgress(func(p engine.Progress) {
			fmt.Fprintf(os.Stderr, "\r%3.0f%%", p.Percent)
		}),
	)
	fmt.Fprint(os.Stderr, "\r")
	if err != nil {
		if entry, ok := docdrive.AsEntry(err); ok {
			logger.Error().
				Str("provider", entry.Provider).
				Str("kind", string(entry.Kind)).
				Str("detail", entry.Detail).
				Msg(entry.Message)
			fmt.Fprintln(os.Stderr, entry.UserMessage)
			for _, s := range entry.Suggestions {
				fmt.Fprintln(os.Stderr, "  -", s)
			}
			os.Exit(2)
		}
		return err
	}

	logger.Info().
		Str("provider", resp.Meta.Provider).
		Str("response_id", resp.ID).
		Dur("latency", resp.Meta.Latency).
		Msg("analysis complete")
	fmt.Println(resp.Message.Content)
	return nil
}

// buildRegistry wires the known tools with config overrides applied.
func buildRegistry(cfg *config.Config, logger zerolog.Logger) *provider.Registry {
	claudeCfg := cfg.Tool("claude")
	geminiCfg := cfg.Tool("gemini")

	return provider.NewRegistry(
		provider.New(
			claude.New(
				claude.WithBinary(claudeCfg.Binary),
				claude.WithModel(claudeCfg.Model),
			),
			provider.WithLogger(logger),
		),
		provider.New(
			gemini.New(
				gemini.WithBinary(geminiCfg.Binary),
				gemini.WithModel(geminiCfg.Model),
			),
			provider.WithLogger(logger),
		),
	)
}

// probe prints availability and version for every registered provider.
func probe(registry *provider.Registry) error {
	for _, id := range registry.Names() {
		facade, _ := registry.Get(id)
		status := "not installed"
		if facade.Available() {
			status = "available"
			if v, ok := facade.Version(); ok {
				status += " (" + v + ")"
			}
		}
		fmt.Printf("%-10s %s\n", id, status)
	}
	return nil
}

// readDocument loads the document from a file path, or stdin when absent.
func readDocument(path string) (string, error) {
	if path == "" || path == "-" {
		// Guard against waiting forever on an empty interactive stdin.
		if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no document: pass a file path or pipe text on stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(data), nil
}
