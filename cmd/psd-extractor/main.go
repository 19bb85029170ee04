package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	psdextractor "github.com/hellenic-development/psd-extractor"
	"github.com/hellenic-development/psd-extractor/internal/server"
	"github.com/hellenic-development/psd-extractor/pkg/config"
	"github.com/hellenic-development/psd-extractor/pkg/imager"
	"github.com/hellenic-development/psd-extractor/pkg/psd"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = psd.Version

var (
	input         string
	outputDir     string
	zipPath       string
	reportPath    string
	configPath    string
	compression   string
	layerTree     bool
	inheritHidden bool
	noFallback    bool
	verbose       bool
	serveAddr     string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "psd-extractor",
		Short: "Export the layers of a PSD file as PNG images",
		Long:  "A tool to export every visible raster layer of a Photoshop document as a standalone PNG, named after its group path",
		RunE:  run,
	}

	rootCmd.Flags().StringVarP(&input, "input", "i", "", "PSD file path or http(s) URL (required)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "psd-layers", "Output directory for exported layers")
	rootCmd.Flags().StringVar(&zipPath, "zip", "", "Also bundle the layers and a manifest into this ZIP file")
	rootCmd.Flags().StringVar(&reportPath, "report", "", "Write an export report (.md or .html)")
	rootCmd.Flags().BoolVar(&layerTree, "layer-tree", false, "Include the layer hierarchy in the report")
	rootCmd.Flags().BoolVar(&inheritHidden, "inherit-hidden", false, "Treat layers inside hidden groups as hidden")
	rootCmd.Flags().BoolVar(&noFallback, "no-fallback", false, "Disable the fallback encoder")
	rootCmd.Flags().StringVar(&compression, "compression", "default", "PNG compression: default, none, fast, best")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Load settings from a .toml or .yaml file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print every layer as it is processed")

	rootCmd.MarkFlagRequired("input")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default $PSD_EXTRACTOR_ADDR or :8090)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "psd-extractor version %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, versionCmd)
	return rootCmd
}

// applyConfig fills every flag the user did not set explicitly from the config file.
func applyConfig(cmd *cobra.Command, cfg *config.File) {
	flags := cmd.Flags()
	if !flags.Changed("output-dir") && cfg.OutputDir != "" {
		outputDir = cfg.OutputDir
	}
	if !flags.Changed("zip") && cfg.Zip != "" {
		zipPath = cfg.Zip
	}
	if !flags.Changed("report") && cfg.Report != "" {
		reportPath = cfg.Report
	}
	if !flags.Changed("layer-tree") && cfg.LayerTree {
		layerTree = true
	}
	if !flags.Changed("inherit-hidden") && cfg.InheritHidden {
		inheritHidden = true
	}
	if !flags.Changed("no-fallback") && cfg.NoFallback {
		noFallback = true
	}
	if !flags.Changed("compression") && cfg.Compression != "" {
		compression = cfg.Compression
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	cyan.Fprintln(out, "\n🧱 PSD Layer Extractor")
	cyan.Fprintln(out, "======================")
	cyan.Fprintln(out)

	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyConfig(cmd, cfg)
	}

	level, err := imager.ParseCompression(compression)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := psdextractor.Options{
		Input:         input,
		OutputDir:     outputDir,
		ZipPath:       zipPath,
		ReportPath:    reportPath,
		LayerTree:     layerTree,
		InheritHidden: inheritHidden,
		NoFallback:    noFallback,
		Compression:   level,
		Logger:        &cliLogger{verbose: verbose},
	}

	result, err := psdextractor.Run(ctx, opts)
	if result == nil {
		return err
	}

	summary := result.Summary
	cyan.Fprintln(out, "\n📊 Export Summary:")
	fmt.Fprintf(out, "  • Document: %s (%dx%d)\n", result.Document.Name, result.Document.Width, result.Document.Height)
	fmt.Fprintf(out, "  • Exported: %d of %d attempted\n", summary.Exported(), summary.Attempted)
	fmt.Fprintf(out, "  • Skipped: %d\n", len(summary.Skipped))
	if n := len(summary.Failures); n > 0 {
		red.Fprintf(out, "  • Failed: %d\n", n)
		for _, f := range summary.Failures {
			red.Fprintf(out, "      %s: %v\n", f.Name, f.Err)
		}
	}

	if err != nil {
		return err
	}

	green.Fprintf(out, "\n✨ Wrote %d file(s) to %s\n", len(result.Files), outputDir)
	if zipPath != "" {
		green.Fprintf(out, "📦 Bundle: %s\n", zipPath)
	}
	if reportPath != "" {
		green.Fprintf(out, "📝 Report: %s\n", reportPath)
	}
	fmt.Fprintln(out)
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "psd-extractor",
	})

	cfg := config.LoadServer()
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.New(cfg, logger, nil),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting psd-extractor", "addr", cfg.Addr, "max_upload", cfg.MaxUploadBytes, "version", version)
	return listenAndServe(ctx, httpServer, logger)
}

// listenAndServe runs srv until it fails or ctx is done, then shuts it down gracefully.
func listenAndServe(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// cliLogger implements psdextractor.Logger with colored terminal output.
// Info lines are only printed in verbose mode.
type cliLogger struct {
	verbose bool
}

func (l *cliLogger) Infof(format string, args ...any) {
	if !l.verbose {
		return
	}
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
