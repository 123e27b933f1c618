// Package main provides the CLI entry point for matrixplan.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/ukaji3/matrixplan-go/internal/config"
	"github.com/ukaji3/matrixplan-go/internal/legacy"
	"github.com/ukaji3/matrixplan-go/internal/logging"
	"github.com/ukaji3/matrixplan-go/internal/server"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan"
	"github.com/ukaji3/matrixplan-go/pkg/matrixplan/output"
)

type cliOptions struct {
	configPath string
	logLevel   string
	outputPath string
	pretty     bool
	listen     string

	stderr io.Writer
	now    func() time.Time
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{stderr: stderr, now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "matrixplan",
		Short: "Turn compliance-matrix slide decks into spreadsheet test plans",
		Long: `matrixplan reads a compliance-matrix presentation (.pptx, or .ppt via
LibreOffice) and writes an .xlsx test plan with one sheet per section.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	convertCmd := &cobra.Command{
		Use:   "convert [input.pptx|input.ppt]",
		Short: "Convert a deck into an .xlsx test plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, args[0])
		},
	}
	convertCmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: <input>_test_sheet_<timestamp>.xlsx next to the input)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [input.pptx]",
		Short: "Print the detected sections, tables and rows as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args[0])
		},
	}
	inspectCmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Output file path (default: stdout)")
	inspectCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	serveCmd.Flags().StringVar(&opts.listen, "listen", "", "Listen address (default from config, :8000)")

	rootCmd.AddCommand(convertCmd, inspectCmd, serveCmd)
	return rootCmd
}

// setup loads the config, applies the flags that were set and builds the logger.
func setup(cmd *cobra.Command, opts *cliOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	var listen, level *string
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		listen = &opts.listen
	}
	if cmd.Flags().Changed("log-level") {
		level = &opts.logLevel
	}
	cfg.MergeWithFlags(listen, level)
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logging.New(opts.stderr, cfg.LogLevel, cfg.LogConsole || logging.IsTerminal(opts.stderr))
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func runConvert(cmd *cobra.Command, opts *cliOptions, inputPath string) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	data, err := readInput(inputPath)
	if err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(inputPath), ".ppt") && !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		conv := legacy.NewConverter(cfg.Legacy.SofficePath, cfg.Legacy.Timeout, log)
		data, err = conv.Convert(cmd.Context(), data, filepath.Base(inputPath))
		if err != nil {
			return fmt.Errorf("legacy conversion failed: %w", err)
		}
		log.Info().Str("input", inputPath).Int("size", len(data)).Msg("converted legacy deck")
	}

	xlsx, err := matrixplan.Convert(data, matrixplan.Options{Logger: &log})
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	outPath := opts.outputPath
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(inputPath), matrixplan.OutputName(inputPath, opts.now()))
	}
	if err := os.WriteFile(outPath, xlsx, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	log.Info().Str("input", inputPath).Str("output", outPath).Int("bytes", len(xlsx)).Msg("wrote test plan")
	fmt.Fprintln(cmd.OutOrStdout(), outPath)
	return nil
}

func runInspect(cmd *cobra.Command, opts *cliOptions, inputPath string) error {
	_, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	data, err := readInput(inputPath)
	if err != nil {
		return err
	}

	plan, err := matrixplan.Inspect(data, matrixplan.Options{Logger: &log})
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	jsonData, err := output.PlanToJSON(plan, opts.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func runServe(cmd *cobra.Command, opts *cliOptions) error {
	cfg, log, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, log, nil).ListenAndServe(ctx)
}

func readInput(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}
