package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"themeplane/api"
	"themeplane/config"
	"themeplane/logging"
	"themeplane/model"
	"themeplane/palette"
	"themeplane/scheduler"
	"themeplane/storage"
	"themeplane/theme"
)

var appVersion = "0.1.0"

// errValidationFailed makes the process exit non-zero after the report has
// already been printed.
var errValidationFailed = errors.New("validation failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "themeplane",
		Short:         "themeplane – Tailwind theme config tooling",
		Long:          "Themeplane reads, validates and serves Tailwind-style theme configs: content globs plus an extended color palette.",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logging.Init(logging.Options{Level: level})
		},
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(),
		newValidateCmd(),
		newShowCmd(),
		newResolveCmd(),
		newNearestCmd(),
		newConvertCmd(),
		newFilesCmd(),
		newPresetsCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

type serveOptions struct {
	dataDir    string
	listen     string
	listenPort int
	readOnly   bool
}

func newServeCmd() *cobra.Command {
	wd, _ := os.Getwd()
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the config API",
		Long:  "Serve the theme config HTTP API, websocket change feed and metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", wd, "Data directory (default: current directory)")
	cmd.Flags().StringVar(&opts.listen, "listen", "all", "IP address to listen on (default: all)")
	cmd.Flags().IntVar(&opts.listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Reject config writes")
	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	_ = godotenv.Load()

	cfg, err := config.Load(opts.dataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override config with CLI flags only if they were explicitly provided
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = opts.dataDir
	} else if cfg.DataDir == "" || cfg.DataDir == "." {
		cfg.DataDir = opts.dataDir
	}
	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		if opts.listen != "" && opts.listen != "all" {
			cfg.ListenAddr = net.JoinHostPort(opts.listen, fmt.Sprint(opts.listenPort))
		} else {
			cfg.ListenAddr = fmt.Sprintf(":%d", opts.listenPort)
		}
	}
	if cmd.Flags().Changed("read-only") {
		cfg.ReadOnly = opts.readOnly
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	logger := logging.Init(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDirAbs

	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	base, err := loadBasePalette(cfg)
	if err != nil {
		return err
	}

	manager, err := theme.NewManager(store,
		theme.WithBasePalette(base),
		theme.WithReadOnly(cfg.ReadOnly),
	)
	if err != nil {
		return fmt.Errorf("initialize theme manager: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	apiServer := api.NewServer(manager)

	keep, err := scheduler.ParseInterval(cfg.KeepRevisions)
	if err != nil {
		return fmt.Errorf("keep_revisions: %w", err)
	}
	pruneEvery, err := scheduler.ParseInterval(cfg.PruneEvery)
	if err != nil {
		return fmt.Errorf("prune_every: %w", err)
	}
	if keep > 0 && !cfg.ReadOnly {
		pruner := scheduler.New("prune-revisions", pruneEvery, func(ctx context.Context, now time.Time) error {
			_, err := manager.PruneHistory(now.Add(-keep))
			return err
		})
		pruner.Start(ctx)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printListeningAddresses(logger, cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	return nil
}

// loadBasePalette returns the built-in palette, or the resolved palette of
// the configured base file. Relative paths are taken from the data dir.
func loadBasePalette(cfg config.Config) (model.Palette, error) {
	if cfg.BasePalette == "" {
		return palette.Default(), nil
	}
	path := cfg.BasePalette
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.DataDir, path)
	}
	baseCfg, _, err := theme.LoadFile(path)
	if err != nil {
		return model.Palette{}, fmt.Errorf("load base palette: %w", err)
	}
	return palette.Resolve(palette.Default(), baseCfg), nil
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage themeplane settings files.",
	}

	wd, _ := os.Getwd()
	var dataDir string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default settings file",
		Long:  "Generate a default themeplane.config file in the specified data directory (or current directory if not specified).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGenerate(cmd, dataDir)
		},
	}
	generateCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory where config file will be created (default: current directory)")
	configCmd.AddCommand(generateCmd)
	return configCmd
}

func runConfigGenerate(cmd *cobra.Command, dataDir string) error {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated default config file: %s\n", cfgPath)
	return nil
}

func printListeningAddresses(logger zerolog.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info().Msgf("listening on http://%s", addr)
		return
	}

	if host != "" && host != "0.0.0.0" && host != "::" {
		logger.Info().Msgf("listening on http://%s", net.JoinHostPort(host, port))
		return
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		logger.Info().Msgf("listening on http://0.0.0.0:%s", port)
		return
	}
	logger.Info().Msg("listening on:")
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			logger.Info().Msgf("  http://%s:%s", ipnet.IP.String(), port)
		}
	}
	logger.Info().Msgf("  http://localhost:%s", port)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errValidationFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
