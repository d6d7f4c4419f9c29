package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/tomehq/tome/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Start the HTTP API. The catalog is loaded once at startup and can be
reloaded at runtime with POST /v1/refresh; queries keep serving the
previous snapshot while a reload runs. SIGINT or SIGTERM drains
in-flight requests and exits.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagServeAddr != "" {
		cfg.Serve.Addr = flagServeAddr
	}

	log, err := newLogger(zapcore.InfoLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	eng, release, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed first load is not fatal: the server answers 503 until a
	// refresh succeeds.
	if snap, err := eng.Refresh(ctx); err != nil {
		log.Warnw("initial catalog load failed, serving 503 until refresh", "error", err)
	} else {
		log.Infow("catalog ready",
			"entries", snap.Catalog.Len(),
			"load_errors", len(snap.Errors),
			"warnings", len(snap.Warnings),
		)
	}

	srv := server.New(ctx, eng, log, server.Config{
		Addr:           cfg.Serve.Addr,
		RateLimitRPS:   cfg.Serve.RateLimitRPS,
		RateLimitBurst: cfg.Serve.RateLimitBurst,
	})
	return srv.ListenAndServe(ctx)
}
