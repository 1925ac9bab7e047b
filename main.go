package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pliu/splayseq/pkg/metrics"
)

var version = "dev"

type rootOptions struct {
	debug       bool
	metricsPort int
	configPath  string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("splayseq failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "splayseq",
		Short:         "Splay-tree sequence workloads and play-queue demos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(opts.debug)
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.IntVar(&opts.metricsPort, "metrics.port", 0, "Port for the Prometheus metrics server, 0 disables it")
	flags.StringVar(&opts.configPath, "config.path", "", "Path to the configuration file")

	cmd.AddCommand(newBenchCommand(opts), newQueueDemoCommand(opts), newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "splayseq %s\n", version)
		},
	}
}

func setupLogging(debug bool) {
	log.DefaultLogger = log.Logger{
		Caller:     1,
		TimeFormat: "2006-01-02 15:04:05",
		Writer:     &log.IOWriter{Writer: os.Stderr},
	}

	if debug {
		log.DefaultLogger.Level = log.DebugLevel
		log.Debug().Msg("Debug logging enabled")
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-c:
			log.Info().Msg("Shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(c)
	}()
	return ctx, cancel
}

// startMetricsServer serves /metrics on port until the returned function is
// called. Port 0 serves nothing.
func startMetricsServer(port int) func() {
	if port == 0 {
		return func() {}
	}
	metrics.Init()

	addr := fmt.Sprintf(":%d", port)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.Info().Msgf("Starting Prometheus metrics server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Prometheus metrics server failed")
		}
	}()

	return func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}
}
