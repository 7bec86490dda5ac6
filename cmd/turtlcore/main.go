package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/turtl/core/pkg/config"
	"github.com/turtl/core/pkg/engine"
	"github.com/turtl/core/pkg/metrics"
	"github.com/turtl/core/pkg/tlog"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "turtlcore",
	Short:   "turtlcore - local sync engine for an end-to-end encrypted notes client",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("turtlcore version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (defaults built in if unset)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(startCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	tlog.Init(tlog.Config{Level: tlog.Level(level), JSONOutput: jsonOutput})
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync engine and block until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		cfg := config.Default()
		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		e, err := engine.New(cfg)
		if err != nil {
			return err
		}
		e.Start()
		tlog.Info("turtlcore engine started")

		if metricsAddr != "" {
			go serveMetrics(metricsAddr)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		tlog.Info("shutting down")
		return e.Shutdown()
	},
}

func init() {
	startCmd.Flags().String("metrics-addr", "", "If set, serve Prometheus metrics on this address (e.g. :9090)")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		tlog.Errorf("metrics server", err)
	}
}
