// Package cli wires the engines, store and HTTP API into the workforce
// command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"

	"workforce-engine/config"
	"workforce-engine/logx"
	"workforce-engine/metrics"
)

const (
	serviceName = "workforce-engine"
	pushJobName = "workforce_engine"
)

// app holds state shared by every subcommand of one invocation.
type app struct {
	configPath  string
	logLevel    string
	metricsAddr string
	pushURL     string
	wait        bool

	cfg    *config.Config
	logger logx.Logger
}

// NewRootCmd creates the top-level "workforce" command.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "workforce",
		Short:         "Staffing forecasts and schedule validation for contact centers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.finish(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file (falls back to $CONFIG_PATH, then defaults)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	flags.StringVar(&a.pushURL, "push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	flags.BoolVar(&a.wait, "wait", false, "Keep process running after completion to allow for metric scraping")

	root.AddCommand(
		newForecastCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	// stdout carries command output, so logs go to stderr.
	a.logger = logx.NewWithWriter(cmd.ErrOrStderr(), serviceName, cfg.Log.Level)

	if a.metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			a.logger.Info(cmd.Context(), "metrics_server_started", "metrics server listening",
				slog.String("addr", a.metricsAddr))
			if err := http.ListenAndServe(a.metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error(cmd.Context(), "metrics_server_failed", err.Error())
			}
		}()
	}
	return nil
}

func (a *app) finish(cmd *cobra.Command) error {
	if a.pushURL != "" {
		if err := push.New(a.pushURL, pushJobName).Gatherer(metrics.Registry).Push(); err != nil {
			a.logger.Error(cmd.Context(), "metrics_push_failed", err.Error())
		} else {
			a.logger.Info(cmd.Context(), "metrics_pushed", "metrics successfully pushed to Pushgateway")
		}
	}

	if a.wait && a.metricsAddr != "" {
		a.logger.Info(cmd.Context(), "waiting_for_scrape", "process kept alive for metric scraping, press Ctrl+C to exit")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
	} else if a.metricsAddr != "" && a.pushURL == "" {
		// Give a scraper a moment to collect batch results.
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
