package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/deployconf/internal/application"
	"github.com/eugenenazirov/deployconf/internal/config"
	"github.com/eugenenazirov/deployconf/internal/environment"
	"github.com/eugenenazirov/deployconf/internal/logging"
	"github.com/eugenenazirov/deployconf/internal/record"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("deployconf", "Deployment configuration resolver - computes the base URL path and configuration record for a client-only web application")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	policy := kingpinApp.Flag("policy", "Base path policy: fixed, overrideWithFallback or environmentConditional").String()
	fixedPath := kingpinApp.Flag("fixed-path", "Deployment sub-path used by the fixed and environmentConditional policies").String()
	logLevel := kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").String()

	serveCmd := kingpinApp.Command("serve", "Serve the resolved configuration over HTTP").Default()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	resolveCmd := kingpinApp.Command("resolve", "Resolve the configuration record and write it to stdout")
	format := resolveCmd.Flag("format", "Output format").Default(string(record.FormatJSON)).Enum(formatNames()...)

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		Policy:     policy,
		FixedPath:  fixedPath,
		LogLevel:   logLevel,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		kingpinApp.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case resolveCmd.FullCommand():
		if err := runResolve(os.Stdout, cfg, environment.OS(), *format); err != nil {
			logger.Fatal("failed to resolve configuration", zap.Error(err))
		}
	case serveCmd.FullCommand():
		app, err := application.New(cfg, environment.OS(), logger)
		if err != nil {
			logger.Fatal("failed to initialize application", zap.Error(err))
		}

		if err := app.Start(); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}

		shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
	}
}

func runResolve(w io.Writer, cfg config.Config, env environment.Source, rawFormat string) error {
	format, err := record.ParseFormat(rawFormat)
	if err != nil {
		return err
	}
	rec := application.ResolveRecord(cfg.Deployment, env)
	return record.Encode(w, rec, format)
}

func formatNames() []string {
	formats := record.Formats()
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	return names
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.Stringer("signal", sig))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
