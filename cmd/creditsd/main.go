// creditsd is the GPU credits monitor sidecar.
//
// It detects the active GPU tier once at startup, then serves the credit
// ledger and hardware info over HTTP for the host UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/modalwatch/credits-monitor/internal/config"
	"github.com/modalwatch/credits-monitor/internal/httpapi"
	"github.com/modalwatch/credits-monitor/internal/identity"
	"github.com/modalwatch/credits-monitor/internal/ledger"
	"github.com/modalwatch/credits-monitor/internal/monitoring"
	"github.com/modalwatch/credits-monitor/internal/probe"
	"github.com/modalwatch/credits-monitor/internal/rates"
	"github.com/modalwatch/credits-monitor/internal/store"
)

func main() {
	configPath := flag.String("config", "creditsd.yaml", "path to YAML config")
	flag.Parse()

	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config '%s': %v\n", *configPath, err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	st, err := store.New(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}

	var prober probe.Prober
	if cfg.Probe.Disabled {
		prober = probe.Static{
			GPUReport:      probe.Report{Name: probe.UnknownGPUName, Tier: rates.TierUnknown},
			ResourceReport: probe.Resources{CPUCores: probe.DefaultCPUCores, MemoryGB: probe.DefaultMemoryGB},
		}
	} else {
		prober = probe.NewSMIProber(cfg.Probe.Timeout.Std(), nil)
	}

	// The tier is fixed once at startup; /modal_credits/gpu_override can
	// swap it at runtime.
	rep := prober.GPU(context.Background())
	log.Info().
		Str("gpu", rep.Name).
		Str("tier", string(rep.Tier)).
		Float64("rate_per_hour", rates.RateFor(rep.Tier)).
		Bool("detected", rep.Success).
		Msg("hardware probe complete")

	led := ledger.New(st, identity.ModalSource{}, rep.Tier, ledger.Options{
		DefaultInitial: cfg.Ledger.DefaultInitial,
		SaveInterval:   cfg.Ledger.SaveInterval.Std(),
	})

	api := httpapi.New(led, prober, st, monitoring.NewMetricsCollector())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("credits monitor listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigs
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
