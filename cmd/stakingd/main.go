package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"stakeplatform/config"
	"stakeplatform/core/events"
	"stakeplatform/core/events/archive"
	"stakeplatform/core/genesis"
	"stakeplatform/core/state"
	"stakeplatform/native/staking"
	"stakeplatform/native/token"
	"stakeplatform/observability/logging"
	"stakeplatform/observability/metrics"
	telemetry "stakeplatform/observability/otel"
	"stakeplatform/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("stakingd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./stakingd.toml", "path to stakingd configuration")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	env := strings.TrimSpace(os.Getenv("STAKING_ENV"))
	if env == "" {
		env = cfg.LogEnv
	}
	logger := logging.Setup("stakingd", env, cfg.LogFile)

	if err := config.RequireOwner(cfg.Staking); err != nil {
		return fmt.Errorf("config %s: %w", cfgPath, err)
	}

	insecure := true
	if value := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			insecure = parsed
		}
	}
	traceCfg := telemetry.Config{
		ServiceName: "stakingd",
		Environment: env,
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    insecure,
		Headers:     telemetry.ParseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
	}
	shutdownTelemetry, err := telemetry.Init(context.Background(), traceCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()
	if traceCfg.Endpoint != "" {
		logger.Info("tracing enabled", tracingAttrs(traceCfg)...)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "state"))
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer db.Close()
	stateMgr := state.NewManager(db)

	assets := token.NewRegistry()
	if strings.TrimSpace(cfg.GenesisFile) != "" {
		spec, err := genesis.LoadGenesisSpec(cfg.GenesisFile)
		if err != nil {
			return err
		}
		if assets, err = genesis.BuildRegistry(spec); err != nil {
			return fmt.Errorf("apply genesis: %w", err)
		}
	}

	eventLog := events.NewLog()
	emitters := []events.Emitter{eventLog}
	if dsn := strings.TrimSpace(cfg.ArchiveDSN); dsn != "" {
		store, err := archive.Open(dsn)
		if err != nil {
			return fmt.Errorf("open event archive: %w", err)
		}
		defer store.Close()
		store.SetLogger(logger)
		emitters = append(emitters, store)
		logger.Info("event archive enabled", slog.String("dsn", logging.RedactDSN(dsn)))
	}

	engine := staking.NewEngine()
	engine.SetLogger(logger)
	engine.SetState(stateMgr)
	engine.SetAssets(assets)
	engine.SetCustody(cfg.Staking.CustodyAddress())
	engine.SetEmitter(events.Multi(emitters...))
	if err := engine.Initialize(cfg.Staking.GlobalConfig()); err != nil {
		return fmt.Errorf("initialise staking: %w", err)
	}
	total, err := stateMgr.StakingTotalStaked()
	if err != nil {
		return fmt.Errorf("load staked total: %w", err)
	}
	metrics.Staking().SetTotalStaked(total)

	httpServer := &http.Server{
		Addr:              cfg.MetricsAddress,
		Handler:           telemetry.Middleware(newRouter(engine, eventLog, newClientLimiter(cfg.HTTPRequestsPerMinute, cfg.HTTPBurst)), "stakingd"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("stakingd listening", slog.String("addr", cfg.MetricsAddress))
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case <-stopCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			_ = httpServer.Close()
			return err
		}
		return nil
	case err := <-errs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// tracingAttrs describes the exporter for the startup log. Header values
// usually carry collector credentials and are masked.
func tracingAttrs(cfg telemetry.Config) []any {
	attrs := []any{
		slog.String("endpoint", cfg.Endpoint),
		slog.Bool("insecure", cfg.Insecure),
	}
	keys := make([]string, 0, len(cfg.Headers))
	for key := range cfg.Headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attrs = append(attrs, logging.MaskField("header_"+key, cfg.Headers[key]))
	}
	return attrs
}
