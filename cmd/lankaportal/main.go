package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HerbHall/lankaportal/internal/auth"
	"github.com/HerbHall/lankaportal/internal/booking"
	"github.com/HerbHall/lankaportal/internal/catalog"
	"github.com/HerbHall/lankaportal/internal/config"
	"github.com/HerbHall/lankaportal/internal/contact"
	"github.com/HerbHall/lankaportal/internal/event"
	"github.com/HerbHall/lankaportal/internal/favorites"
	"github.com/HerbHall/lankaportal/internal/insight"
	"github.com/HerbHall/lankaportal/internal/mcp"
	"github.com/HerbHall/lankaportal/internal/metrics"
	"github.com/HerbHall/lankaportal/internal/plugin"
	"github.com/HerbHall/lankaportal/internal/server"
	"github.com/HerbHall/lankaportal/internal/store"
	"github.com/HerbHall/lankaportal/internal/version"
	"github.com/HerbHall/lankaportal/pkg/content"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "backup":
			runBackup(os.Args[2:])
			return
		case "restore":
			runRestore(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.GetString("log.level"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("lankaportal failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("LankaPortal starting", zap.String("version", version.Short()))

	db, err := store.New(cfg.GetString("database.path"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	bus := event.NewBus(logger.Named("events"))
	if broker := cfg.GetString("events.mqtt.broker"); broker != "" {
		client, err := event.DialMQTT(broker, cfg.GetString("events.mqtt.client_id"), cfg.GetDuration("events.mqtt.connect_timeout"))
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		bridge := event.NewBridge(client, event.BridgeConfig{
			Prefix: cfg.GetString("events.mqtt.prefix"),
			QoS:    byte(cfg.GetInt("events.mqtt.qos")),
			Topics: cfg.GetStringSlice("events.mqtt.topics"),
		}, logger.Named("mqtt"))
		defer bridge.Attach(bus)()
		logger.Info("forwarding events to MQTT", zap.String("broker", broker))
	}

	m := metrics.New()
	lib := content.NewLibrary()

	catalogModule := catalog.New(lib)
	authModule := auth.New()

	registry := plugin.NewRegistry(logger)
	modules := []plugin.Plugin{
		catalogModule,
		insight.New(),
		authModule,
		favorites.New(catalogModule.Engine(), authModule),
		contact.New(),
		booking.New(catalogModule.Engine()),
		mcp.New(catalogModule.Engine()),
	}
	for _, p := range modules {
		if err := registry.Register(p); err != nil {
			return fmt.Errorf("register module: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := registry.InitAll(ctx, plugin.Dependencies{
		Config:  cfg,
		Logger:  logger,
		Store:   db,
		Bus:     bus,
		Metrics: m,
	}); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}
	defer registry.StopAll()

	addr := fmt.Sprintf("%s:%d", cfg.GetString("server.host"), cfg.GetInt("server.port"))
	srv := server.New(addr, registry, m, logger)

	if cfg.GetBool("server.mdns.enabled") {
		zone, err := server.NewZone(cfg.GetString("server.mdns.instance"), cfg.GetInt("server.port"))
		if err != nil {
			return err
		}
		adv, err := server.Advertise(zone, logger.Named("mdns"))
		if err != nil {
			// LAN discovery is optional; keep serving.
			logger.Warn("mDNS advertising unavailable", zap.Error(err))
		} else {
			defer adv.Close()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	logger.Info("LankaPortal ready", zap.String("addr", addr))

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("LankaPortal stopped")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = lvl
	}
	return zcfg.Build()
}
