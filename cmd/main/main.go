package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sudip490/goldsilver-sub000/src/config"
	"github.com/sudip490/goldsilver-sub000/src/helpers"
	"github.com/sudip490/goldsilver-sub000/src/interfaces"
	"github.com/sudip490/goldsilver-sub000/src/logger"
	"github.com/sudip490/goldsilver-sub000/src/mailer"
	"github.com/sudip490/goldsilver-sub000/src/models"
	"github.com/sudip490/goldsilver-sub000/src/network"
	"github.com/sudip490/goldsilver-sub000/src/notify"
	"github.com/sudip490/goldsilver-sub000/src/server"
	"github.com/sudip490/goldsilver-sub000/src/service"
	"github.com/sudip490/goldsilver-sub000/src/source"
	"github.com/sudip490/goldsilver-sub000/src/source/forex"
	"github.com/sudip490/goldsilver-sub000/src/source/localmarket"
	"github.com/sudip490/goldsilver-sub000/src/source/spot"
	"github.com/sudip490/goldsilver-sub000/src/storage"
	"github.com/sudip490/goldsilver-sub000/src/subscribers"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 2. Setup Storage
	var store interfaces.IHistoryStore
	var driver string

	switch cfg.Storage.DBType {
	case "postgres":
		driver = "postgres"
		store, err = storage.NewPostgresStore(cfg.MConfig, appLogger)
	default:
		// Default to SQLite
		driver = "sqlite"
		store, err = storage.NewSQLiteStore(cfg.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init store: %v", err)
	}

	// Transient connection refusals at boot are common behind container
	// orchestration, retry before giving up.
	if _, err := helpers.RetryWithBackoff("store initialize", 3, 2*time.Second, func() (interface{}, error) {
		return nil, store.Initialize()
	}); err != nil {
		appLogger.Critical("Failed to migrate store: %v", err)
	}
	defer store.Close()

	// 3. Setup Network + Sources
	var netMgr interfaces.INetworkManager = network.NewAsyncNetworkManager(cfg.MConfig, appLogger)

	spotSrc := spot.NewSpotSource(cfg.MConfig, netMgr)
	forexSrc := forex.NewForexSource(cfg.MConfig, netMgr)
	localSrc := localmarket.NewLocalMarketSource(cfg.MConfig, netMgr)

	aggregator := source.NewAggregator(cfg.MConfig, cfg.Location, spotSrc, forexSrc, localSrc, store)

	// 4. Subscribers + Dispatch
	db := storage.RawDB(store)
	if db == nil {
		appLogger.Critical("Store exposes no database handle")
	}
	provider := subscribers.NewSQLProvider(db, driver, logger.NewLogger(cfg.LogLevel, "Subscribers"))

	var mail interfaces.IMailer = mailer.NewHTTPMailer(cfg.MConfig, netMgr, logger.NewLogger(cfg.LogLevel, "Mailer"))

	dispatcher := notify.NewDispatcher(provider, provider, mail,
		logger.NewLogger(cfg.LogLevel, "Dispatcher"), cfg.SendDelay())

	gate := notify.NewGate(store, dispatcher, logger.NewLogger(cfg.LogLevel, "Gate"),
		cfg.Notify.MinCorrectionDelta, cfg.Storage.FallbackFile)

	// 5. Orchestration + Server
	refresh := service.NewRefreshService(cfg.MConfig, cfg.Location, aggregator, store, gate,
		logger.NewLogger(cfg.LogLevel, "Refresh"))

	srv := server.NewAPIServer(cfg.MConfig, appLogger, refresh, dispatcher)
	refresh.OnUpdate = func(data *models.MLatestData) {
		srv.UpdateLatest(data)
		srv.Broadcast(data)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Initial cycle. A failed first fetch is survivable: the next trigger
	// or the ticker retries.
	appLogger.Info("Running initial fetch cycle...")
	if _, err := refresh.RunCycle(ctx); err != nil {
		appLogger.Warning("Initial cycle failed: %v", err)
	}

	// 7. Background refresh loop
	go refresh.Run(ctx)

	// 8. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	srv.Stop()
}
