package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/escrowd/internal/config"
	"github.com/tdex-network/escrowd/internal/core/application/escrow"
	"github.com/tdex-network/escrowd/internal/core/application/pubsub"
	"github.com/tdex-network/escrowd/internal/core/ports"
	"github.com/tdex-network/escrowd/internal/infrastructure/auth"
	pubsubinfra "github.com/tdex-network/escrowd/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/escrowd/internal/infrastructure/storage/db/badger"
	localtransfer "github.com/tdex-network/escrowd/internal/infrastructure/transfer/local"
	remotetransfer "github.com/tdex-network/escrowd/internal/infrastructure/transfer/remote"
	httpinterface "github.com/tdex-network/escrowd/internal/interfaces/http"
	"github.com/tdex-network/escrowd/pkg/stats"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	logFile := &lumberjack.Logger{
		Filename:   config.GetLogFile(),
		MaxSize:    config.GetInt(config.LogMaxSizeKey),
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	defer logFile.Close()

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	dbDir := config.GetDbDir()
	dbLogger := log.WithField("component", "badger")

	repoManager, err := dbbadger.NewRepoManager(dbDir, dbLogger)
	if err != nil {
		log.WithError(err).Fatal("failed to open ledger store")
	}
	defer repoManager.Close()

	var transfer ports.ValueTransfer
	var ledger httpinterface.Ledger
	switch config.GetString(config.TransferTypeKey) {
	case config.TransferTypeRemote:
		transfer, err = remotetransfer.NewService(
			config.GetString(config.TransferEndpointKey),
			config.GetInt(config.TransferRateLimitKey),
		)
		if err != nil {
			log.WithError(err).Fatal("failed to init remote transfer service")
		}
	default:
		localLedger, err := localtransfer.NewService(repoManager)
		if err != nil {
			log.WithError(err).Fatal("failed to init local transfer service")
		}
		transfer = localLedger
		if config.GetBool(config.EnableDevLedgerKey) {
			log.Warn("dev ledger endpoints enabled, do not use in production")
			ledger = localLedger
		}
	}

	authorizer, err := auth.NewAuthorizer(repoManager.NonceRepository())
	if err != nil {
		log.WithError(err).Fatal("failed to init authorizer")
	}

	escrowSvc, err := escrow.NewService(
		repoManager, transfer, authorizer,
		config.GetString(config.EscrowAccountKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init escrow service")
	}

	pubsubInfra, err := pubsubinfra.NewService(dbDir, dbLogger)
	if err != nil {
		log.WithError(err).Fatal("failed to open pubsub store")
	}
	pubsubSvc, err := pubsub.NewService(
		pubsubInfra, repoManager,
		config.GetDuration(config.WebhookPollIntervalKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init event dispatcher")
	}
	defer pubsubSvc.Close()

	server, err := httpinterface.NewServer(
		config.GetInt(config.ListeningPortKey), escrowSvc, pubsubSvc, ledger,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init http server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.GetBool(config.EnableProfilerKey) {
		stats.EnableMemoryStatistics(
			ctx, config.GetDuration(config.StatsIntervalKey),
			config.GetProfilerDir(),
		)
	}

	pubsubSvc.Start()
	if err := server.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http server")
	}

	log.WithFields(log.Fields{
		"transfer": config.GetString(config.TransferTypeKey),
		"custody":  escrowSvc.CustodyAccount(),
	}).Info("escrow daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("error while stopping http server")
	}

	log.Info("shutdown")
}
