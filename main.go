package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/redis/go-redis/v9"

	"lab-server/broker"
	"lab-server/confs"
	"lab-server/db"
	"lab-server/logger"
	"lab-server/repositories"
	"lab-server/server"
	"lab-server/usecases"
	"lab-server/ws"
)

const (
	resultsConsumer    = "lab-server-results"
	heartbeatsConsumer = "lab-server-heartbeats"
	screensConsumer    = "lab-server-screens"

	incidentPurgeInterval = time.Hour
)

func main() {
	// load config
	cfg, err := confs.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading config")
	}
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Debug: cfg.Debug}); err != nil {
		logger.Fatal().Err(err).Msg("Error configuring logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// connect to database Postgres
	database, err := db.Connect(cfg.StoreTimeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to DB")
	}

	commandRepo := repositories.NewCommandPgRepository(database)
	roomPcRepo := repositories.NewRoomPcPgRepository(database)
	statusRepo := repositories.NewComputerStatusPgRepository(database)
	siteRepo := repositories.NewBlockedWebsitePgRepository(database)
	appRepo := repositories.NewInstallableAppPgRepository(database)
	incidentRepo := repositories.NewIncidentPgRepository(database)

	directory := usecases.NewDirectoryUseCase(roomPcRepo, cfg.Rooms)
	pcs, err := confs.LoadRooms(cfg.RoomsFile, cfg.Rooms)
	switch {
	case err == nil:
		if err := directory.Seed(ctx, pcs); err != nil {
			logger.Fatal().Err(err).Msg("Failed to seed room directory")
		}
		logger.Info().Int("pcs", len(pcs)).Str("file", cfg.RoomsFile).Msg("room directory seeded")
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn().Str("file", cfg.RoomsFile).Msg("rooms file not found, using stored directory")
	default:
		logger.Fatal().Err(err).Msg("Failed to load rooms file")
	}

	// broker
	var (
		publisher usecases.CommandPublisher = broker.DisabledPublisher{}
		control   usecases.ControlPublisher = broker.DisabledPublisher{}
		nc        *nats.Conn
		js        jetstream.JetStream
	)
	if cfg.BrokerEnabled {
		nc, js, err = broker.Connect(ctx, cfg.NatsURL, cfg.NatsStream)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer func() { _ = nc.Drain() }()
		jsPublisher := broker.NewJetStreamPublisher(js)
		publisher = jsPublisher
		control = jsPublisher
	} else {
		logger.Warn().Msg("broker disabled, commands will be recorded as FAILED")
	}

	// observer feeds
	hub := ws.NewHub("status")
	screens := ws.NewHub("screens")
	var (
		feed   usecases.StatusFeed = hub
		frames usecases.FrameFeed  = screens
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		statusRelay := ws.NewRedisRelay(rdb, hub, ws.StatusChannel)
		screensRelay := ws.NewRedisRelay(rdb, screens, ws.ScreensChannel)
		go statusRelay.Run(ctx)
		go screensRelay.Run(ctx)
		feed, frames = statusRelay, screensRelay
	}

	commands := usecases.NewCommandsUseCase(commandRepo, directory, publisher, cfg.PublishTimeout)
	reconciler := usecases.NewReconciler(commands, statusRepo, directory, feed)
	apps := usecases.NewInstallableAppsUseCase(appRepo, commands)
	incidents := usecases.NewIncidentsUseCase(incidentRepo)
	go incidents.RunPurger(ctx, incidentPurgeInterval)

	if cfg.BrokerEnabled {
		startConsumer(ctx, js, cfg.NatsStream, resultsConsumer, broker.SubjectResults, reconciler.HandleCommandResult)
		startConsumer(ctx, js, cfg.NatsStream, heartbeatsConsumer, broker.SubjectStatus, reconciler.HandleHeartbeat)
		startConsumer(ctx, js, cfg.NatsStream, screensConsumer, broker.SubjectScreens, usecases.NewScreenRelay(frames).HandleFrame)
	}

	// run server
	srv := server.NewServer(cfg.HTTPAddr, server.Deps{
		Commands:        commands,
		Directory:       directory,
		BlockedWebsites: usecases.NewBlockedWebsitesUseCase(siteRepo, commands, directory),
		InstallableApps: apps,
		Dashboard:       usecases.NewDashboardUseCase(directory, statusRepo, siteRepo, commandRepo),
		Incidents:       incidents,
		ExamControl:     usecases.NewExamControlUseCase(control, cfg.PublishTimeout),
		Hub:             hub,
		Screens:         screens,
	})
	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func startConsumer(ctx context.Context, js jetstream.JetStream, stream, name, subject string, handle broker.Handler) {
	consumer, err := broker.NewConsumer(ctx, js, stream, name, subject)
	if err != nil {
		logger.Fatal().Err(err).Str("subject", subject).Msg("Failed to start consumer")
	}
	go consumer.Run(ctx, handle)
}
