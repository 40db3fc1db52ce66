package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"buzzergo/internal/archive"
	"buzzergo/internal/common/clock"
	"buzzergo/internal/common/uuid"
	"buzzergo/internal/config"
	"buzzergo/internal/database/db_client"
	"buzzergo/internal/http/http_server"
	"buzzergo/internal/http/roomhandler"
	"buzzergo/internal/reaper"
	"buzzergo/internal/redis/redis_client"
	"buzzergo/internal/services/buzzer"
	"buzzergo/internal/ws"

	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. WebSockets hub, optionally fanned out through Redis
	hub := ws.NewHub()
	if cfg.RedisEnabled {
		redisClient, err := redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
		if err != nil {
			Log.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		Log.Debug("Redis client created successfully")

		hub = ws.NewRedisHub(redisClient)
		go hub.Run(ctx)
	}

	// 4. Round archive in Postgres
	var background sync.WaitGroup
	var archiver buzzer.Archiver
	var history roomhandler.RoundHistory
	if cfg.PostgresEnabled {
		pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
		if err != nil {
			Log.Fatal("pg-open", zap.Error(err))
		}
		defer pgDb.Close()

		store := archive.NewStore(pgDb)
		if err := store.EnsureSchema(ctx); err != nil {
			Log.Fatal("pg-schema", zap.Error(err))
		}
		worker := archive.NewWorker(store)
		background.Add(1)
		go func() {
			defer background.Done()
			worker.Run(ctx)
		}()
		archiver, history = worker, store
	}

	// 5. Room engine
	engine, err := buzzer.NewEngine(&buzzer.Config{
		Registry: buzzer.NewRegistry(
			buzzer.NewCodeGenerator(buzzer.DefaultAlphabet, cfg.RoomCodeLength, nil),
			&clock.DefaultClock{},
		),
		Channel:  hub,
		Archiver: archiver,
		Mode:     buzzer.BuzzMode(cfg.BuzzMode),
	})
	if err != nil {
		Log.Fatal("engine-init", zap.Error(err))
	}

	// 6. Background: idle room reaper
	if cfg.RoomIdleTTL > 0 {
		reaper.Run(ctx, engine, cfg.ReaperInterval, cfg.RoomIdleTTL)
	}

	// 7. Initialize the WS server
	wsSrv := ws.NewWsServer(hub, engine, uuid.New(), cfg.AllowedOrigins)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, roomhandler.New(engine, history))
	go func() {
		<-ctx.Done()
		_ = httpServer.Dispose()
	}()
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
	// let the archive flush what it still holds
	background.Wait()
	Log.Info("shutdown complete")
}
