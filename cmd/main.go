package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/HovhannisyanAlbert/chatServer/config"
	"github.com/HovhannisyanAlbert/chatServer/internal/media"
	"github.com/HovhannisyanAlbert/chatServer/internal/postgres"
	"github.com/HovhannisyanAlbert/chatServer/internal/service"
	grpcx "github.com/HovhannisyanAlbert/chatServer/internal/transport/grpc"
	httpx "github.com/HovhannisyanAlbert/chatServer/internal/transport/http"
	"github.com/HovhannisyanAlbert/chatServer/internal/transport/ws"
	"github.com/HovhannisyanAlbert/chatServer/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-server",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db.Pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// --- media ---
	mediaStore, err := media.NewStore(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		log.Fatalf("media: %v", err)
	}

	// --- repos ---
	userRepo := postgres.NewUserRepository(db.Pool)
	roomRepo := postgres.NewRoomRepository(db.Pool)
	msgRepo := postgres.NewMessageRepository(db.Pool)

	// --- services ---
	userSvc := service.NewUserService(userRepo, mediaStore)
	roomSvc := service.NewRoomService(roomRepo)
	msgSvc := service.NewMessageService(msgRepo)
	historySvc := service.NewHistoryService(roomRepo, msgRepo, mediaStore)

	// --- WS hub, optional redis relay ---
	hub := ws.NewHub()
	var relay *ws.Bus
	if cfg.Redis.Addr != "" {
		relay, err = ws.NewBus(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer relay.Close()
		go relay.Run(ctx, hub)
		slog.Info("broadcast relay enabled", "addr", cfg.Redis.Addr)
	}
	wsServer := ws.NewServer(hub, relay, roomSvc, userSvc, msgSvc, historySvc)

	// --- HTTP ---
	handler := httpx.NewHandler(userSvc, roomSvc, historySvc)
	router := httpx.NewRouter(handler, wsServer, cfg.Media.Dir)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- gRPC health ---
	grpcServer, healthSrv := grpcx.NewHealthServer(cfg.Logging.Service)

	// --- run servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if cfg.GRPC.Addr != "" {
		go func() {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr)
			if err != nil {
				errCh <- err
				return
			}
			slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	healthSrv.Shutdown()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
