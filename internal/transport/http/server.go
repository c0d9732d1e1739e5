package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sociable/internal/config"
	"sociable/internal/database"
	"sociable/internal/handler"
	redisclient "sociable/internal/redis"
	"sociable/internal/repository"
	"sociable/internal/schedule"
	"sociable/internal/service"
	"sociable/internal/worker"
)

// Run wires the whole application together and serves until interrupted.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Services
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	scheduleQueue := schedule.NewQueue(redisClient.Client)

	authService := service.NewAuthService(refreshTokenRepo, cfg)
	accountService := service.NewAccountService(accountRepo, authService)
	profileService := service.NewProfileService(profileRepo, mediaService)
	postService := service.NewPostService(postRepo, profileRepo, scheduleQueue, mediaService)
	commentService := service.NewCommentService(commentRepo, postRepo, profileRepo)
	messageService := service.NewMessageService(messageRepo, profileRepo)

	// Deferred-publication worker, plus the refresh-token sweep
	workerHandler := worker.NewHandler(postRepo, scheduleQueue)
	workerManager := worker.NewManager(workerHandler, refreshTokenRepo, worker.DefaultManagerConfig())
	workerManager.Start(ctx)
	defer workerManager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(accountService, authService),
		ProfileHandler: handler.NewProfileHandler(profileService),
		PostHandler:    handler.NewPostHandler(postService, mediaService),
		CommentHandler: handler.NewCommentHandler(commentService),
		MessageHandler: handler.NewMessageHandler(messageService),
		JWTSecret:      cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Printf("[Server] Received %s, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Printf("[Server] Shutdown complete")
	return nil
}
