package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"secondbrain/internal/config"
	"secondbrain/internal/handler"
	"secondbrain/internal/httpserver"
	"secondbrain/internal/mqhandler"
	"secondbrain/internal/proof"
	"secondbrain/internal/repository"
	"secondbrain/internal/service"
	"secondbrain/pkg/db"
	"secondbrain/pkg/logger"
	"secondbrain/pkg/mq"
	"secondbrain/pkg/outbox"
	"secondbrain/pkg/redis"
	"secondbrain/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting secondbrain server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	// MQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Redis
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduper(rdb, 48*time.Hour, log)

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	subtaskRepo := repository.NewSubtaskRepository(dbConn, log)
	habitRepo := repository.NewHabitRepository(dbConn, log)
	recurringRepo := repository.NewRecurringRepository(dbConn, log)
	goalRepo := repository.NewGoalRepository(dbConn, log)
	activityRepo := repository.NewActivityRepository(dbConn, outboxRepo, log)

	// Services
	policy := proof.DefaultPolicy(cfg.Proof.ProductionDomain)
	taskService := service.NewTaskService(taskRepo, subtaskRepo, activityRepo, policy, log)
	habitService := service.NewHabitService(habitRepo, activityRepo, log)
	recurringService := service.NewRecurringService(recurringRepo, taskRepo, activityRepo, log)
	goalService := service.NewGoalService(goalRepo, log)

	// Outbox dispatcher
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()
	go dispatcher.Start(dispatcherCtx)

	// Consumer for generation triggers
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "recurring_generate_queue", "recurring.generate", log)
	if err != nil {
		log.Fatal("Failed to init MQ consumer", zap.Error(err))
	}
	generateHandler := mqhandler.NewRecurringGenerateHandler(recurringService, deduper, log)
	consumer.SetHandler(generateHandler.Handle)
	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Error("Consumer stopped", zap.Error(err))
		}
	}()

	// Handlers
	authHandler := handler.NewAuthHandler(cfg.Auth.JWTSecret, cfg.Auth.PasswordHash, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	habitHandler := handler.NewHabitHandler(habitService, log)
	recurringHandler := handler.NewRecurringHandler(recurringService, log)
	goalHandler := handler.NewGoalHandler(goalService, log)
	activityHandler := handler.NewActivityHandler(activityRepo, log)

	router := httpserver.NewRouter(
		authHandler,
		taskHandler,
		habitHandler,
		recurringHandler,
		goalHandler,
		activityHandler,
		cfg.Auth.JWTSecret,
		log,
		dbConn,
		consumer,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Engine,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("secondbrain server is fully initialized and running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down secondbrain server gracefully...")

	dispatcherCancel()
	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	publisher.Close()
	dbConn.Close()

	log.Info("secondbrain server shutdown complete")
}
