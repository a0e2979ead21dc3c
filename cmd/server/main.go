package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-notifier/config"
	"sales-notifier/internal/api"
	"sales-notifier/internal/broker"
	"sales-notifier/internal/messenger"
	"sales-notifier/internal/redisclient"
	"sales-notifier/internal/service"
	"sales-notifier/internal/store"
	"sales-notifier/internal/util"
	"sales-notifier/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting sales notifier")

	tp, err := util.InitTracer("sales-notifier", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	tables := store.TableNames{
		LedgerSales: cfg.Ingest.LedgerSalesTable,
		Sales:       cfg.Ingest.SalesTable,
		Payments:    cfg.Ingest.PaymentsTable,
	}

	db, err := store.NewStore(cfg.Database.URL, tables)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotification)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	gateway := messenger.NewClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.Token,
		cfg.Gateway.CountryCode,
		cfg.Gateway.DomainSuffix,
	)

	cursors := service.NewCursorStore(redisClient)
	cursors.Load(context.Background())

	composer := service.NewComposer(cfg.Business.Name)
	dedup := service.NewDedupWindow(service.DefaultDedupRetention)
	balances := service.NewBalanceService(db)
	notifier := service.NewNotifier(db, balances, composer, dedup, cursors, gateway, eventPublisher)
	reminders := service.NewReminderService(db, balances, composer, gateway, eventPublisher)

	logger.Info("Watching tables",
		zap.String("ledger_sales", cfg.Ingest.LedgerSalesTable),
		zap.String("sales", cfg.Ingest.SalesTable),
		zap.String("payments", cfg.Ingest.PaymentsTable))

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	ingest := worker.NewIngestWorker(cfg.Ingest, cfg.Database.URL, db, notifier, cursors)
	if err := ingest.Start(workerCtx); err != nil {
		log.Fatalf("Failed to start ingest worker: %v", err)
	}

	location, err := time.LoadLocation(cfg.Reminder.Timezone)
	if err != nil {
		log.Fatalf("Invalid reminder timezone %q: %v", cfg.Reminder.Timezone, err)
	}

	scheduler := cron.New(cron.WithLocation(location))
	_, err = scheduler.AddFunc(cfg.Reminder.CronSpec, func() {
		log.Println("Running scheduled debt reminders")
		if _, err := reminders.SendDebtReminders(context.Background()); err != nil {
			log.Printf("Reminder run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Invalid reminder cron spec %q: %v", cfg.Reminder.CronSpec, err)
	}
	scheduler.Start()
	log.Printf("Reminder schedule active: %s (%s)", cfg.Reminder.CronSpec, cfg.Reminder.Timezone)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(balances, reminders, ingest)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	workerCancel()
	if err := ingest.Stop(); err != nil {
		log.Printf("Error stopping ingest worker: %v", err)
	}

	log.Println("Server exited")
}
