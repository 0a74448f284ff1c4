package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bpoc/internal/app"
	"bpoc/internal/config"
	"bpoc/internal/daily"
	"bpoc/internal/handlers"
	"bpoc/internal/jobs"
	"bpoc/internal/llm"
	_ "bpoc/internal/llm/gemini"
	_ "bpoc/internal/llm/vertex"
	"bpoc/internal/mailer"
	"bpoc/internal/notifications"
	"bpoc/internal/pdfrender"
	"bpoc/internal/prompts"
	"bpoc/internal/queue"
	"bpoc/internal/realtime"
	"bpoc/internal/repositories"
	"bpoc/internal/routers"
	"bpoc/internal/services"
	"bpoc/internal/storage"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	loadConfig     = config.LoadConfig
	openDatabase   = app.OpenPostgres
	newProvider    = llm.NewProvider
	listenAndServe = func(srv *http.Server) error { return srv.ListenAndServe() }
	exitFunc       = func(err error) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		exitFunc(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := app.NewLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := app.ConnectWithRetry(ctx, openDatabase, cfg.Database.DSN(), cfg.Database.ConnTimeout, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := app.Migrate(ctx, db, cfg.Database.AutoMigrate, logger); err != nil {
		return err
	}
	store := repositories.NewStore(db)

	hub := realtime.NewHub()
	checks := map[string]handlers.Pinger{"database": sqlDB.PingContext}

	var fanout notifications.Publisher
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		fanout = rdb
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		go realtime.NewSubscriber(rdb, cfg.Redis.Channel, hub, logger).Run(ctx)
	} else {
		logger.Warn("redis disabled, notifications will not be pushed in realtime")
	}
	notifier := notifications.NewNotifier(store.Notifications, fanout, cfg.Redis.Channel, logger)

	provider, err := newProvider(cfg.AI.Provider, cfg.AI.Settings())
	if err != nil {
		return fmt.Errorf("init AI provider: %w", err)
	}
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	var objects services.ObjectStore
	if cfg.MinIO.Enabled {
		bucket, err := storage.New(cfg.MinIO)
		if err != nil {
			return err
		}
		if err := bucket.EnsureBucket(ctx); err != nil {
			return err
		}
		objects = bucket
	}

	var renderer services.PDFRenderer
	if cfg.PDFRendererURL != "" {
		renderer = pdfrender.NewClient(cfg.PDFRendererURL, &http.Client{Timeout: 30 * time.Second})
	}

	var campaignQueue services.Publisher
	var rabbit *amqp.Connection
	if cfg.RabbitMQ.Enabled {
		rabbit, err = queue.Dial(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxTries, logger)
		if err != nil {
			return err
		}
		defer rabbit.Close()
		publisher, err := queue.NewPublisher(rabbit, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		campaignQueue = publisher
	} else {
		logger.Warn("rabbitmq disabled, campaigns are delivered inline")
	}

	video := daily.NewClient(cfg.Daily.APIKey, cfg.Daily.BaseURL, &http.Client{Timeout: 10 * time.Second})

	proposals := services.NewProposalService(store, video, notifier, logger)
	rooms := services.NewRoomService(store, video, notifier, logger)
	rooms.SetMissedCallAfter(cfg.Jobs.MissedCallAfter)
	reminders := services.NewReminderService(store, notifier, logger)
	directory := services.NewDirectoryService(store)
	pipeline := services.NewPipelineService(store)
	auth := services.NewAuthService(store, cfg.JWT.Secret, cfg.JWT.TTL)
	offers, err := services.NewOfferService(store, renderer, objects, logger)
	if err != nil {
		return err
	}
	content := services.NewContentService(store, promptManager, provider, objects, logger)
	campaigns := services.NewCampaignService(store, mailer.NewSMTP(cfg.SMTP), campaignQueue, logger)

	if rabbit != nil {
		consumer := queue.NewConsumer(rabbit, cfg.RabbitMQ.Queue, cfg.RabbitMQ.Workers, campaigns.HandleDelivery, logger)
		go func() {
			if err := consumer.Consume(ctx); err != nil && ctx.Err() == nil {
				logger.Error("campaign consumer stopped", zap.Error(err))
			}
		}()
	}

	scheduler := jobs.NewScheduler(logger)
	scheduler.Standard(jobs.Config{
		SweepSchedule:    cfg.Jobs.SweepSchedule,
		ReminderSchedule: cfg.Jobs.ReminderSchedule,
		BackfillSchedule: cfg.Jobs.BackfillSchedule,
		MaxAttempts:      cfg.AI.MaxAttempts,
	}, rooms, reminders, content)
	if err := scheduler.Start(); err != nil {
		return err
	}

	router := routers.New(routers.Handlers{
		Health:       handlers.NewHealthHandler(checks),
		Auth:         handlers.NewAuthHandler(auth, logger),
		Interview:    handlers.NewInterviewHandler(proposals, logger),
		Room:         handlers.NewRoomHandler(rooms, logger),
		Directory:    handlers.NewDirectoryHandler(directory, logger),
		Pipeline:     handlers.NewPipelineHandler(pipeline, logger),
		Offer:        handlers.NewOfferHandler(offers, logger),
		Campaign:     handlers.NewCampaignHandler(campaigns, logger),
		AI:           handlers.NewAIHandler(content, logger),
		Notification: handlers.NewNotificationHandler(notifier, hub, logger),
	}, routers.Options{JWTSecret: cfg.JWT.Secret, AllowedOrigins: cfg.AllowedOrigins})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("bpoc api starting",
			zap.String("addr", server.Addr),
			zap.String("provider", provider.GetProviderName()),
			zap.Strings("jobs", scheduler.Names()))
		serveErr <- listenAndServe(server)
	}()

	select {
	case err := <-serveErr:
		shutdownJobs(scheduler)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("bpoc api shutting down")
	shutdownJobs(scheduler)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("bpoc api exited")
	return nil
}

func shutdownJobs(scheduler *jobs.Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
}
