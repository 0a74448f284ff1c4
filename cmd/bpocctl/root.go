package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"bpoc/internal/app"
	"bpoc/internal/config"
	"bpoc/internal/daily"
	"bpoc/internal/jobs"
	"bpoc/internal/llm"
	_ "bpoc/internal/llm/gemini"
	_ "bpoc/internal/llm/vertex"
	"bpoc/internal/notifications"
	"bpoc/internal/prompts"
	"bpoc/internal/repositories"
	"bpoc/internal/services"
	"bpoc/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env holds the process dependencies so tests can swap them.
type env struct {
	loadConfig  func() (*config.Config, error)
	openDB      func(dsn string) (*gorm.DB, error)
	newProvider func(name string, settings llm.Settings) (llm.Provider, error)
	now         func() time.Time
	out         io.Writer
}

func defaultEnv() *env {
	return &env{
		loadConfig:  config.LoadConfig,
		openDB:      app.OpenPostgres,
		newProvider: llm.NewProvider,
		now:         time.Now,
		out:         os.Stdout,
	}
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "bpocctl",
		Short:         "bpoc maintenance and data tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(e.out)
	root.AddCommand(
		jobsCmd(e),
		sweepCmd(e),
		backfillCmd(e),
		mergeCSVCmd(),
		exportCandidatesCmd(e),
	)
	return root
}

// session is an open database plus the config and logger it was opened with.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *repositories.Store
	close  func()
}

func (e *env) open(ctx context.Context) (*session, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := app.NewLogger(cfg.Env)
	if err != nil {
		return nil, err
	}
	db, err := app.ConnectWithRetry(ctx, e.openDB, cfg.Database.DSN(), cfg.Database.ConnTimeout, logger)
	if err != nil {
		return nil, err
	}
	if err := app.Migrate(ctx, db, cfg.Database.AutoMigrate, logger); err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		logger: logger,
		store:  repositories.NewStore(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
			_ = logger.Sync()
		},
	}, nil
}

// scheduler registers the jobs that name needs. Only the backfill job builds
// an AI provider, so sweeps run without AI credentials.
func (e *env) scheduler(ctx context.Context, s *session, name string) (*jobs.Scheduler, error) {
	notifier := notifications.NewNotifier(s.store.Notifications, nil, s.cfg.Redis.Channel, s.logger)
	video := daily.NewClient(s.cfg.Daily.APIKey, s.cfg.Daily.BaseURL, &http.Client{Timeout: 10 * time.Second})

	rooms := services.NewRoomService(s.store, video, notifier, s.logger)
	rooms.SetMissedCallAfter(s.cfg.Jobs.MissedCallAfter)
	reminders := services.NewReminderService(s.store, notifier, s.logger)

	cfg := jobs.Config{
		SweepSchedule:    s.cfg.Jobs.SweepSchedule,
		ReminderSchedule: s.cfg.Jobs.ReminderSchedule,
		MaxAttempts:      s.cfg.AI.MaxAttempts,
	}
	var content jobs.ContentBackfiller
	if name == jobs.BackfillJob {
		svc, err := e.contentService(ctx, s)
		if err != nil {
			return nil, err
		}
		content = svc
		cfg.BackfillSchedule = s.cfg.Jobs.BackfillSchedule
	}

	sched := jobs.NewScheduler(s.logger)
	sched.Standard(cfg, rooms, reminders, content)
	return sched, nil
}

func (e *env) contentService(ctx context.Context, s *session) (*services.ContentService, error) {
	provider, err := e.newProvider(s.cfg.AI.Provider, s.cfg.AI.Settings())
	if err != nil {
		return nil, fmt.Errorf("init AI provider: %w", err)
	}
	pm, err := prompts.NewPromptManager()
	if err != nil {
		return nil, err
	}
	var objects services.ObjectStore
	if s.cfg.MinIO.Enabled {
		bucket, err := storage.New(s.cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := bucket.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		objects = bucket
	}
	return services.NewContentService(s.store, pm, provider, objects, s.logger), nil
}
