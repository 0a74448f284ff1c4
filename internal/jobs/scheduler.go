package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bpoc/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	SweepJob    = "missed-call-sweep"
	ReminderJob = "interview-reminders"
	BackfillJob = "ai-backfill"
)

type MissedCallSweeper interface {
	SweepMissedCalls(ctx context.Context, now time.Time) (int, error)
}

type ReminderSender interface {
	SendDue(ctx context.Context, now time.Time) (int, error)
}

type ContentBackfiller interface {
	Backfill(ctx context.Context, maxAttempts, limit int) (int, error)
}

// Task is one scheduled unit of work. Run reports how many items it touched.
type Task struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) (int, error)
}

type Config struct {
	SweepSchedule    string
	ReminderSchedule string
	BackfillSchedule string
	MaxAttempts      int
	BackfillBatch    int
}

// Scheduler runs the background jobs on cron schedules. Overlapping runs of
// the same task are skipped.
type Scheduler struct {
	cron   *cron.Cron
	tasks  map[string]Task
	logger *zap.Logger
	now    func() time.Time
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		tasks:  map[string]Task{},
		logger: logger,
		now:    time.Now,
	}
}

// Standard registers the sweep, reminder and backfill jobs. A nil dependency
// or empty schedule leaves that job out.
func (s *Scheduler) Standard(cfg Config, sweeper MissedCallSweeper, reminders ReminderSender, content ContentBackfiller) {
	if sweeper != nil && cfg.SweepSchedule != "" {
		s.Add(Task{Name: SweepJob, Schedule: cfg.SweepSchedule, Timeout: 30 * time.Second, Run: func(ctx context.Context) (int, error) {
			return sweeper.SweepMissedCalls(ctx, s.now())
		}})
	}
	if reminders != nil && cfg.ReminderSchedule != "" {
		s.Add(Task{Name: ReminderJob, Schedule: cfg.ReminderSchedule, Timeout: 30 * time.Second, Run: func(ctx context.Context) (int, error) {
			return reminders.SendDue(ctx, s.now())
		}})
	}
	if content != nil && cfg.BackfillSchedule != "" {
		batch := cfg.BackfillBatch
		if batch <= 0 {
			batch = 20
		}
		s.Add(Task{Name: BackfillJob, Schedule: cfg.BackfillSchedule, Timeout: 5 * time.Minute, Run: func(ctx context.Context) (int, error) {
			return content.Backfill(ctx, cfg.MaxAttempts, batch)
		}})
	}
}

func (s *Scheduler) Add(task Task) {
	s.tasks[task.Name] = task
}

// Names lists the registered tasks in name order.
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start schedules every registered task and starts the cron loop.
func (s *Scheduler) Start() error {
	for _, name := range s.Names() {
		task := s.tasks[name]
		if _, err := s.cron.AddFunc(task.Schedule, func() {
			_, _ = s.execute(context.Background(), task)
		}); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", task.Name, task.Schedule, err)
		}
		s.logger.Info("job scheduled", zap.String("job", task.Name), zap.String("schedule", task.Schedule))
	}
	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("jobs still running at shutdown")
	}
}

// RunOnce executes a single task immediately, outside the schedule.
func (s *Scheduler) RunOnce(ctx context.Context, name string) (int, error) {
	task, ok := s.tasks[name]
	if !ok {
		return 0, fmt.Errorf("unknown job %q", name)
	}
	return s.execute(ctx, task)
}

func (s *Scheduler) execute(ctx context.Context, task Task) (int, error) {
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}
	started := time.Now()
	items, err := task.Run(ctx)
	metrics.ObserveJob(task.Name, items, err)
	if err != nil {
		s.logger.Error("job failed", zap.String("job", task.Name), zap.Int("items", items), zap.Error(err))
		return items, err
	}
	if items > 0 {
		s.logger.Info("job finished",
			zap.String("job", task.Name),
			zap.Int("items", items),
			zap.Duration("took", time.Since(started)))
	}
	return items, nil
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
