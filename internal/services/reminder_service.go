package services

import (
	"context"
	"fmt"
	"time"

	"bpoc/internal/models"
	"bpoc/internal/repositories"

	"go.uber.org/zap"
)

type reminderWindow struct {
	label  string
	column string
	lead   time.Duration
	// floor excludes interviews a shorter window will cover.
	floor time.Duration
}

var reminderWindows = []reminderWindow{
	{label: "24 hours", column: "reminder24h_sent_at", lead: 24 * time.Hour, floor: time.Hour},
	{label: "1 hour", column: "reminder1h_sent_at", lead: time.Hour},
}

// ReminderService notifies both sides ahead of scheduled interviews. Each
// reminder is claimed with a conditional update so overlapping runs send it
// once.
type ReminderService struct {
	store    *repositories.Store
	notifier Notifier
	logger   *zap.Logger
}

func NewReminderService(store *repositories.Store, notifier Notifier, logger *zap.Logger) *ReminderService {
	return &ReminderService{store: store, notifier: notifier, logger: logger}
}

// SendDue sends every reminder due at now and returns how many interviews
// were reminded.
func (s *ReminderService) SendDue(ctx context.Context, now time.Time) (int, error) {
	sent := 0
	for _, w := range reminderWindows {
		due, err := s.store.Interviews.ListReminderDue(ctx, now.Add(w.floor), now.Add(w.lead), w.column)
		if err != nil {
			return sent, fmt.Errorf("list %s reminders: %w", w.label, err)
		}
		for i := range due {
			interview := &due[i]
			claimed, err := s.store.Interviews.MarkReminderSent(ctx, interview.ID, w.column, now)
			if err != nil {
				s.logger.Error("claim reminder", zap.String("interviewId", interview.ID), zap.Error(err))
				continue
			}
			if !claimed {
				continue
			}
			s.remind(ctx, interview, w.label)
			sent++
		}
	}
	return sent, nil
}

func (s *ReminderService) remind(ctx context.Context, interview *models.Interview, label string) {
	app, err := s.store.Applications.GetByID(ctx, interview.ApplicationID)
	if err != nil {
		s.logger.Warn("reminder: application lookup failed", zap.String("interviewId", interview.ID), zap.Error(err))
		return
	}
	when := interview.ScheduledAt.UTC().Format("Mon 2 Jan 15:04 MST")
	message := fmt.Sprintf("Your %s starts in %s (%s).", humanize(interview.InterviewType), label, when)
	action := "/interviews/" + interview.ID

	recipients := []struct{ id, role string }{
		{app.CandidateID, models.RoleCandidate},
		{app.RecruiterID, models.RoleRecruiter},
	}
	for _, r := range recipients {
		if r.id == "" {
			continue
		}
		notifyBestEffort(ctx, s.notifier, s.logger, &models.Notification{
			RecipientID:   r.id,
			RecipientType: r.role,
			Type:          models.NotificationInterviewReminder,
			Title:         "Interview reminder",
			Message:       message,
			ActionURL:     action,
			IsUrgent:      label == "1 hour",
		})
	}
}
