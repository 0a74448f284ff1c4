package models

import (
	"fmt"
	"strings"
	"time"
)

type InterviewStatus string

const (
	InterviewUnscheduled InterviewStatus = "unscheduled"
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

type ResponseStatus string

const (
	ResponseAccepted        ResponseStatus = "accepted"
	ResponseCounterProposed ResponseStatus = "counter_proposed"
	ResponseRejected        ResponseStatus = "rejected"
)

// TimeSlot is a candidate-facing {date, time} pair. Date may already carry the
// time component ("2025-06-02T09:00"), in which case Time is informational.
type TimeSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

var slotLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Instant resolves the slot to an absolute UTC time.
func (s TimeSlot) Instant() (time.Time, error) {
	raw := strings.TrimSpace(s.Date)
	if raw == "" {
		return time.Time{}, fmt.Errorf("slot date is required")
	}
	if !strings.Contains(raw, "T") {
		t := strings.TrimSpace(s.Time)
		if t == "" {
			return time.Time{}, fmt.Errorf("slot time is required for date %q", raw)
		}
		raw = raw + "T" + t
	}
	for _, layout := range slotLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable slot %q", raw)
}

type Interview struct {
	Base
	ApplicationID   string          `gorm:"type:uuid;index;not null" json:"applicationId"`
	InterviewType   string          `gorm:"not null" json:"interviewType"`
	DurationMinutes int             `gorm:"default:30" json:"durationMinutes"`
	Status          InterviewStatus `gorm:"default:'unscheduled';index" json:"status"`
	ScheduledAt     *time.Time      `json:"scheduledAt,omitempty"`
	DailyRoomName   *string         `json:"dailyRoomName,omitempty"`
	DailyRoomURL    *string         `json:"dailyRoomUrl,omitempty"`

	Reminder24hSentAt *time.Time `gorm:"column:reminder24h_sent_at" json:"-"`
	Reminder1hSentAt  *time.Time `gorm:"column:reminder1h_sent_at" json:"-"`
}

type InterviewProposal struct {
	Base
	InterviewID   string         `gorm:"type:uuid;index;not null" json:"interviewId"`
	ProposedBy    string         `gorm:"type:uuid;not null" json:"proposedBy"`
	ProposedTimes []TimeSlot     `gorm:"serializer:json;type:text;not null" json:"proposedTimes"`
	Notes         string         `json:"notes"`
	Status        ProposalStatus `gorm:"default:'pending';index" json:"status"`
}

// TimeProposalResponse rows are append-only.
type TimeProposalResponse struct {
	ID               string         `gorm:"type:uuid;primaryKey" json:"id"`
	ProposalID       string         `gorm:"type:uuid;index;not null" json:"proposalId"`
	ResponderID      string         `gorm:"type:uuid;not null" json:"responderId"`
	Status           ResponseStatus `gorm:"not null" json:"status"`
	AcceptedTime     *TimeSlot      `gorm:"serializer:json;type:text" json:"acceptedTime,omitempty"`
	AlternativeTimes []TimeSlot     `gorm:"serializer:json;type:text" json:"alternativeTimes,omitempty"`
	ResponseNotes    string         `json:"responseNotes"`
	CreatedAt        time.Time      `json:"createdAt"`
}
