package models

import "time"

const (
	NotificationInterviewProposal        = "interview_proposal"
	NotificationInterviewScheduled       = "interview_scheduled"
	NotificationInterviewCounterProposal = "interview_counter_proposal"
	NotificationInterviewRejected        = "interview_rejected"
	NotificationInterviewReminder        = "interview_reminder"
	NotificationMissedCall               = "missed_call"
	NotificationVideoCallInvitation      = "video_call_invitation"
)

type Notification struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID   string    `gorm:"type:uuid;index;not null" json:"recipientId"`
	RecipientType string    `gorm:"not null" json:"recipientType"`
	Type          string    `gorm:"not null" json:"type"`
	Title         string    `json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	ActionURL     string    `json:"actionUrl,omitempty"`
	IsUrgent      bool      `gorm:"default:false" json:"isUrgent"`
	IsRead        bool      `gorm:"default:false;index" json:"isRead"`
	CreatedAt     time.Time `json:"createdAt"`
}
