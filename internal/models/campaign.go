package models

import "time"

type CampaignStatus string

const (
	CampaignDraft   CampaignStatus = "draft"
	CampaignSending CampaignStatus = "sending"
	CampaignSent    CampaignStatus = "sent"
	CampaignFailed  CampaignStatus = "failed"
)

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

type EmailCampaign struct {
	Base
	Name            string         `gorm:"not null" json:"name"`
	SubjectTemplate string         `gorm:"not null" json:"subjectTemplate"`
	BodyTemplate    string         `gorm:"type:text;not null" json:"bodyTemplate"`
	Status          CampaignStatus `gorm:"default:'draft'" json:"status"`
	CreatedBy       string         `gorm:"type:uuid" json:"createdBy"`

	Recipients []EmailRecipient `gorm:"foreignKey:CampaignID" json:"recipients,omitempty"`
}

type EmailRecipient struct {
	Base
	CampaignID string            `gorm:"type:uuid;index;not null" json:"campaignId"`
	Email      string            `gorm:"not null" json:"email"`
	Tokens     map[string]string `gorm:"serializer:json;type:text" json:"tokens"`
	Status     RecipientStatus   `gorm:"default:'pending';index" json:"status"`
	Error      string            `json:"error,omitempty"`
	SentAt     *time.Time        `json:"sentAt,omitempty"`
}
