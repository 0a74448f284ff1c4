package models

import "time"

type OfferStatus string

const (
	OfferDraft    OfferStatus = "draft"
	OfferSent     OfferStatus = "sent"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

type Offer struct {
	Base
	ApplicationID string      `gorm:"type:uuid;index;not null" json:"applicationId"`
	TemplateKey   string      `gorm:"not null" json:"templateKey"`
	RenderedHTML  string      `gorm:"type:text" json:"renderedHtml"`
	PDFObject     *string     `json:"pdfObject,omitempty"`
	Status        OfferStatus `gorm:"default:'draft'" json:"status"`
	Salary        int         `json:"salary"`
	Currency      string      `gorm:"default:'PHP'" json:"currency"`
	StartDate     *time.Time  `json:"startDate,omitempty"`
}
