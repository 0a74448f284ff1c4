package models

type AIContentKind string

const (
	AIContentText  AIContentKind = "text"
	AIContentImage AIContentKind = "image"
)

type AIContentStatus string

const (
	AIContentPending   AIContentStatus = "pending"
	AIContentCompleted AIContentStatus = "completed"
	AIContentFailed    AIContentStatus = "failed"
)

// AIContent records one generation request and its result.
type AIContent struct {
	Base
	Kind        AIContentKind   `gorm:"not null" json:"kind"`
	SubjectType string          `gorm:"index" json:"subjectType"`
	SubjectID   string          `gorm:"index" json:"subjectId"`
	PromptKey   string          `gorm:"not null" json:"promptKey"`
	Variables   map[string]any  `gorm:"serializer:json;type:text" json:"variables,omitempty"`
	Prompt      string          `gorm:"type:text" json:"prompt"`
	Output      string          `gorm:"type:text" json:"output,omitempty"`
	ImageObject *string         `json:"imageObject,omitempty"`
	Provider    string          `json:"provider,omitempty"`
	Status      AIContentStatus `gorm:"default:'pending';index" json:"status"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `gorm:"default:0" json:"attempts"`
}

func (AIContent) TableName() string { return "ai_contents" }
