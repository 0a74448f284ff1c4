package models

import "github.com/lib/pq"

// User roles carried in JWT claims and user_profiles.role.
const (
	RoleAdmin     = "admin"
	RoleRecruiter = "recruiter"
	RoleCandidate = "candidate"
)

type Agency struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Email    string `json:"email"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	Recruiters []Recruiter `gorm:"foreignKey:AgencyID" json:"recruiters,omitempty"`
}

// Recruiter is a member of an agency (agency_recruiters table).
type Recruiter struct {
	Base
	UserID    string `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	AgencyID  string `gorm:"type:uuid;index;not null" json:"agencyId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `gorm:"default:'recruiter'" json:"role"`
}

func (Recruiter) TableName() string { return "agency_recruiters" }

func (r *Recruiter) FullName() string { return joinName(r.FirstName, r.LastName) }

// Candidate ids are the auth user ids of candidates.
type Candidate struct {
	Base
	FirstName  string         `json:"firstName"`
	LastName   string         `json:"lastName"`
	Email      string         `gorm:"index" json:"email"`
	Phone      string         `json:"phone"`
	Headline   string         `json:"headline"`
	Skills     pq.StringArray `gorm:"type:text" json:"skills"`
	ResumeURL  string         `json:"resumeUrl"`
	ResumeText string         `gorm:"type:text" json:"-"`
	AISummary  string         `gorm:"type:text" json:"aiSummary"`
	IsActive   bool           `gorm:"default:true" json:"isActive"`
}

func (c *Candidate) FullName() string { return joinName(c.FirstName, c.LastName) }

// UserProfile is the generic profile row every authenticated user has.
type UserProfile struct {
	Base
	UserID       string `gorm:"type:uuid;uniqueIndex;not null" json:"userId"`
	FullName     string `json:"fullName"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Role         string `gorm:"not null" json:"role"`
	PasswordHash string `json:"-"`
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
