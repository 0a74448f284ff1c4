package models

import "time"

type RoomStatus string

const (
	RoomCreated RoomStatus = "created"
	RoomWaiting RoomStatus = "waiting"
	RoomActive  RoomStatus = "active"
	RoomEnded   RoomStatus = "ended"
	RoomFailed  RoomStatus = "failed"
)

// Live reports whether the provider room may still have people in it.
func (s RoomStatus) Live() bool {
	return s == RoomCreated || s == RoomWaiting || s == RoomActive
}

// CanTransition reports whether a room may move from s to next. Rooms move
// forward through created, waiting, active and ended; failed is reachable
// from any live state. Ended and failed are final.
func (s RoomStatus) CanTransition(next RoomStatus) bool {
	if s == next {
		return true
	}
	if !s.Live() {
		return false
	}
	if next == RoomFailed {
		return true
	}
	return roomStatusRank[next] > roomStatusRank[s]
}

var roomStatusRank = map[RoomStatus]int{RoomCreated: 0, RoomWaiting: 1, RoomActive: 2, RoomEnded: 3}

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomCreated, RoomWaiting, RoomActive, RoomEnded, RoomFailed:
		return true
	}
	return false
}

type VideoCallRoom struct {
	Base
	HostUserID        string     `gorm:"type:uuid;index;not null" json:"hostUserId"`
	ParticipantUserID string     `gorm:"type:uuid;index;not null" json:"participantUserId"`
	AgencyID          *string    `gorm:"type:uuid;index" json:"agencyId,omitempty"`
	InterviewID       *string    `gorm:"type:uuid;index" json:"interviewId,omitempty"`
	DailyRoomName     string     `gorm:"uniqueIndex;not null" json:"dailyRoomName"`
	DailyRoomURL      string     `json:"dailyRoomUrl"`
	CallType          string     `json:"callType"`
	Title             string     `json:"title"`
	Status            RoomStatus `gorm:"default:'created';index" json:"status"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	EndedAt           *time.Time `json:"endedAt,omitempty"`
	DurationSeconds   *int       `json:"durationSeconds,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	Rating            *int       `json:"rating,omitempty"`
	Outcome           *string    `json:"outcome,omitempty"`
}

type ParticipantRole string

const (
	ParticipantHost      ParticipantRole = "host"
	ParticipantCandidate ParticipantRole = "candidate"
)

type VideoCallParticipant struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID          string          `gorm:"type:uuid;index;not null" json:"roomId"`
	UserID          string          `gorm:"type:uuid;not null" json:"userId"`
	Name            string          `json:"name"`
	Role            ParticipantRole `gorm:"not null" json:"role"`
	Status          string          `gorm:"default:'joined'" json:"status"`
	JoinedAt        *time.Time      `json:"joinedAt,omitempty"`
	LeftAt          *time.Time      `json:"leftAt,omitempty"`
	DurationSeconds *int            `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationDeclined  InvitationStatus = "declined"
	InvitationCancelled InvitationStatus = "cancelled"
	InvitationExpired   InvitationStatus = "expired"
)

type VideoCallInvitation struct {
	Base
	RoomID    string           `gorm:"type:uuid;index;not null" json:"roomId"`
	InviterID string           `gorm:"type:uuid;not null" json:"inviterId"`
	InviteeID string           `gorm:"type:uuid;index;not null" json:"inviteeId"`
	Status    InvitationStatus `gorm:"default:'pending';index" json:"status"`
}
