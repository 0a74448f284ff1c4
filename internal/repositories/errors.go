package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

var (
	ErrAgencyNotFound       = fmt.Errorf("agency %w", ErrNotFound)
	ErrRecruiterNotFound    = fmt.Errorf("recruiter %w", ErrNotFound)
	ErrCandidateNotFound    = fmt.Errorf("candidate %w", ErrNotFound)
	ErrProfileNotFound      = fmt.Errorf("user profile %w", ErrNotFound)
	ErrJobNotFound          = fmt.Errorf("job %w", ErrNotFound)
	ErrApplicationNotFound  = fmt.Errorf("application %w", ErrNotFound)
	ErrInterviewNotFound    = fmt.Errorf("interview %w", ErrNotFound)
	ErrProposalNotFound     = fmt.Errorf("proposal %w", ErrNotFound)
	ErrRoomNotFound         = fmt.Errorf("room %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrOfferNotFound        = fmt.Errorf("offer %w", ErrNotFound)
	ErrCampaignNotFound     = fmt.Errorf("campaign %w", ErrNotFound)
	ErrRecipientNotFound    = fmt.Errorf("recipient %w", ErrNotFound)
	ErrAIContentNotFound    = fmt.Errorf("ai content %w", ErrNotFound)
)

// ErrProposalNotPending is returned when a conditional status transition
// finds the proposal already decided.
var ErrProposalNotPending = errors.New("proposal is no longer pending")

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
