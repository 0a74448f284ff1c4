package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups every repository over one gorm handle so a service can run a
// unit of work against a transaction-scoped copy.
type Store struct {
	DB *gorm.DB

	Agencies      *AgencyRepository
	Recruiters    *RecruiterRepository
	Candidates    *CandidateRepository
	Profiles      *UserProfileRepository
	Jobs          *JobRepository
	Applications  *ApplicationRepository
	Interviews    *InterviewRepository
	Rooms         *RoomRepository
	Notifications *NotificationRepository
	Offers        *OfferRepository
	Campaigns     *CampaignRepository
	AIContents    *AIContentRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:            db,
		Agencies:      &AgencyRepository{DB: db},
		Recruiters:    &RecruiterRepository{DB: db},
		Candidates:    &CandidateRepository{DB: db},
		Profiles:      &UserProfileRepository{DB: db},
		Jobs:          &JobRepository{DB: db},
		Applications:  &ApplicationRepository{DB: db},
		Interviews:    &InterviewRepository{DB: db},
		Rooms:         &RoomRepository{DB: db},
		Notifications: &NotificationRepository{DB: db},
		Offers:        &OfferRepository{DB: db},
		Campaigns:     &CampaignRepository{DB: db},
		AIContents:    &AIContentRepository{DB: db},
	}
}

// Transaction runs fn against a Store bound to a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
