package testhelpers

import (
	"fmt"
	"testing"

	"bpoc/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fixture is a minimal agency/recruiter/candidate/job/application graph.
type Fixture struct {
	Agency      models.Agency
	Recruiter   models.Recruiter
	Candidate   models.Candidate
	Job         models.Job
	Application models.Application
}

// SeedApplication inserts a fresh fixture graph into db.
func SeedApplication(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()

	suffix := uuid.NewString()[:8]
	f := &Fixture{
		Agency: models.Agency{Name: "ShoreStaff", Slug: "shorestaff-" + suffix, Email: "ops@shorestaff.test", IsActive: true},
		Candidate: models.Candidate{
			FirstName: "Maria", LastName: "Santos", Email: fmt.Sprintf("maria-%s@example.com", suffix),
			Skills: []string{"customer support", "english"}, IsActive: true,
		},
	}
	mustCreate(db, &f.Agency)
	mustCreate(db, &f.Candidate)

	f.Recruiter = models.Recruiter{
		UserID: uuid.NewString(), AgencyID: f.Agency.ID,
		FirstName: "Jon", LastName: "Reyes", Email: fmt.Sprintf("jon-%s@shorestaff.test", suffix),
	}
	mustCreate(db, &f.Recruiter)

	f.Job = models.Job{AgencyID: f.Agency.ID, Title: "Customer Support Associate", Status: models.JobStatusOpen, Skills: []string{"english"}}
	mustCreate(db, &f.Job)

	f.Application = models.Application{JobID: f.Job.ID, CandidateID: f.Candidate.ID, RecruiterID: f.Recruiter.UserID, Status: "under_review"}
	mustCreate(db, &f.Application)
	return f
}

func mustCreate(db *gorm.DB, value any) {
	if err := db.Create(value).Error; err != nil {
		panic(fmt.Sprintf("failed to seed %T: %v", value, err))
	}
}
