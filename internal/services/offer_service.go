package services

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bpoc/internal/models"
	"bpoc/internal/repositories"
	"bpoc/internal/templating"

	"go.uber.org/zap"
)

//go:embed offer_templates/*.html
var offerTemplateFS embed.FS

// PDFRenderer converts rendered HTML into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// ObjectStore keeps generated files.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type CreateOfferInput struct {
	ApplicationID string
	TemplateKey   string
	Salary        int
	Currency      string
	StartDate     *time.Time
	// Extra supplies values for template-specific placeholders.
	Extra     map[string]string
	RenderPDF bool
}

type OfferResult struct {
	Offer               *models.Offer `json:"offer"`
	MissingPlaceholders []string      `json:"missingPlaceholders,omitempty"`
	PDFError            string        `json:"pdfError,omitempty"`
}

type OfferService struct {
	store     *repositories.Store
	renderer  PDFRenderer
	objects   ObjectStore
	logger    *zap.Logger
	templates map[string]string
	now       Clock
}

// NewOfferService loads the embedded templates. renderer and objects may be
// nil, in which case PDFs are not produced.
func NewOfferService(store *repositories.Store, renderer PDFRenderer, objects ObjectStore, logger *zap.Logger) (*OfferService, error) {
	entries, err := offerTemplateFS.ReadDir("offer_templates")
	if err != nil {
		return nil, fmt.Errorf("read offer templates: %w", err)
	}
	templates := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := offerTemplateFS.ReadFile("offer_templates/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read offer template %s: %w", e.Name(), err)
		}
		templates[strings.TrimSuffix(e.Name(), ".html")] = string(data)
	}
	return &OfferService{
		store:     store,
		renderer:  renderer,
		objects:   objects,
		logger:    logger,
		templates: templates,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Templates lists the available template keys with their placeholders.
func (s *OfferService) Templates() map[string][]string {
	out := make(map[string][]string, len(s.templates))
	for k, body := range s.templates {
		out[k] = templating.Placeholders(body)
	}
	return out
}

// Create renders an offer letter for an application. Placeholders without a
// value stay in the letter and are reported back. PDF failures are reported,
// not returned.
func (s *OfferService) Create(ctx context.Context, caller Caller, in CreateOfferInput) (*OfferResult, error) {
	body, ok := s.templates[in.TemplateKey]
	if !ok {
		return nil, validationf("unknown template %q", in.TemplateKey)
	}
	if in.Salary <= 0 {
		return nil, validationf("salary must be positive")
	}

	app, job, err := s.authorizeApplication(ctx, caller, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.store.Candidates.GetByID(ctx, app.CandidateID)
	if err != nil {
		return nil, notFoundOr(err, "candidate not found")
	}
	agency, err := s.store.Agencies.GetByID(ctx, job.AgencyID)
	if err != nil {
		return nil, notFoundOr(err, "agency not found")
	}

	currency := displayOr(in.Currency, displayOr(job.Currency, "PHP"))
	values := map[string]string{
		"agency_name":          agency.Name,
		"candidate_name":       candidate.FullName(),
		"candidate_first_name": candidate.FirstName,
		"job_title":            job.Title,
		"client_name":          displayOr(job.ClientName, agency.Name),
		"salary":               currency + " " + formatThousands(in.Salary),
		"currency":             currency,
		"offer_date":           s.now().Format("2 January 2006"),
	}
	if in.StartDate != nil {
		values["start_date"] = in.StartDate.Format("2 January 2006")
	}
	if recruiter, err := s.store.Recruiters.GetByUserID(ctx, caller.UserID); err == nil {
		values["recruiter_name"] = recruiter.FullName()
	}
	for k, v := range in.Extra {
		if _, reserved := values[k]; !reserved {
			values[k] = v
		}
	}
	rendered := templating.Render(body, values, templating.Options{EscapeHTML: true})

	offer := &models.Offer{
		ApplicationID: app.ID,
		TemplateKey:   in.TemplateKey,
		RenderedHTML:  rendered.Output,
		Status:        models.OfferDraft,
		Salary:        in.Salary,
		Currency:      currency,
		StartDate:     in.StartDate,
	}
	if err := s.store.Offers.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	result := &OfferResult{Offer: offer, MissingPlaceholders: rendered.Missing}
	if in.RenderPDF {
		if err := s.attachPDF(ctx, offer); err != nil {
			s.logger.Warn("offer pdf failed", zap.String("offerId", offer.ID), zap.Error(err))
			result.PDFError = err.Error()
		}
	}
	return result, nil
}

func (s *OfferService) attachPDF(ctx context.Context, offer *models.Offer) error {
	if s.renderer == nil || s.objects == nil {
		return errors.New("pdf rendering is not configured")
	}
	pdf, err := s.renderer.Render(ctx, offer.RenderedHTML)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	key, err := s.objects.Put(ctx, "offers/"+offer.ID+".pdf", "application/pdf", pdf)
	if err != nil {
		return fmt.Errorf("store pdf: %w", err)
	}
	if err := s.store.Offers.SetPDFObject(ctx, offer.ID, key); err != nil {
		return fmt.Errorf("record pdf: %w", err)
	}
	offer.PDFObject = &key
	return nil
}

// Get returns an offer to agency staff or to the candidate it was made to.
func (s *OfferService) Get(ctx context.Context, caller Caller, id string) (*models.Offer, error) {
	offer, err := s.store.Offers.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	app, err := s.store.Applications.GetByID(ctx, offer.ApplicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	if caller.Role == models.RoleCandidate {
		if app.CandidateID != caller.UserID {
			return nil, forbidden("you do not have access to this offer")
		}
		return offer, nil
	}
	if _, _, err := s.authorizeApplication(ctx, caller, app.ID); err != nil {
		return nil, err
	}
	return offer, nil
}

// authorizeApplication admits admins and recruiters of the job's agency.
func (s *OfferService) authorizeApplication(ctx context.Context, caller Caller, applicationID string) (*models.Application, *models.Job, error) {
	app, err := s.store.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, notFoundOr(err, "application not found")
	}
	job, err := s.store.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, nil, notFoundOr(err, "job not found")
	}
	if caller.Role == models.RoleAdmin || app.RecruiterID == caller.UserID {
		return app, job, nil
	}
	member, err := s.store.Recruiters.IsAgencyMember(ctx, caller.UserID, job.AgencyID)
	if err != nil {
		return nil, nil, err
	}
	if !member {
		return nil, nil, forbidden("you do not have access to this application")
	}
	return app, job, nil
}

func formatThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
