package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"bpoc/internal/mailer"
	"bpoc/internal/models"
	"bpoc/internal/queue"
	"bpoc/internal/repositories"
	"bpoc/internal/templating"

	"go.uber.org/zap"
)

// Mailer sends one email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Publisher enqueues a message for the campaign workers.
type Publisher interface {
	Publish(ctx context.Context, v any) error
}

// CampaignMessage is the queued unit of work: one recipient of one campaign.
type CampaignMessage struct {
	CampaignID  string `json:"campaignId"`
	RecipientID string `json:"recipientId"`
}

type RecipientInput struct {
	Email  string            `json:"email"`
	Tokens map[string]string `json:"tokens"`
}

type CreateCampaignInput struct {
	Name            string
	SubjectTemplate string
	BodyTemplate    string
	Recipients      []RecipientInput
}

type CampaignView struct {
	Campaign *models.EmailCampaign           `json:"campaign"`
	Counts   map[models.RecipientStatus]int64 `json:"counts"`
}

type SendResult struct {
	Dispatched int  `json:"dispatched"`
	Queued     bool `json:"queued"`
}

// CampaignService renders and sends templated emails. With a publisher each
// recipient becomes a queue message; without one, Send delivers inline.
type CampaignService struct {
	store     *repositories.Store
	mailer    Mailer
	publisher Publisher
	logger    *zap.Logger
	now       Clock
}

func NewCampaignService(store *repositories.Store, m Mailer, publisher Publisher, logger *zap.Logger) *CampaignService {
	return &CampaignService{
		store:     store,
		mailer:    m,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *CampaignService) Create(ctx context.Context, caller Caller, in CreateCampaignInput) (*models.EmailCampaign, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SubjectTemplate) == "" || strings.TrimSpace(in.BodyTemplate) == "" {
		return nil, validationf("name, subject and body are required")
	}
	if len(in.Recipients) == 0 {
		return nil, validationf("at least one recipient is required")
	}

	seen := map[string]bool{}
	recipients := make([]models.EmailRecipient, 0, len(in.Recipients))
	for _, r := range in.Recipients {
		addr, err := mail.ParseAddress(strings.TrimSpace(r.Email))
		if err != nil {
			return nil, validationf("invalid recipient email %q", r.Email)
		}
		email := strings.ToLower(addr.Address)
		if seen[email] {
			continue
		}
		seen[email] = true
		recipients = append(recipients, models.EmailRecipient{Email: email, Tokens: r.Tokens, Status: models.RecipientPending})
	}

	campaign := &models.EmailCampaign{
		Name:            strings.TrimSpace(in.Name),
		SubjectTemplate: in.SubjectTemplate,
		BodyTemplate:    in.BodyTemplate,
		Status:          models.CampaignDraft,
		CreatedBy:       caller.UserID,
		Recipients:      recipients,
	}
	if err := s.store.Campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return campaign, nil
}

func (s *CampaignService) Get(ctx context.Context, id string) (*CampaignView, error) {
	campaign, err := s.store.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "campaign not found")
	}
	counts, err := s.store.Campaigns.RecipientCounts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count recipients: %w", err)
	}
	return &CampaignView{Campaign: campaign, Counts: counts}, nil
}

// Send dispatches every pending recipient of a draft campaign. If dispatch
// fails part way the campaign returns to draft so it can be sent again;
// recipients already handled are skipped on the retry.
func (s *CampaignService) Send(ctx context.Context, id string) (*SendResult, error) {
	campaign, err := s.store.Campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "campaign not found")
	}
	if campaign.Status != models.CampaignDraft {
		return nil, conflict(fmt.Sprintf("campaign is already %s", campaign.Status), nil)
	}
	pending, err := s.store.Campaigns.PendingRecipients(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	if len(pending) == 0 {
		return nil, validationf("campaign has no pending recipients")
	}
	ok, err := s.store.Campaigns.TransitionStatus(ctx, id, models.CampaignDraft, models.CampaignSending)
	if err != nil {
		return nil, fmt.Errorf("mark campaign sending: %w", err)
	}
	if !ok {
		return nil, conflict("campaign is already being sent", nil)
	}

	result := &SendResult{Queued: s.publisher != nil}
	for _, r := range pending {
		var dispatchErr error
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, CampaignMessage{CampaignID: id, RecipientID: r.ID}); err != nil {
				dispatchErr = upstream("failed to queue campaign emails", err)
			}
		} else {
			dispatchErr = s.Deliver(ctx, r.ID)
		}
		if dispatchErr != nil {
			s.restoreDraft(ctx, id)
			return result, dispatchErr
		}
		result.Dispatched++
	}
	return result, nil
}

func (s *CampaignService) restoreDraft(ctx context.Context, id string) {
	if _, err := s.store.Campaigns.TransitionStatus(context.WithoutCancel(ctx), id, models.CampaignSending, models.CampaignDraft); err != nil {
		s.logger.Error("failed to restore campaign to draft", zap.String("campaignId", id), zap.Error(err))
	}
}

// HandleDelivery is the queue consumer entry point.
func (s *CampaignService) HandleDelivery(ctx context.Context, body []byte) error {
	var msg CampaignMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.RecipientID == "" {
		return fmt.Errorf("%w: malformed campaign message", queue.ErrPermanent)
	}
	err := s.Deliver(ctx, msg.RecipientID)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}
	return err
}

// Deliver renders and sends one recipient's email and records the outcome.
// A send failure is recorded on the recipient, not returned; redelivery of
// an already handled recipient is a no-op.
func (s *CampaignService) Deliver(ctx context.Context, recipientID string) error {
	recipient, err := s.store.Campaigns.GetRecipient(ctx, recipientID)
	if err != nil {
		return err
	}
	if recipient.Status != models.RecipientPending {
		return nil
	}
	campaign, err := s.store.Campaigns.GetByID(ctx, recipient.CampaignID)
	if err != nil {
		return err
	}

	tokens := map[string]string{"email": recipient.Email}
	for k, v := range recipient.Tokens {
		tokens[k] = v
	}
	subject := templating.Render(campaign.SubjectTemplate, tokens, templating.Options{}).Output
	body := templating.Render(campaign.BodyTemplate, tokens, templating.Options{EscapeHTML: true}).Output

	sendErr := s.mailer.Send(ctx, mailer.Message{To: recipient.Email, Subject: subject, Body: body, HTML: true})
	if sendErr != nil {
		s.logger.Warn("campaign email failed",
			zap.String("campaignId", campaign.ID),
			zap.String("recipientId", recipient.ID),
			zap.Error(sendErr))
	}
	if err := s.store.Campaigns.MarkRecipient(ctx, recipient.ID, sendErr, s.now()); err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return s.rollUp(ctx, campaign.ID)
}

// rollUp closes the campaign once no recipient is pending: sent if anyone
// received it, failed otherwise.
func (s *CampaignService) rollUp(ctx context.Context, campaignID string) error {
	counts, err := s.store.Campaigns.RecipientCounts(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("count recipients: %w", err)
	}
	if counts[models.RecipientPending] > 0 {
		return nil
	}
	status := models.CampaignFailed
	if counts[models.RecipientSent] > 0 {
		status = models.CampaignSent
	}
	return s.store.Campaigns.SetStatus(ctx, campaignID, status)
}
