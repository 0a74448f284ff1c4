package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"bpoc/internal/models"
	"bpoc/internal/repositories"
	"bpoc/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type LoginResult struct {
	Token   string              `json:"token"`
	Profile *models.UserProfile `json:"profile"`
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthService struct {
	store  *repositories.Store
	secret string
	ttl    time.Duration
}

func NewAuthService(store *repositories.Store, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{store: store, secret: secret, ttl: ttl}
}

// Login checks the password hash and issues a token. Unknown emails and bad
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	invalid := &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
	profile, err := s.store.Profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if profile.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}

	agencyID := ""
	if profile.Role == models.RoleRecruiter {
		recruiter, err := s.store.Recruiters.GetByUserID(ctx, profile.UserID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		if recruiter != nil {
			agencyID = recruiter.AgencyID
		}
	}

	token, err := utils.IssueToken(s.secret, profile.UserID, profile.Role, agencyID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, Profile: profile}, nil
}

// RegisterCandidate creates the login profile and candidate record under one
// user id.
func (s *AuthService) RegisterCandidate(ctx context.Context, in RegisterInput) (*models.UserProfile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, validationf("password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, validationf("firstName is required")
	}
	if _, err := s.store.Profiles.GetByEmail(ctx, email); err == nil {
		return nil, conflict("email already registered", nil)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	userID := uuid.NewString()
	profile := &models.UserProfile{
		UserID:       userID,
		FullName:     strings.TrimSpace(in.FirstName + " " + in.LastName),
		Email:        email,
		Role:         models.RoleCandidate,
		PasswordHash: hash,
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		candidate := &models.Candidate{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Email:     email,
			IsActive:  true,
		}
		candidate.ID = userID
		return tx.Candidates.Create(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.store.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "profile not found")
	}
	return profile, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
