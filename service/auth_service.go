package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"voiceoflaw-backend/auth"
	"voiceoflaw-backend/entitlement"
	"voiceoflaw-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles registration, login and profile management
type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
	rules  entitlement.Rules
	now    func() time.Time
}

// AuthServiceOption is a functional option for AuthService
type AuthServiceOption func(*AuthService)

// WithAuthUserStore sets the user store
func WithAuthUserStore(store UserStore) AuthServiceOption {
	return func(s *AuthService) {
		s.users = store
	}
}

// WithTokenManager sets the token manager
func WithTokenManager(tm *auth.TokenManager) AuthServiceOption {
	return func(s *AuthService) {
		s.tokens = tm
	}
}

// WithAuthRules sets the entitlement rules used for the trial window
func WithAuthRules(rules entitlement.Rules) AuthServiceOption {
	return func(s *AuthService) {
		s.rules = rules
	}
}

// WithAuthClock overrides the clock, for tests
func WithAuthClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates a new auth service
func NewAuthService(opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		rules: entitlement.DefaultRules(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult represents the result of a registration
type RegisterResult struct {
	User  *models.User
	Token string
}

// Register creates a new user on a fresh trial and issues a token
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if s.users == nil || s.tokens == nil {
		return nil, errors.New("auth service not configured")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	trialStart, trialEnd := s.rules.TrialWindow(now)

	user := &models.User{
		Name:               req.Name,
		Email:              email,
		PasswordHash:       string(hash),
		Role:               models.RoleUser,
		SubscriptionStatus: models.SubscriptionTrial,
		TrialStartDate:     trialStart,
		TrialEndDate:       trialEnd,
		Usage: models.UsageCounters{
			LastResetDate: now,
		},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{User: user, Token: token}, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult represents the result of a login
type LoginResult struct {
	User  *models.User
	Token string
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if s.users == nil || s.tokens == nil {
		return nil, errors.New("auth service not configured")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token}, nil
}

// GetProfile retrieves a user's profile
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if s.users == nil {
		return nil, errors.New("auth service not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CompleteProfileRequest carries the onboarding profile fields
type CompleteProfileRequest struct {
	UserID           uuid.UUID
	FullName         string
	PhoneNumber      string
	Province         string
	City             string
	CourtName        string
	BarCouncilNumber string
	ProfilePicture   string
}

// CompleteProfile fills in the onboarding fields and marks onboarding done
func (s *AuthService) CompleteProfile(ctx context.Context, req CompleteProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	setIfPresent := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}

	setIfPresent(&user.FullName, req.FullName)
	setIfPresent(&user.PhoneNumber, req.PhoneNumber)
	setIfPresent(&user.Province, req.Province)
	setIfPresent(&user.City, req.City)
	setIfPresent(&user.CourtName, req.CourtName)
	setIfPresent(&user.BarCouncilNumber, req.BarCouncilNumber)
	setIfPresent(&user.ProfilePicture, req.ProfilePicture)
	if req.FullName != "" {
		user.Name = req.FullName
	}
	user.OnboardingCompleted = true

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
