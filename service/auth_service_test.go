package service

import (
	"context"
	"testing"
	"time"

	"voiceoflaw-backend/auth"
	"voiceoflaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(users *fakeUserStore) *AuthService {
	return NewAuthService(
		WithAuthUserStore(users),
		WithTokenManager(auth.NewTokenManager("test-secret", time.Hour)),
		WithAuthClock(fixedClock),
	)
}

func TestRegisterStartsTrial(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)

	result, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ali",
		Email:    "Ali@Example.PK",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	user := result.User
	assert.Equal(t, "ali@example.pk", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.SubscriptionTrial, user.SubscriptionStatus)
	assert.Equal(t, testNow, user.TrialStartDate)
	assert.Equal(t, testNow.AddDate(0, 0, 7), user.TrialEndDate)
	assert.False(t, user.IsSubscribed)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserStore(&models.User{Email: "ali@example.pk"})
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ali",
		Email:    "ali@example.pk",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ali", Email: "ali@example.pk", Password: "secret123"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginRequest{Email: "ali@example.pk", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(ctx, LoginRequest{Email: "ali@example.pk", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.pk", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCompleteProfile(t *testing.T) {
	users := newFakeUserStore()
	svc := newAuthService(users)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Name: "Ali", Email: "ali@example.pk", Password: "secret123"})
	require.NoError(t, err)

	user, err := svc.CompleteProfile(ctx, CompleteProfileRequest{
		UserID:           reg.User.ID,
		FullName:         "Ali Raza",
		PhoneNumber:      "03001234567",
		Province:         "Punjab",
		City:             "Lahore",
		CourtName:        "Lahore High Court",
		BarCouncilNumber: "PBC-1234",
	})
	require.NoError(t, err)

	assert.True(t, user.OnboardingCompleted)
	assert.Equal(t, "Ali Raza", user.Name)
	require.NotNil(t, user.Province)
	assert.Equal(t, "Punjab", *user.Province)

	stored := users.users[reg.User.ID]
	assert.True(t, stored.OnboardingCompleted)
}
