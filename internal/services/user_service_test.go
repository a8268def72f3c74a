package services_test

import (
	"context"
	"testing"

	"github.com/phocus/phocus/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	mailer := &recordingMailer{}
	svc := services.NewUserService(users, mailer)

	created, err := svc.RegisterUser(ctx, "dias", "dias@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "user", created.Role)
	assert.Equal(t, 1, created.Level)
	assert.Equal(t, 0, created.XP)
	assert.False(t, created.IsVerified)
	assert.NotEmpty(t, created.VerifyToken)
	assert.NotEqual(t, "secret123", created.HashedPassword)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.HashedPassword), []byte("secret123")))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "dias@example.com: Email Verification", mailer.sent[0])

	// Duplicate email is rejected.
	_, err = svc.RegisterUser(ctx, "other", "dias@example.com", "pw")
	assert.Error(t, err)
}

func TestRegisterUserValidation(t *testing.T) {
	svc := services.NewUserService(newMemUserRepo(), &recordingMailer{})
	ctx := context.Background()

	_, err := svc.RegisterUser(ctx, "", "a@b.c", "pw")
	assert.Error(t, err)
	_, err = svc.RegisterUser(ctx, "dias", "not-an-email", "pw")
	assert.Error(t, err)
	_, err = svc.RegisterUser(ctx, "dias", "a@b.c", "")
	assert.Error(t, err)
}

func TestAuthenticateUser(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := services.NewUserService(users, &recordingMailer{})

	created, err := svc.RegisterUser(ctx, "dias", "dias@example.com", "secret123")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser(ctx, "dias@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.AuthenticateUser(ctx, "dias@example.com", "wrong")
	assert.Error(t, err)
	_, err = svc.AuthenticateUser(ctx, "nobody@example.com", "secret123")
	assert.Error(t, err)
}

func TestVerifyEmail(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := services.NewUserService(users, &recordingMailer{})

	created, err := svc.RegisterUser(ctx, "dias", "dias@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(ctx, created.VerifyToken))

	stored, err := users.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Empty(t, stored.VerifyToken)

	// A consumed token no longer verifies anything.
	assert.Error(t, svc.VerifyEmail(ctx, created.VerifyToken))
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	mailer := &recordingMailer{}
	svc := services.NewUserService(users, mailer)

	created, err := svc.RegisterUser(ctx, "dias", "dias@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "dias@example.com"))
	require.Len(t, mailer.sent, 2) // verification + reset

	stored, err := users.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	require.NoError(t, svc.ResetPassword(ctx, stored.ResetToken, "newsecret"))

	_, err = svc.AuthenticateUser(ctx, "dias@example.com", "newsecret")
	assert.NoError(t, err)
	_, err = svc.AuthenticateUser(ctx, "dias@example.com", "secret123")
	assert.Error(t, err)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := services.NewUserService(newMemUserRepo(), &recordingMailer{})
	assert.Error(t, svc.ResetPassword(context.Background(), "bogus", "pw"))
}
