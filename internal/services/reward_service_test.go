package services_test

import (
	"context"
	"testing"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRedeemDeductsXPAndRecomputesLevel(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	rewards := newMemRewardRepo(models.Reward{ID: "r2", Title: "10% Discount", XPCost: 500})
	mailer := &recordingMailer{}
	svc := services.NewRewardService(rewards, users, mailer)

	user, err := users.CreateUser(ctx, &models.User{Email: "a@b.c", XP: 1200, Level: 2})
	require.NoError(t, err)

	res, err := svc.Redeem(ctx, user.ID, "r2")
	require.NoError(t, err)

	assert.Equal(t, 700, res.User.XP)
	assert.Equal(t, 1, res.User.Level)
	assert.Contains(t, res.User.RedeemedRewards, "r2")
	assert.NotEmpty(t, res.Steps)

	stored, err := users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 700, stored.XP)
	assert.Contains(t, stored.RedeemedRewards, "r2")

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@b.c: Reward Redeemed", mailer.sent[0])
}

func TestRedeemInsufficientXP(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	rewards := newMemRewardRepo(models.Reward{ID: "r3", Title: "Badge", XPCost: 1000})
	svc := services.NewRewardService(rewards, users, &recordingMailer{})

	user, err := users.CreateUser(ctx, &models.User{Email: "a@b.c", XP: 999, Level: 1})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, user.ID, "r3")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientXP)

	// The denial left the user untouched.
	stored, err := users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 999, stored.XP)
	assert.Empty(t, stored.RedeemedRewards)
}

func TestRedeemTwiceRejected(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	rewards := newMemRewardRepo(models.Reward{ID: "r1", Title: "Mug", XPCost: 200})
	svc := services.NewRewardService(rewards, users, &recordingMailer{})

	user, err := users.CreateUser(ctx, &models.User{Email: "a@b.c", XP: 1000})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, user.ID, "r1")
	require.NoError(t, err)
	_, err = svc.Redeem(ctx, user.ID, "r1")
	assert.Error(t, err)

	stored, err := users.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 800, stored.XP)
}

func TestRedeemUnknownReward(t *testing.T) {
	ctx := context.Background()
	users := newMemUserRepo()
	svc := services.NewRewardService(newMemRewardRepo(), users, &recordingMailer{})

	user, err := users.CreateUser(ctx, &models.User{Email: "a@b.c", XP: 5000})
	require.NoError(t, err)

	_, err = svc.Redeem(ctx, user.ID, "r9")
	assert.ErrorIs(t, err, apperrors.ErrRewardNotFound)
}

func TestRedeemUnknownUser(t *testing.T) {
	rewards := newMemRewardRepo(models.Reward{ID: "r1", XPCost: 200})
	svc := services.NewRewardService(rewards, newMemUserRepo(), &recordingMailer{})

	_, err := svc.Redeem(context.Background(), primitive.NewObjectID(), "r1")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
