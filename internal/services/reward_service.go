package services

import (
	"context"
	"fmt"
	"time"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/models"
	"github.com/phocus/phocus/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RewardService is the XP-spending side of the system. It is the only
// code path that deducts XP; the progression engine never does.
type RewardService struct {
	repo     RewardRepositoryI
	userRepo UserRepositoryI
	mailer   EmailSender
}

// NewRewardService creates a new instance of RewardService.
func NewRewardService(repo RewardRepositoryI, userRepo UserRepositoryI, mailer EmailSender) *RewardService {
	return &RewardService{
		repo:     repo,
		userRepo: userRepo,
		mailer:   mailer,
	}
}

// RedemptionResult reports a successful redemption and the follow-up
// steps shown to the user.
type RedemptionResult struct {
	Reward *models.Reward `json:"reward"`
	User   *models.User   `json:"user"`
	Steps  []string       `json:"steps"`
}

// ListRewards returns the catalog.
func (s *RewardService) ListRewards(ctx context.Context) ([]models.Reward, error) {
	return s.repo.GetAllRewards(ctx)
}

// Redeem deducts the reward cost from the user's XP, records the
// redemption and mails the instructions. Level is recomputed from the
// new XP total.
func (s *RewardService) Redeem(ctx context.Context, userID primitive.ObjectID, rewardID string) (*RedemptionResult, error) {
	reward, err := s.repo.GetRewardByID(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, redeemed := range user.RedeemedRewards {
		if redeemed == rewardID {
			return nil, fmt.Errorf("reward already redeemed")
		}
	}

	if user.XP < reward.XPCost {
		logger.Log.WithFields(map[string]interface{}{
			"userID":    userID.Hex(),
			"reward_id": rewardID,
			"xp":        user.XP,
			"cost":      reward.XPCost,
		}).Info("Redemption denied, insufficient XP")
		return nil, apperrors.ErrInsufficientXP
	}

	user.XP -= reward.XPCost
	user.Level = LevelForXP(user.XP)
	user.RedeemedRewards = append(user.RedeemedRewards, rewardID)

	if _, err := s.userRepo.UpdateUser(ctx, user.ID, user); err != nil {
		return nil, fmt.Errorf("failed to persist redemption: %v", err)
	}

	steps := []string{
		fmt.Sprintf("Reward: %s", reward.Title),
		"Step 1: Confirm your profile details",
		"Step 2: Wait for the delivery instructions",
		fmt.Sprintf("Step 3: Instructions sent to %s", user.Email),
	}

	body := fmt.Sprintf("You redeemed %q for %d XP on %s.\n\n%s",
		reward.Title, reward.XPCost, time.Now().Format("Jan 2, 2006"), steps[1]+"\n"+steps[2])
	if err := s.mailer.Send(user.Email, "Reward Redeemed", body); err != nil {
		logger.Log.WithError(err).Warn("Failed to send redemption email")
	}

	logger.Log.WithFields(map[string]interface{}{
		"userID":    userID.Hex(),
		"reward_id": rewardID,
		"xp_left":   user.XP,
	}).Info("Reward redeemed")

	return &RedemptionResult{Reward: reward, User: user, Steps: steps}, nil
}
