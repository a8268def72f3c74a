package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RewardRepository handles database operations on the reward catalog.
type RewardRepository struct {
	collection *mongo.Collection
}

// NewRewardRepository creates a new instance of RewardRepository.
func NewRewardRepository(db *mongo.Database) *RewardRepository {
	return &RewardRepository{
		collection: db.Collection("rewards"),
	}
}

// GetAllRewards returns the full reward catalog.
func (r *RewardRepository) GetAllRewards(ctx context.Context) ([]models.Reward, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch rewards")
		return nil, fmt.Errorf("failed to fetch rewards: %v", err)
	}
	defer cursor.Close(ctx)

	var rewards []models.Reward
	if err := cursor.All(ctx, &rewards); err != nil {
		return nil, fmt.Errorf("failed to decode rewards: %v", err)
	}
	return rewards, nil
}

// GetRewardByID fetches a single catalog entry.
func (r *RewardRepository) GetRewardByID(ctx context.Context, id string) (*models.Reward, error) {
	var reward models.Reward
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reward)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrRewardNotFound
		}
		logrus.WithError(err).WithField("reward_id", id).Error("Failed to find reward")
		return nil, fmt.Errorf("failed to find reward: %v", err)
	}
	return &reward, nil
}

// SeedDefaults inserts the default catalog when the collection is empty.
func (r *RewardRepository) SeedDefaults(ctx context.Context) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count rewards: %v", err)
	}
	if count > 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(models.DefaultRewards))
	for _, reward := range models.DefaultRewards {
		docs = append(docs, reward)
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed rewards: %v", err)
	}

	logrus.WithField("count", len(docs)).Info("Reward catalog seeded with defaults")
	return nil
}
