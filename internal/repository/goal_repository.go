package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phocus/phocus/internal/apperrors"
	"github.com/phocus/phocus/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GoalRepository handles database operations related to goals.
type GoalRepository struct {
	collection *mongo.Collection
}

// NewGoalRepository creates a new instance of GoalRepository.
func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{
		collection: db.Collection("goals"),
	}
}

// CreateGoal inserts a new goal into the database.
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = goal.CreatedAt

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert goal")
		return nil, fmt.Errorf("failed to insert goal: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted goal ID")
		return nil, fmt.Errorf("failed to cast inserted goal ID")
	}
	goal.ID = insertedID

	logrus.WithField("goal_id", goal.ID.Hex()).Info("Goal created successfully")
	return goal, nil
}

// GetGoalByID fetches a goal by its ID.
func (r *GoalRepository) GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var goal models.Goal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrGoalNotFound
		}
		logrus.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to find goal by ID")
		return nil, fmt.Errorf("failed to find goal: %v", err)
	}
	return &goal, nil
}

// UpdateGoal replaces the stored goal document with the given record.
func (r *GoalRepository) UpdateGoal(ctx context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	goal.UpdatedAt = time.Now()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": goal})
	if err != nil {
		logrus.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to update goal")
		return nil, fmt.Errorf("failed to update goal: %v", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.ErrGoalNotFound
	}

	logrus.WithField("goal_id", id.Hex()).Info("Goal updated successfully")
	return goal, nil
}

// DeleteGoal removes a goal by its ID.
func (r *GoalRepository) DeleteGoal(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to delete goal")
		return fmt.Errorf("failed to delete goal: %v", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrGoalNotFound
	}

	logrus.WithField("goal_id", id.Hex()).Info("Goal deleted successfully")
	return nil
}

// GetGoalsByOwner fetches all goals belonging to a user or group.
func (r *GoalRepository) GetGoalsByOwner(ctx context.Context, ownerID primitive.ObjectID, ownerType string) ([]models.Goal, error) {
	filter := bson.M{"owner_id": ownerID, "owner_type": ownerType}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logrus.WithError(err).WithField("owner_id", ownerID.Hex()).Error("Failed to fetch goals by owner")
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %v", err)
	}
	return goals, nil
}

// GetAllGoals fetches goals across all owners, up to limit.
func (r *GoalRepository) GetAllGoals(ctx context.Context, limit int64) ([]models.Goal, error) {
	findOptions := options.Find().SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch all goals")
		return nil, fmt.Errorf("failed to fetch goals: %v", err)
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		return nil, fmt.Errorf("failed to decode goals: %v", err)
	}
	return goals, nil
}
