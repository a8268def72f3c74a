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
)

// GroupRepository handles database operations related to groups.
type GroupRepository struct {
	collection *mongo.Collection
}

// NewGroupRepository creates a new instance of GroupRepository.
func NewGroupRepository(db *mongo.Database) *GroupRepository {
	return &GroupRepository{
		collection: db.Collection("groups"),
	}
}

// CreateGroup inserts a new group into the database.
func (r *GroupRepository) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	group.CreatedAt = time.Now()
	group.UpdatedAt = group.CreatedAt

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert group")
		return nil, fmt.Errorf("failed to insert group: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted group ID")
		return nil, fmt.Errorf("failed to cast inserted group ID")
	}
	group.ID = insertedID

	logrus.WithField("group_id", group.ID.Hex()).Info("Group created successfully")
	return group, nil
}

// GetGroupByID fetches a group by its ID.
func (r *GroupRepository) GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var group models.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrGroupNotFound
		}
		logrus.WithError(err).WithField("group_id", id.Hex()).Error("Failed to find group by ID")
		return nil, fmt.Errorf("failed to find group: %v", err)
	}
	return &group, nil
}

// UpdateGroup replaces the stored group document with the given record.
func (r *GroupRepository) UpdateGroup(ctx context.Context, id primitive.ObjectID, group *models.Group) (*models.Group, error) {
	group.UpdatedAt = time.Now()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": group})
	if err != nil {
		logrus.WithError(err).WithField("group_id", id.Hex()).Error("Failed to update group")
		return nil, fmt.Errorf("failed to update group: %v", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.ErrGroupNotFound
	}

	logrus.WithField("group_id", id.Hex()).Info("Group updated successfully")
	return group, nil
}

// DeleteGroup removes a group by its ID.
func (r *GroupRepository) DeleteGroup(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("group_id", id.Hex()).Error("Failed to delete group")
		return fmt.Errorf("failed to delete group: %v", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrGroupNotFound
	}
	return nil
}

// GetGroupsByIDs resolves a batch of group IDs.
func (r *GroupRepository) GetGroupsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch groups by IDs")
		return nil, fmt.Errorf("failed to fetch groups: %v", err)
	}
	defer cursor.Close(ctx)

	var groups []models.Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %v", err)
	}
	return groups, nil
}
