package services

import (
	"context"

	"github.com/phocus/phocus/internal/events"
	"github.com/phocus/phocus/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository contracts consumed by the service layer. The Mongo
// repositories implement them; tests substitute mocks.

type GoalRepositoryI interface {
	CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error)
	UpdateGoal(ctx context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id primitive.ObjectID) error
	GetGoalsByOwner(ctx context.Context, ownerID primitive.ObjectID, ownerType string) ([]models.Goal, error)
	GetAllGoals(ctx context.Context, limit int64) ([]models.Goal, error)
}

type UserRepositoryI interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, user *models.User) (*models.User, error)
	UpdateUserFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

type GroupRepositoryI interface {
	CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error)
	GetGroupByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	UpdateGroup(ctx context.Context, id primitive.ObjectID, group *models.Group) (*models.Group, error)
	DeleteGroup(ctx context.Context, id primitive.ObjectID) error
	GetGroupsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error)
}

type RewardRepositoryI interface {
	GetAllRewards(ctx context.Context) ([]models.Reward, error)
	GetRewardByID(ctx context.Context, id string) (*models.Reward, error)
	SeedDefaults(ctx context.Context) error
}

type NotificationRepositoryI interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
}

// EventPublisher is the engine-to-UI signal side of the event bus.
type EventPublisher interface {
	Publish(e events.Event)
}

// EmailSender delivers plain-text mail; wired to SMTP in production and
// to a recorder in tests.
type EmailSender interface {
	Send(to, subject, body string) error
}
