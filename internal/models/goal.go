package models

import (
	"time"

	"github.com/phocus/phocus/internal/period"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Owner types for goals. A goal belongs to exactly one user or one group.
const (
	OwnerUser  = "user"
	OwnerGroup = "group"
)

var AllowedCategories = map[string]bool{
	"fitness": true,
	"study":   true,
	"work":    true,
	"health":  true,
	"other":   true,
}

// Goal represents a trackable objective owned by a user or a group.
type Goal struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID           primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OwnerType         string             `bson:"owner_type" json:"owner_type"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description,omitempty" json:"description,omitempty"`
	Category          string             `bson:"category,omitempty" json:"category,omitempty"`
	DaysTotal         int                `bson:"days_total" json:"days_total"`
	DaysCompleted     int                `bson:"days_completed" json:"days_completed"`
	Periodicity       period.Periodicity `bson:"periodicity" json:"periodicity"`
	RewardXP          int                `bson:"reward_xp" json:"reward_xp"`
	LastCompletedDate *time.Time         `bson:"last_completed_date,omitempty" json:"last_completed_date,omitempty"`
	DueDate           time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`
	CompletedAt       *time.Time         `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// Completed reports whether the goal reached its terminal state.
func (g *Goal) Completed() bool {
	return g.DaysCompleted >= g.DaysTotal
}
