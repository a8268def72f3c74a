package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the Phocus goal tracker.
type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username        string               `bson:"username" json:"username"`
	Email           string               `bson:"email" json:"email"`
	HashedPassword  string               `bson:"hashed_password" json:"-"`
	Role            string               `bson:"role" json:"role"`
	XP              int                  `bson:"xp" json:"xp"`
	Level           int                  `bson:"level" json:"level"`
	Streak          int                  `bson:"streak" json:"streak"`
	LastStreakDate  string               `bson:"last_streak_date,omitempty" json:"last_streak_date,omitempty"` // YYYY-MM-DD, local
	GoalsIDs        []primitive.ObjectID `bson:"goals_ids" json:"goals_ids"`
	GroupsIDs       []primitive.ObjectID `bson:"groups_ids" json:"groups_ids"`
	RedeemedRewards []string             `bson:"redeemed_rewards" json:"redeemed_rewards"`
	IsVerified      bool                 `bson:"is_verified" json:"is_verified"`
	VerifyToken     string               `bson:"verify_token,omitempty" json:"-"`
	ResetToken      string               `bson:"reset_token,omitempty" json:"-"`
	ResetTokenExp   time.Time            `bson:"reset_token_exp,omitempty" json:"-"`
	CreatedAt       time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at" json:"updated_at"`
}

type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	XP       int                `json:"xp"`
	Level    int                `json:"level"`
	Streak   int                `json:"streak"`
}

// Public strips credentials and back-references for cross-user views.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		XP:       u.XP,
		Level:    u.Level,
		Streak:   u.Streak,
	}
}
