package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxGoalsPerGroup caps how many shared goals a single group can hold.
const MaxGoalsPerGroup = 4

// Group aggregates members around shared goals. AdminIDs is always a
// subset of MemberIDs. TotalXP is a cached aggregate; the sum of member
// XP is the source of truth and TotalXP is only ever recomputed from it.
type Group struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Category    string               `bson:"category,omitempty" json:"category,omitempty"`
	AdminIDs    []primitive.ObjectID `bson:"admin_ids" json:"admin_ids"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	GoalsIDs    []primitive.ObjectID `bson:"goals_ids" json:"goals_ids"`
	TotalXP     int                  `bson:"total_xp" json:"total_xp"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether the user belongs to the group.
func (g *Group) IsMember(id primitive.ObjectID) bool {
	for _, m := range g.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user administers the group.
func (g *Group) IsAdmin(id primitive.ObjectID) bool {
	for _, a := range g.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}
