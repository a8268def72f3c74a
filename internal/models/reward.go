package models

// Reward is a catalog entry users spend XP on. Redemption state is kept
// per user (User.RedeemedRewards), not on the catalog entry.
type Reward struct {
	ID          string `bson:"_id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	XPCost      int    `bson:"xp_cost" json:"xp_cost"`
	ImageURL    string `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// DefaultRewards seeds the catalog when the collection is empty.
var DefaultRewards = []Reward{
	{ID: "r1", Title: "Phocus Mug", Description: "A mug for the consistent.", XPCost: 200},
	{ID: "r2", Title: "10% Discount", Description: "Partner store discount code.", XPCost: 500},
	{ID: "r3", Title: "Profile Badge", Description: "Exclusive profile badge.", XPCost: 1000},
}
