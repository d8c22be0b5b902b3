package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Day is a named slot in the user's rotation, distinct from a calendar date.
type Day struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID `bson:"userId" json:"userId"`
	DayName string             `bson:"dayName" json:"dayName"` // Unique per user

	// Position is the day's place in the rotation. It is assigned once at
	// creation and never changes afterwards; renaming a day keeps its slot.
	Position int `bson:"position" json:"position"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
