package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered planner user.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON

	// PlannerStartDate anchors the day rotation. Nil means the planner
	// has not been started yet and "today" cannot be resolved.
	PlannerStartDate *time.Time `bson:"plannerStartDate,omitempty" json:"plannerStartDate,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PlannerStarted reports whether the user has anchored their rotation.
func (u *User) PlannerStarted() bool {
	return u.PlannerStartDate != nil && !u.PlannerStartDate.IsZero()
}
