package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the users collection. Email is the identity key;
// the ObjectID is assigned by the store and never used for lookups.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	Name      string             `bson:"name" json:"name"`
	PhotoURL  string             `bson:"photoURL" json:"photoURL"`
	Role      Role               `bson:"role" json:"role"`
	Status    Status             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	LastLogin *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// UserProfile is the caller-supplied part of an upsert. Nil pointers mean
// "not supplied" so existing values are kept on update.
type UserProfile struct {
	Name     *string
	PhotoURL *string
	Role     *Role

	// AdminRequest must be set alongside Role for an existing user's role
	// to change through an upsert.
	AdminRequest bool
}
