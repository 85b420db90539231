// Package models defines the domain types and error taxonomy for the application.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Username and email are stored lower-cased;
// Favourites is an ordered, duplicate-free list of event IDs.
type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username   string               `bson:"username" json:"username"`
	Password   string               `bson:"password" json:"-"`
	Email      string               `bson:"email" json:"email"`
	Favourites []primitive.ObjectID `bson:"favourites" json:"favourites"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
}

// HasFavourite reports whether the given event ID is already in the user's favourites.
func (u *User) HasFavourite(eventID primitive.ObjectID) bool {
	for _, id := range u.Favourites {
		if id == eventID {
			return true
		}
	}
	return false
}
