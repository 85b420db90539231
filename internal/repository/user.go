package repository

import (
	"context"
	"errors"
	"time"

	"gatherly/internal/database"
	"gatherly/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// GetByUsername returns the user, or (nil, nil) when no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	// AddFavourite appends eventID to the user's favourites unless already
	// present. Returns false when the ID was already there.
	AddFavourite(ctx context.Context, username string, eventID primitive.ObjectID) (bool, error)
	RemoveFavourite(ctx context.Context, username string, eventID primitive.ObjectID) error
	// PullFavouriteFromAll removes eventID from every user's favourites list.
	PullFavouriteFromAll(ctx context.Context, eventID primitive.ObjectID) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	start := time.Now()
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe("GetByUsername", database.UsersCollection, start, nil)
		return nil, nil
	}
	observe("GetByUsername", database.UsersCollection, start, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	start := time.Now()
	result, err := r.coll.InsertOne(ctx, user)
	observe("Create", database.UsersCollection, start, err)
	if err != nil {
		// The unique index on username backs up the pre-insert lookup;
		// a racing duplicate surfaces here.
		if mongo.IsDuplicateKeyError(err) {
			return models.NewDuplicateUserError(user.Username)
		}
		return models.NewInternalError(err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *userRepository) AddFavourite(ctx context.Context, username string, eventID primitive.ObjectID) (bool, error) {
	start := time.Now()
	// The $ne guard makes the push race-safe: two concurrent adds of the
	// same event match at most once.
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username, "favourites": bson.M{"$ne": eventID}},
		bson.M{"$push": bson.M{"favourites": eventID}},
	)
	observe("AddFavourite", database.UsersCollection, start, err)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return result.ModifiedCount > 0, nil
}

func (r *userRepository) RemoveFavourite(ctx context.Context, username string, eventID primitive.ObjectID) error {
	start := time.Now()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$pull": bson.M{"favourites": eventID}},
	)
	observe("RemoveFavourite", database.UsersCollection, start, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) PullFavouriteFromAll(ctx context.Context, eventID primitive.ObjectID) error {
	start := time.Now()
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"favourites": eventID},
		bson.M{"$pull": bson.M{"favourites": eventID}},
	)
	observe("PullFavouriteFromAll", database.UsersCollection, start, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
