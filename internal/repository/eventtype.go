package repository

import (
	"context"
	"time"

	"gatherly/internal/database"
	"gatherly/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventTypeRepository exposes the controlled vocabulary of event types.
// The application only reads it; Create exists for seeding.
type EventTypeRepository interface {
	List(ctx context.Context) ([]models.EventType, error)
	Create(ctx context.Context, t *models.EventType) error
}

type eventTypeRepository struct {
	coll *mongo.Collection
}

// NewEventTypeRepository returns a new EventTypeRepository implementation.
func NewEventTypeRepository(db *mongo.Database) EventTypeRepository {
	return &eventTypeRepository{coll: db.Collection(database.TypesCollection)}
}

func (r *eventTypeRepository) List(ctx context.Context) ([]models.EventType, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "event_type", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		observe("List", database.TypesCollection, start, err)
		return nil, models.NewInternalError(err)
	}

	types := []models.EventType{}
	for cursor.Next(ctx) {
		var t models.EventType
		if err := cursor.Decode(&t); err != nil {
			cursor.Close(ctx)
			observe("List", database.TypesCollection, start, err)
			return nil, models.NewInternalError(err)
		}
		types = append(types, t)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	observe("List", database.TypesCollection, start, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return types, nil
}

func (r *eventTypeRepository) Create(ctx context.Context, t *models.EventType) error {
	start := time.Now()
	result, err := r.coll.InsertOne(ctx, t)
	observe("Create", database.TypesCollection, start, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		t.ID = oid
	}
	return nil
}
