package repository

import (
	"context"
	"errors"
	"time"

	"gatherly/internal/database"
	"gatherly/internal/models"
	"gatherly/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository defines persistence operations for events.
type EventRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	// GetManyByIDs resolves IDs to events preserving the input order and
	// silently skipping IDs that no longer resolve.
	GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error)
	List(ctx context.Context, limit, offset int) ([]models.Event, int64, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Event, int64, error)
	ListByCreator(ctx context.Context, username string) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	// Patch applies only the supplied fields. NotFound when id does not match.
	Patch(ctx context.Context, id primitive.ObjectID, patch models.EventPatch) error
	// Delete removes the event; an absent id is a no-op, not an error.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type eventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(db *mongo.Database) EventRepository {
	return &eventRepository{coll: db.Collection(database.EventsCollection)}
}

func (r *eventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	start := time.Now()
	var event models.Event
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe("GetByID", database.EventsCollection, start, nil)
		return nil, models.NewNotFoundError("Event", id.Hex())
	}
	observe("GetByID", database.EventsCollection, start, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &event, nil
}

func (r *eventRepository) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}

	start := time.Now()
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		observe("GetManyByIDs", database.EventsCollection, start, err)
		return nil, models.NewInternalError(err)
	}

	byID := make(map[primitive.ObjectID]models.Event, len(ids))
	for cursor.Next(ctx) {
		var event models.Event
		if err := cursor.Decode(&event); err != nil {
			cursor.Close(ctx)
			observe("GetManyByIDs", database.EventsCollection, start, err)
			return nil, models.NewInternalError(err)
		}
		byID[event.ID] = event
	}
	err = cursor.Err()
	cursor.Close(ctx)
	observe("GetManyByIDs", database.EventsCollection, start, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Preserve favourites order; dangling IDs simply resolve to nothing.
	events := make([]models.Event, 0, len(byID))
	for _, id := range ids {
		if event, ok := byID[id]; ok {
			events = append(events, event)
		}
	}
	return events, nil
}

func (r *eventRepository) List(ctx context.Context, limit, offset int) ([]models.Event, int64, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", database.EventsCollection)
	defer span.End()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_on", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.findPage(ctx, "List", bson.M{}, opts)
}

func (r *eventRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Event, int64, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Search", database.EventsCollection)
	defer span.End()

	filter := bson.M{"$text": bson.M{"$search": query}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_on", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return r.findPage(ctx, "Search", filter, opts)
}

// findPage runs a filtered, paginated find plus a total count for the same filter.
func (r *eventRepository) findPage(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]models.Event, int64, error) {
	start := time.Now()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		observe(op, database.EventsCollection, start, err)
		return nil, 0, models.NewInternalError(err)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		observe(op, database.EventsCollection, start, err)
		return nil, 0, models.NewInternalError(err)
	}

	events := []models.Event{}
	for cursor.Next(ctx) {
		var event models.Event
		if err := cursor.Decode(&event); err != nil {
			cursor.Close(ctx)
			observe(op, database.EventsCollection, start, err)
			return nil, 0, models.NewInternalError(err)
		}
		events = append(events, event)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	observe(op, database.EventsCollection, start, err)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	return events, total, nil
}

func (r *eventRepository) ListByCreator(ctx context.Context, username string) ([]models.Event, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "created_on", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"created_by": username}, opts)
	if err != nil {
		observe("ListByCreator", database.EventsCollection, start, err)
		return nil, models.NewInternalError(err)
	}

	events := []models.Event{}
	for cursor.Next(ctx) {
		var event models.Event
		if err := cursor.Decode(&event); err != nil {
			cursor.Close(ctx)
			observe("ListByCreator", database.EventsCollection, start, err)
			return nil, models.NewInternalError(err)
		}
		events = append(events, event)
	}
	err = cursor.Err()
	cursor.Close(ctx)
	observe("ListByCreator", database.EventsCollection, start, err)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	start := time.Now()
	result, err := r.coll.InsertOne(ctx, event)
	observe("Create", database.EventsCollection, start, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return nil
}

func (r *eventRepository) Patch(ctx context.Context, id primitive.ObjectID, patch models.EventPatch) error {
	fields := patch.SetDocument()
	if len(fields) == 0 {
		return nil
	}

	start := time.Now()
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.D{{Key: "$set", Value: fields}},
	)
	observe("Patch", database.EventsCollection, start, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Event", id.Hex())
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	start := time.Now()
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	observe("Delete", database.EventsCollection, start, err)
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
