package service

import (
	"context"
	"strings"
	"time"

	"gatherly/internal/middleware"
	"gatherly/internal/models"
	"gatherly/internal/observability"
	"gatherly/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPerPage = 8
	maxPerPage     = 100
)

// EventService implements the event catalog: listing, search, CRUD, and the
// cross-collection cleanup on deletion.
type EventService struct {
	eventRepo repository.EventRepository
	typeRepo  repository.EventTypeRepository
	userRepo  repository.UserRepository
}

// NewEventService returns a new EventService.
func NewEventService(eventRepo repository.EventRepository, typeRepo repository.EventTypeRepository, userRepo repository.UserRepository) *EventService {
	return &EventService{eventRepo: eventRepo, typeRepo: typeRepo, userRepo: userRepo}
}

// clampPage normalizes page/perPage and returns the store offset.
func clampPage(page, perPage int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, (page - 1) * perPage
}

// List returns one page of events, most recent first, plus pagination metadata.
func (s *EventService) List(ctx context.Context, page, perPage int) ([]models.Event, models.Pagination, error) {
	page, perPage, offset := clampPage(page, perPage)
	events, total, err := s.eventRepo.List(ctx, perPage, offset)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return events, models.NewPagination(page, perPage, total), nil
}

// Search runs a full-text search with the same pagination contract as List.
// An empty query returns an empty page, not an error.
func (s *EventService) Search(ctx context.Context, query string, page, perPage int) ([]models.Event, models.Pagination, error) {
	page, perPage, offset := clampPage(page, perPage)
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Event{}, models.NewPagination(page, perPage, 0), nil
	}

	events, total, err := s.eventRepo.Search(ctx, query, perPage, offset)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return events, models.NewPagination(page, perPage, total), nil
}

// Create inserts a new event owned by createdBy with a server-assigned
// creation time. All descriptive fields are optional.
func (s *EventService) Create(ctx context.Context, input models.EventInput, createdBy string) (*models.Event, error) {
	event := &models.Event{
		EventName:   input.EventName,
		EventType:   input.EventType,
		Location:    input.Location,
		Description: input.Description,
		Date:        input.Date,
		CreatedBy:   createdBy,
		ImageURL:    input.ImageURL,
		CreatedOn:   time.Now().UTC(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Get returns the event with the given ID.
func (s *EventService) Get(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// Update applies a merge patch: only supplied fields are written, so a
// caller that omits a field cannot silently blank it. An empty patch is
// rejected outright.
func (s *EventService) Update(ctx context.Context, id primitive.ObjectID, patch models.EventPatch) (*models.Event, error) {
	if patch.IsEmpty() {
		return nil, models.NewValidationError("No fields supplied")
	}
	if err := s.eventRepo.Patch(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByID(ctx, id)
}

// Delete removes the event and then pulls its ID from every user's
// favourites. The two steps have no shared transaction; a failed cleanup is
// logged and counted, never surfaced to the caller - the favourites read
// path tolerates the dangling reference until it is gone.
func (s *EventService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.PullFavouriteFromAll(ctx, id); err != nil {
		observability.FavouritesCleanupFailures.Inc()
		middleware.Logger.ErrorContext(ctx, "favourites cleanup failed after event deletion",
			"event_id", id.Hex(), "error", err.Error())
	}
	return nil
}

// ListTypes returns the controlled vocabulary for the add/edit forms,
// sorted alphabetically.
func (s *EventService) ListTypes(ctx context.Context) ([]models.EventType, error) {
	return s.typeRepo.List(ctx)
}

// ListByCreator returns the events a user created, newest first.
func (s *EventService) ListByCreator(ctx context.Context, username string) ([]models.Event, error) {
	return s.eventRepo.ListByCreator(ctx, username)
}
