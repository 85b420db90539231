package service

import (
	"context"

	"gatherly/internal/models"
	"gatherly/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FavouriteService maintains each user's ordered list of favourite events.
type FavouriteService struct {
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
}

// NewFavouriteService returns a new FavouriteService.
func NewFavouriteService(userRepo repository.UserRepository, eventRepo repository.EventRepository) *FavouriteService {
	return &FavouriteService{userRepo: userRepo, eventRepo: eventRepo}
}

// Add appends eventID to the user's favourites. The event must exist.
// Adding an event that is already favourited reports AlreadyFavourited -
// an informational state, not a failure: the list is unchanged and still
// contains the ID exactly once.
func (s *FavouriteService) Add(ctx context.Context, username string, eventID primitive.ObjectID) error {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return err
	}

	added, err := s.userRepo.AddFavourite(ctx, username, eventID)
	if err != nil {
		return err
	}
	if !added {
		return models.NewAlreadyFavouritedError()
	}
	return nil
}

// Remove deletes eventID from the user's favourites. An absent ID is a
// silent no-op.
func (s *FavouriteService) Remove(ctx context.Context, username string, eventID primitive.ObjectID) error {
	return s.userRepo.RemoveFavourite(ctx, username, eventID)
}

// List resolves the user's favourite IDs to events, preserving the order of
// addition. IDs whose event has since been deleted are skipped, never
// reported - this is the tolerance that masks the unsynchronized
// delete-event cleanup.
func (s *FavouriteService) List(ctx context.Context, username string) ([]models.Event, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.eventRepo.GetManyByIDs(ctx, user.Favourites)
}
