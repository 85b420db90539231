package service

import (
	"context"
	"testing"

	"gatherly/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFavouriteService_Add(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		eventID := primitive.NewObjectID()
		userRepo := noopUserRepo()
		var gotUser string
		userRepo.addFavouriteFn = func(_ context.Context, username string, id primitive.ObjectID) (bool, error) {
			gotUser = username
			assert.Equal(t, eventID, id)
			return true, nil
		}

		svc := NewFavouriteService(userRepo, noopEventRepo())
		require.NoError(t, svc.Add(context.Background(), "alice", eventID))
		assert.Equal(t, "alice", gotUser)
	})

	t.Run("Unknown event is rejected before writing", func(t *testing.T) {
		eventRepo := noopEventRepo()
		eventRepo.getByIDFn = func(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
			return nil, models.NewNotFoundError("Event", id.Hex())
		}
		userRepo := noopUserRepo()
		userRepo.addFavouriteFn = func(context.Context, string, primitive.ObjectID) (bool, error) {
			t.Fatal("favourite write should not happen for an unknown event")
			return false, nil
		}

		svc := NewFavouriteService(userRepo, eventRepo)
		err := svc.Add(context.Background(), "alice", primitive.NewObjectID())
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	t.Run("Duplicate add reports AlreadyFavourited", func(t *testing.T) {
		userRepo := noopUserRepo()
		userRepo.addFavouriteFn = func(context.Context, string, primitive.ObjectID) (bool, error) {
			return false, nil
		}

		svc := NewFavouriteService(userRepo, noopEventRepo())
		err := svc.Add(context.Background(), "alice", primitive.NewObjectID())
		assert.True(t, models.HasCode(err, models.CodeAlreadyFavourited))
	})
}

func TestFavouriteService_Remove(t *testing.T) {
	t.Parallel()

	t.Run("Absent entry is a silent no-op", func(t *testing.T) {
		svc := NewFavouriteService(noopUserRepo(), noopEventRepo())
		assert.NoError(t, svc.Remove(context.Background(), "alice", primitive.NewObjectID()))
	})
}

func TestFavouriteService_List(t *testing.T) {
	t.Parallel()

	t.Run("Resolves in order of addition, skipping dangling IDs", func(t *testing.T) {
		first := primitive.NewObjectID()
		dangling := primitive.NewObjectID()
		second := primitive.NewObjectID()

		userRepo := noopUserRepo()
		userRepo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
			return &models.User{
				Username:   "alice",
				Favourites: []primitive.ObjectID{first, dangling, second},
			}, nil
		}

		eventRepo := noopEventRepo()
		eventRepo.getManyByIDsFn = func(_ context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
			assert.Equal(t, []primitive.ObjectID{first, dangling, second}, ids)
			// the dangling ID resolves to nothing
			return []models.Event{{ID: first}, {ID: second}}, nil
		}

		svc := NewFavouriteService(userRepo, eventRepo)
		events, err := svc.List(context.Background(), "alice")
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, first, events[0].ID)
		assert.Equal(t, second, events[1].ID)
	})

	t.Run("Unknown user is NotFound", func(t *testing.T) {
		svc := NewFavouriteService(noopUserRepo(), noopEventRepo())
		_, err := svc.List(context.Background(), "nobody")
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}
