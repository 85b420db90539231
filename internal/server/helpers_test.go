package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatherly/internal/config"
	"gatherly/internal/models"
	"gatherly/internal/service"
	"gatherly/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) AddFavourite(ctx context.Context, username string, eventID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, username, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) RemoveFavourite(ctx context.Context, username string, eventID primitive.ObjectID) error {
	args := m.Called(ctx, username, eventID)
	return args.Error(0)
}

func (m *MockUserRepository) PullFavouriteFromAll(ctx context.Context, eventID primitive.ObjectID) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

// MockEventRepository is a mock of the EventRepository interface
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) GetManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Event, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]models.Event, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Event, int64, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]models.Event), args.Get(1).(int64), args.Error(2)
}

func (m *MockEventRepository) ListByCreator(ctx context.Context, username string) ([]models.Event, error) {
	args := m.Called(ctx, username)
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) Patch(ctx context.Context, id primitive.ObjectID, patch models.EventPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockEventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEventTypeRepository is a mock of the EventTypeRepository interface
type MockEventTypeRepository struct {
	mock.Mock
}

func (m *MockEventTypeRepository) List(ctx context.Context) ([]models.EventType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.EventType), args.Error(1)
}

func (m *MockEventTypeRepository) Create(ctx context.Context, t *models.EventType) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

type testMocks struct {
	users  *MockUserRepository
	events *MockEventRepository
	types  *MockEventTypeRepository
}

// newTestServer builds a Server over mock repositories and a miniredis
// backed session store, plus a fiber app with the session loader installed.
func newTestServer(t *testing.T) (*Server, *fiber.App, *testMocks) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	mocks := &testMocks{
		users:  new(MockUserRepository),
		events: new(MockEventRepository),
		types:  new(MockEventTypeRepository),
	}

	s := &Server{
		config:    &config.Config{Env: "test"},
		redis:     rdb,
		sessions:  session.NewStore(rdb, "test-secret", time.Hour),
		userRepo:  mocks.users,
		eventRepo: mocks.events,
		typeRepo:  mocks.types,
	}
	s.authService = service.NewAuthService(mocks.users)
	s.eventService = service.NewEventService(mocks.events, mocks.types, mocks.users)
	s.favouriteService = service.NewFavouriteService(mocks.users, mocks.events)

	app := fiber.New()
	app.Use(s.SessionLoader())
	return s, app, mocks
}

// loginAs starts a real session through the store and returns its cookie.
func loginAs(t *testing.T, s *Server, username string) *http.Cookie {
	t.Helper()

	app := fiber.New()
	app.Post("/__login", func(c *fiber.Ctx) error {
		_, err := s.sessions.Start(c, username)
		return err
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/__login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}
