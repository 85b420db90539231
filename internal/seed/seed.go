// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"gatherly/internal/database"
	"gatherly/internal/models"
	"gatherly/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// EventTypeVocabulary is the controlled vocabulary loaded into the types
// collection so create/edit forms have a selection list to offer.
var EventTypeVocabulary = []string{
	"Concert",
	"Conference",
	"Exhibition",
	"Festival",
	"Meetup",
	"Sports",
	"Theatre",
	"Workshop",
}

// Options tunes the shape of the generated data set.
type Options struct {
	// MaxDays is how far back created_on timestamps are spread.
	MaxDays int
}

// Seeder builds demo entities and persists them through the repositories.
type Seeder struct {
	db        *mongo.Database
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
	typeRepo  repository.EventTypeRepository
	opts      Options
	rng       *rand.Rand
}

// NewSeeder creates a new Seeder bound to the provided Mongo database.
func NewSeeder(db *mongo.Database, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		eventRepo: repository.NewEventRepository(db),
		typeRepo:  repository.NewEventTypeRepository(db),
		opts:      opts,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll drops the seeded collections' documents.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, name := range []string{
		database.UsersCollection,
		database.EventsCollection,
		database.TypesCollection,
	} {
		if _, err := s.db.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			return fmt.Errorf("clearing %s: %w", name, err)
		}
	}
	return nil
}

// SeedTypes loads the event type vocabulary. Existing entries are kept.
func (s *Seeder) SeedTypes(ctx context.Context) error {
	for _, name := range EventTypeVocabulary {
		count, err := s.db.Collection(database.TypesCollection).
			CountDocuments(ctx, bson.D{{Key: "event_type", Value: name}})
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.typeRepo.Create(ctx, &models.EventType{EventType: name}); err != nil {
			return err
		}
	}
	return nil
}

// SeedUsers creates n fake accounts, all with the password "password123".
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username:   strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
			Password:   string(hashed),
			Email:      strings.ToLower(gofakeit.Email()),
			Favourites: []primitive.ObjectID{},
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if models.HasCode(err, models.CodeDuplicateUser) {
				continue
			}
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedDemoUser creates a predictable login for manual testing.
func (s *Seeder) SeedDemoUser(ctx context.Context, username string) (*models.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:   username,
		Password:   string(hashed),
		Email:      username + "@example.com",
		Favourites: []primitive.ObjectID{},
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SeedEvents creates n fake events attributed to random seeded users, with
// created_on spread over the recent past so pagination looks realistic.
func (s *Seeder) SeedEvents(ctx context.Context, users []*models.User, n int) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to attribute events to")
	}
	maxDays := s.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	for i := 0; i < n; i++ {
		owner := users[s.rng.Intn(len(users))]
		daysBack := s.rng.Intn(maxDays)
		hoursBack := s.rng.Intn(24)

		event := &models.Event{
			EventName:   gofakeit.HipsterSentence(4),
			EventType:   EventTypeVocabulary[s.rng.Intn(len(EventTypeVocabulary))],
			Location:    gofakeit.City() + ", " + gofakeit.Country(),
			Description: gofakeit.Paragraph(1, 3, 8, " "),
			Date:        gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 6, 0)).Format("02 January, 2006"),
			CreatedBy:   owner.Username,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			CreatedOn:   time.Now().UTC().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour),
		}
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return err
		}

		// sprinkle some favourites so profiles are not empty
		if s.rng.Intn(3) == 0 {
			fan := users[s.rng.Intn(len(users))]
			if _, err := s.userRepo.AddFavourite(ctx, fan.Username, event.ID); err != nil {
				log.Printf("favourite seed skipped for %s: %v", fan.Username, err)
			}
		}
	}
	return nil
}
