// Package mongo implements the credential store on the MongoDB user
// collection the legacy deployment was built around. The postgres store is
// the primary backend; this one exists so the service can run against an
// unmigrated database.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tracknourish/tracknourish/internal/config"
	"github.com/tracknourish/tracknourish/internal/domain"
)

const usersCollection = "users"

// Store is a MongoDB-backed user repository.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

type userDoc struct {
	ID              string    `bson:"_id"`
	Email           string    `bson:"email"`
	HashedPassword  string    `bson:"hashedPassword"`
	FirstName       string    `bson:"firstName"`
	LastName        string    `bson:"lastName"`
	IsEmailVerified bool      `bson:"isEmailVerified"`
	RefreshToken    string    `bson:"refreshToken"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

// NewStore connects to MongoDB and ensures the unique email index.
func NewStore(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	users := client.Database(cfg.Database).Collection(usersCollection)

	_, err = users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create email index: %w", err)
	}

	return &Store{client: client, users: users}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func toDoc(user *domain.User) userDoc {
	return userDoc{
		ID:              user.ID.String(),
		Email:           user.Email,
		HashedPassword:  user.HashedPassword,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		IsEmailVerified: user.IsEmailVerified,
		RefreshToken:    user.RefreshToken,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func (d userDoc) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
	}
	return &domain.User{
		ID:              id,
		Email:           d.Email,
		HashedPassword:  d.HashedPassword,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		IsEmailVerified: d.IsEmailVerified,
		RefreshToken:    d.RefreshToken,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

// Create inserts a new user. Returns domain.ErrConflict when the email is
// already registered.
func (s *Store) Create(ctx context.Context, user *domain.User) error {
	_, err := s.users.InsertOne(ctx, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no user exists.
func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.get(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by ID. Returns (nil, nil) when no user exists.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.get(ctx, bson.M{"_id": id.String()})
}

func (s *Store) get(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toDomain()
}

// Save persists the user's mutable fields as a single-document update.
func (s *Store) Save(ctx context.Context, user *domain.User) error {
	update := bson.M{"$set": bson.M{
		"hashedPassword":  user.HashedPassword,
		"isEmailVerified": user.IsEmailVerified,
		"refreshToken":    user.RefreshToken,
		"updatedAt":       time.Now(),
	}}

	res, err := s.users.UpdateByID(ctx, user.ID.String(), update)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateRefreshToken swaps the stored refresh pointer only if it still equals
// current, so concurrent rotations for the same user have a single winner.
func (s *Store) UpdateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) (bool, error) {
	filter := bson.M{"_id": id.String(), "refreshToken": current}
	update := bson.M{"$set": bson.M{
		"refreshToken": next,
		"updatedAt":    time.Now(),
	}}

	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return res.MatchedCount > 0, nil
}
