// Package repo persists domain entities in MongoDB.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	writeTimeout = time.Second
	readTimeout  = 2 * time.Second
)

// UserRepo handles the persistence of user models.
type UserRepo struct {
	collection *mongo.Collection
}

var _ i.UserRepo = &UserRepo{}

// NewUserRepo creates a new UserRepo with the given MongoDB client, database name, and collection name.
func NewUserRepo(client *mongo.Client, dbName, collectionName string) *UserRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &UserRepo{
		collection: collection,
	}
}

// Save inserts or updates a user in the repository.
// If the user already exists, it updates the existing record.
// If the user does not exist, it adds a new record.
func (u *UserRepo) Save(ctx context.Context, user *dmn.User) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	filter := bson.M{"_id": user.ID}
	update := bson.M{
		"$set": bson.M{
			"username":     user.Username,
			"passwordHash": user.PasswordHash,
			"isAdmin":      user.IsAdmin,
			"updatedAt":    user.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"createdAt": user.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := u.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return dmn.ErrUsernameConflict
		}
		return fmt.Errorf("saving user: %w", err)
	}

	return nil
}

// ByID retrieves a user by their ID.
// Returns an error if the user is not found or if an unexpected error occurs.
func (u *UserRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.User, error) {
	return u.findOne(ctx, bson.M{"_id": id})
}

// ByUsername retrieves a user by their username.
// Returns an error if the user is not found or if an unexpected error occurs.
func (u *UserRepo) ByUsername(ctx context.Context, username string) (*dmn.User, error) {
	return u.findOne(ctx, bson.M{"username": username})
}

func (u *UserRepo) findOne(ctx context.Context, filter bson.M) (*dmn.User, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var user dmn.User
	if err := u.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &user, nil
}
