package repo

import (
	"context"
	"errors"
	"fmt"

	dmn "github.com/beka-birhanu/quill-api/domain"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DraftRepo handles the persistence of drafts.
type DraftRepo struct {
	collection *mongo.Collection
}

var _ i.DraftRepo = &DraftRepo{}

// NewDraftRepo creates a DraftRepo on the named collection.
func NewDraftRepo(client *mongo.Client, dbName, collectionName string) *DraftRepo {
	return &DraftRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save replaces the stored draft, inserting it if absent.
func (d *DraftRepo) Save(ctx context.Context, draft *dmn.Draft) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := d.collection.ReplaceOne(ctx, bson.M{"_id": draft.ID}, draft, opts); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// ByID retrieves a draft by its ID.
func (d *DraftRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var draft dmn.Draft
	if err := d.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&draft); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrDraftNotFound
		}
		return nil, fmt.Errorf("finding draft: %w", err)
	}
	return &draft, nil
}

// ByAuthor lists the drafts of one author, most recently edited first.
func (d *DraftRepo) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*dmn.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := d.collection.Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	drafts := []*dmn.Draft{}
	if err := cursor.All(ctx, &drafts); err != nil {
		return nil, fmt.Errorf("decoding drafts: %w", err)
	}
	return drafts, nil
}

// Delete removes a draft by its ID.
func (d *DraftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	res, err := d.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	if res.DeletedCount == 0 {
		return dmn.ErrDraftNotFound
	}
	return nil
}
