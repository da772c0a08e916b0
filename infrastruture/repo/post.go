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

// PostRepo handles the persistence of posts.
type PostRepo struct {
	collection *mongo.Collection
}

var _ i.PostRepo = &PostRepo{}

// NewPostRepo creates a PostRepo on the named collection.
func NewPostRepo(client *mongo.Client, dbName, collectionName string) *PostRepo {
	return &PostRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Save replaces the stored post, inserting it if absent.
func (p *PostRepo) Save(ctx context.Context, post *dmn.Post) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	if _, err := p.collection.ReplaceOne(ctx, bson.M{"_id": post.ID}, post, opts); err != nil {
		return fmt.Errorf("saving post: %w", err)
	}
	return nil
}

// ByID retrieves a post by its ID.
func (p *PostRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var post dmn.Post
	if err := p.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dmn.ErrPostNotFound
		}
		return nil, fmt.Errorf("finding post: %w", err)
	}
	return &post, nil
}

// ByStatus lists posts in the given status, newest first.
func (p *PostRepo) ByStatus(ctx context.Context, status dmn.PublishStatus) ([]*dmn.Post, error) {
	return p.find(ctx, bson.M{"status": status})
}

// ByAuthor lists the posts of one author, newest first.
func (p *PostRepo) ByAuthor(ctx context.Context, authorID uuid.UUID) ([]*dmn.Post, error) {
	return p.find(ctx, bson.M{"authorId": authorID})
}

// Delete removes a post by its ID.
func (p *PostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	res, err := p.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	if res.DeletedCount == 0 {
		return dmn.ErrPostNotFound
	}
	return nil
}

func (p *PostRepo) find(ctx context.Context, filter bson.M) ([]*dmn.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := p.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	posts := []*dmn.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decoding posts: %w", err)
	}
	return posts, nil
}
