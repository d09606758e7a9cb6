package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// Collection implements ports.ResourceStore for records whose bson form keys
// the id as _id and carries created_at. Read-modify-write operations are
// serialized within the process.
type Collection[T ports.Record] struct {
	mu  sync.Mutex
	col *mongo.Collection
}

var _ ports.ResourceStore[domain.Issue] = (*Collection[domain.Issue])(nil)

func NewCollection[T ports.Record](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{col: db.Collection(name)}
}

func NewIssueCollection(db *mongo.Database) *Collection[domain.Issue] {
	return NewCollection[domain.Issue](db, collectionIssues)
}

func NewReportCollection(db *mongo.Database) *Collection[domain.Report] {
	return NewCollection[domain.Report](db, collectionReports)
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.col.Name(), err)
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.col.Name(), err)
	}
	return out, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var v T
	if err := c.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return v, domain.ErrRecordNotFound
		}
		return v, fmt.Errorf("find %s/%s: %w", c.col.Name(), id, err)
	}
	return v, nil
}

func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := c.col.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRecordConflict
		}
		return fmt.Errorf("insert %s: %w", c.col.Name(), err)
	}
	return nil
}

func (c *Collection[T]) InsertUnless(ctx context.Context, item T, conflict func(existing T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conflict != nil {
		existing, err := c.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if conflict(e) {
				return domain.ErrRecordConflict
			}
		}
	}
	return c.Insert(ctx, item)
}

func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	return c.UpdateUnless(ctx, id, mutate, nil)
}

func (c *Collection[T]) UpdateUnless(ctx context.Context, id string, mutate func(*T) error, conflict func(existing T) bool) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, err := c.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if conflict != nil {
		existing, err := c.List(ctx)
		if err != nil {
			return zero, err
		}
		for _, e := range existing {
			if e.RecordID() != id && conflict(e) {
				return zero, domain.ErrRecordConflict
			}
		}
	}
	if err := mutate(&item); err != nil {
		return zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.ReplaceOne(ctx, bson.M{"_id": id}, item)
	if err != nil {
		return zero, fmt.Errorf("replace %s/%s: %w", c.col.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return zero, domain.ErrRecordNotFound
	}
	return item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := c.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", c.col.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// EnsureIndexes creates the listing index on created_at.
func (c *Collection[T]) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := c.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	})
	return err
}
