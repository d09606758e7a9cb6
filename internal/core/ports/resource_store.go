package ports

import (
	"context"
	"time"
)

// Record is implemented by every value kept in a ResourceStore.
type Record interface {
	RecordID() string
	RecordCreatedAt() time.Time
}

// ResourceStore is the storage contract for one collection of records.
// Implementations serialize mutations on the collection; reads may run
// concurrently.
type ResourceStore[T Record] interface {
	// List returns every record ordered by creation time, oldest first.
	List(ctx context.Context) ([]T, error)
	// Get returns domain.ErrRecordNotFound when id is unknown.
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, item T) error
	// InsertUnless inserts item unless an existing record satisfies conflict,
	// in which case it returns domain.ErrRecordConflict. The check and the
	// insert are atomic with respect to other mutations of the collection.
	InsertUnless(ctx context.Context, item T, conflict func(existing T) bool) error
	// Update applies mutate to the stored record and persists the result.
	// An error from mutate aborts the update and is returned unchanged.
	Update(ctx context.Context, id string, mutate func(*T) error) (T, error)
	// UpdateUnless is Update guarded by conflict, which is evaluated against
	// every other record of the collection; a match returns
	// domain.ErrRecordConflict and leaves the record untouched. The check and
	// the write are atomic with respect to other mutations of the collection.
	UpdateUnless(ctx context.Context, id string, mutate func(*T) error, conflict func(existing T) bool) (T, error)
	// Delete returns domain.ErrRecordNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
}
