package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

const maxTxRetries = 5

// Collection keys.
const (
	KeyUsers   = "mrt_users"
	KeyIssues  = "mrt_issues"
	KeyReports = "mrt_reports"
)

// Collection stores one record collection in a Redis hash (field = record
// id). Conditional mutations run in WATCH/MULTI transactions on the hash key
// and are retried when another writer got in first.
type Collection[T ports.Record] struct {
	client *redis.Client
	key    string
	codec  Codec[T]
}

var _ ports.ResourceStore[domain.User] = (*Collection[domain.User])(nil)

func NewCollection[T ports.Record](client *redis.Client, key string, codec Codec[T]) *Collection[T] {
	return &Collection[T]{client: client, key: key, codec: codec}
}

// NewUserCollection returns the user collection with the credential-aware codec.
func NewUserCollection(client *redis.Client) *Collection[domain.User] {
	return NewCollection[domain.User](client, KeyUsers, UserCodec{})
}

func NewIssueCollection(client *redis.Client) *Collection[domain.Issue] {
	return NewCollection[domain.Issue](client, KeyIssues, JSONCodec[domain.Issue]{})
}

func NewReportCollection(client *redis.Client) *Collection[domain.Report] {
	return NewCollection[domain.Report](client, KeyReports, JSONCodec[domain.Report]{})
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", c.key, err)
	}
	return c.decodeAll(raw)
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var zero T
	raw, err := c.client.HGet(ctx, c.key, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, domain.ErrRecordNotFound
		}
		return zero, fmt.Errorf("redis get %s/%s: %w", c.key, id, err)
	}
	return c.codec.Unmarshal(raw)
}

func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	data, err := c.codec.Marshal(item)
	if err != nil {
		return err
	}
	ok, err := c.client.HSetNX(ctx, c.key, item.RecordID(), data).Result()
	if err != nil {
		return fmt.Errorf("redis insert %s: %w", c.key, err)
	}
	if !ok {
		return domain.ErrRecordConflict
	}
	return nil
}

func (c *Collection[T]) InsertUnless(ctx context.Context, item T, conflict func(existing T) bool) error {
	data, err := c.codec.Marshal(item)
	if err != nil {
		return err
	}

	return c.transact(ctx, func(ctx context.Context, tx *redis.Tx) error {
		raw, err := tx.HGetAll(ctx, c.key).Result()
		if err != nil {
			return err
		}
		if _, taken := raw[item.RecordID()]; taken {
			return domain.ErrRecordConflict
		}
		existing, err := c.decodeAll(raw)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if conflict != nil && conflict(e) {
				return domain.ErrRecordConflict
			}
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, c.key, item.RecordID(), data)
			return nil
		})
		return err
	})
}

func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	return c.UpdateUnless(ctx, id, mutate, nil)
}

func (c *Collection[T]) UpdateUnless(ctx context.Context, id string, mutate func(*T) error, conflict func(existing T) bool) (T, error) {
	var updated T
	err := c.transact(ctx, func(ctx context.Context, tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, c.key, id).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrRecordNotFound
			}
			return err
		}
		if conflict != nil {
			all, err := tx.HGetAll(ctx, c.key).Result()
			if err != nil {
				return err
			}
			delete(all, id)
			others, err := c.decodeAll(all)
			if err != nil {
				return err
			}
			for _, e := range others {
				if conflict(e) {
					return domain.ErrRecordConflict
				}
			}
		}
		item, err := c.codec.Unmarshal(raw)
		if err != nil {
			return err
		}
		if err := mutate(&item); err != nil {
			return err
		}
		data, err := c.codec.Marshal(item)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, c.key, id, data)
			return nil
		})
		if err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := c.client.HDel(ctx, c.key, id).Result()
	if err != nil {
		return fmt.Errorf("redis delete %s/%s: %w", c.key, id, err)
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// transact runs fn under WATCH on the collection key, retrying when the
// transaction is aborted by a concurrent write.
func (c *Collection[T]) transact(ctx context.Context, fn func(context.Context, *redis.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := c.client.Watch(ctx, func(tx *redis.Tx) error {
			return fn(ctx, tx)
		}, c.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis %s: transaction retries exhausted", c.key)
}

func (c *Collection[T]) decodeAll(raw map[string]string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for id, v := range raw {
		item, err := c.codec.Unmarshal([]byte(v))
		if err != nil {
			return nil, fmt.Errorf("redis decode %s/%s: %w", c.key, id, err)
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].RecordCreatedAt(), out[j].RecordCreatedAt()
		if a.Equal(b) {
			return out[i].RecordID() < out[j].RecordID()
		}
		return a.Before(b)
	})
	return out, nil
}
