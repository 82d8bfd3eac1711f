package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"customer-registry/internal/model"
)

const cachedCustomerTimeToLive = 10 * time.Minute

// CustomerCache keeps recently read customer aggregates, keyed by
// customer name. Entries are evicted whenever the aggregate changes.
type CustomerCache interface {
	FindByName(context.Context, string) (*model.Customer, error)
	EvictByName(context.Context, string) error
	Cache(context.Context, *model.Customer) error
}

type redisCustomerCache struct {
	client *redis.Client
}

// NewRedisCustomerCache builds customer cache over redis
func NewRedisCustomerCache(client *redis.Client) CustomerCache {
	return &redisCustomerCache{client: client}
}

func (r *redisCustomerCache) FindByName(ctx context.Context, name string) (*model.Customer, error) {
	res, err := r.client.Get(ctx, r.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var c model.Customer
	if err := msgpack.Unmarshal([]byte(res), &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *redisCustomerCache) EvictByName(ctx context.Context, name string) error {
	if _, err := r.client.Del(ctx, r.key(name)).Result(); err != nil {
		return err
	}
	return nil
}

func (r *redisCustomerCache) Cache(ctx context.Context, c *model.Customer) error {
	encoded, err := msgpack.Marshal(c)
	if err != nil {
		return err
	}

	_, err = r.client.SetNX(ctx, r.key(c.Name), encoded, cachedCustomerTimeToLive).Result()
	if err != nil {
		return err
	}
	return nil
}

func (r *redisCustomerCache) key(name string) string {
	return fmt.Sprintf("customer:%s", name)
}
