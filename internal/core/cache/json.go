package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrSkip returned by a loader means "nothing to cache"; GetOrLoadJSON then
// returns nil, nil and nothing is stored.
var ErrSkip = errors.New("cache: skip")

func GetOrLoadJSON[T any](
	c Store,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		if v == nil {
			return nil, ErrSkip
		}
		return json.Marshal(v)
	})
	if errors.Is(err, ErrSkip) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return &out, nil
}
