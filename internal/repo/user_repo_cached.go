package repo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-accounts/internal/core/cache"
	"go-gin-gorm-accounts/internal/domain"
)

// CachedUserRepo serves FindByID through a read-through cache and drops the
// entry on every write to that id. Everything else goes straight to the
// wrapped repository.
//
// A fill holds fill for reading from the load until the entry is stored, and
// invalidation takes it for writing, so a fill that read a row before a write
// can never land after that write's delete. This holds within one process
// only; other replicas sharing the cache rely on the TTL.
type CachedUserRepo struct {
	domain.UserRepository
	cache cache.Store
	ttl   time.Duration
	log   *zap.Logger
	fill  sync.RWMutex
}

func NewCachedUserRepo(next domain.UserRepository, c cache.Store, ttl time.Duration, log *zap.Logger) *CachedUserRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedUserRepo{UserRepository: next, cache: c, ttl: ttl, log: log}
}

func userKey(id uint) string { return fmt.Sprintf("user:%d", id) }

func (r *CachedUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	r.fill.RLock()
	defer r.fill.RUnlock()
	return cache.GetOrLoadJSON(r.cache, ctx, userKey(id), r.ttl, func(ctx context.Context) (*domain.User, error) {
		return r.UserRepository.FindByID(ctx, id)
	})
}

func (r *CachedUserRepo) Update(ctx context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	defer r.invalidate(ctx, id)
	return r.UserRepository.Update(ctx, id, p)
}

func (r *CachedUserRepo) UpdateMe(ctx context.Context, id uint, p domain.MePatch) (*domain.User, error) {
	defer r.invalidate(ctx, id)
	return r.UserRepository.UpdateMe(ctx, id, p)
}

func (r *CachedUserRepo) Delete(ctx context.Context, id uint) error {
	defer r.invalidate(ctx, id)
	return r.UserRepository.Delete(ctx, id)
}

func (r *CachedUserRepo) invalidate(ctx context.Context, id uint) {
	r.fill.Lock()
	defer r.fill.Unlock()
	if err := r.cache.Delete(ctx, userKey(id)); err != nil {
		r.log.Warn("user cache invalidation failed", zap.Uint("user_id", id), zap.Error(err))
	}
}
