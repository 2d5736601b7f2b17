package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-accounts/internal/domain"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

func (m *memStore) GetOrLoad(ctx context.Context, key string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	m.mu.Lock()
	b, ok := m.data[key]
	m.mu.Unlock()
	if ok {
		return b, nil
	}
	b, err := load(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return b, nil
}

func (m *memStore) Delete(_ context.Context, keys ...string) error {
	if m.fail {
		return errors.New("redis down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockUserRepo struct {
	domain.UserRepository
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, id uint, p domain.UserPatch) (*domain.User, error) {
	args := m.Called(ctx, id, p)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func TestCachedUserRepo_FindByIDHitsStoreOnce(t *testing.T) {
	next := &mockUserRepo{}
	next.On("FindByID", mock.Anything, uint(1)).Return(&domain.User{ID: 1, Email: "a@x.io"}, nil).Once()
	store := &memStore{data: map[string][]byte{}}
	r := NewCachedUserRepo(next, store, time.Minute, nil)

	for i := 0; i < 3; i++ {
		u, err := r.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "a@x.io", u.Email)
	}
	next.AssertExpectations(t)
	assert.Contains(t, store.data, "user:1")
}

func TestCachedUserRepo_MissIsNotCached(t *testing.T) {
	next := &mockUserRepo{}
	next.On("FindByID", mock.Anything, uint(2)).Return(nil, nil).Twice()
	store := &memStore{data: map[string][]byte{}}
	r := NewCachedUserRepo(next, store, time.Minute, nil)

	for i := 0; i < 2; i++ {
		u, err := r.FindByID(context.Background(), 2)
		require.NoError(t, err)
		assert.Nil(t, u)
	}
	next.AssertExpectations(t)
	assert.Empty(t, store.data)
}

func TestCachedUserRepo_WritesInvalidate(t *testing.T) {
	next := &mockUserRepo{}
	next.On("FindByID", mock.Anything, uint(1)).Return(&domain.User{ID: 1, Email: "old@x.io"}, nil).Once()
	next.On("Update", mock.Anything, uint(1), mock.Anything).Return(&domain.User{ID: 1, Email: "old@x.io", Role: domain.RoleAdmin}, nil)
	next.On("Delete", mock.Anything, uint(1)).Return(nil)
	store := &memStore{data: map[string][]byte{}}
	r := NewCachedUserRepo(next, store, time.Minute, nil)

	_, err := r.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.Contains(t, store.data, "user:1")

	_, err = r.Update(context.Background(), 1, domain.UserPatch{Role: domain.Value(domain.RoleAdmin)})
	require.NoError(t, err)
	assert.NotContains(t, store.data, "user:1")

	store.data["user:1"] = []byte(`{"id":1}`)
	require.NoError(t, r.Delete(context.Background(), 1))
	assert.NotContains(t, store.data, "user:1")
}

func TestCachedUserRepo_InFlightFillDoesNotOutliveWrite(t *testing.T) {
	loading := make(chan struct{})
	release := make(chan struct{})
	written := make(chan struct{})

	next := &mockUserRepo{}
	next.On("FindByID", mock.Anything, uint(1)).
		Run(func(mock.Arguments) { close(loading); <-release }).
		Return(&domain.User{ID: 1, Role: domain.RoleAdmin}, nil).Once()
	next.On("FindByID", mock.Anything, uint(1)).Return(&domain.User{ID: 1, Role: domain.RoleUser}, nil)
	next.On("Update", mock.Anything, uint(1), mock.Anything).
		Run(func(mock.Arguments) { close(written) }).
		Return(&domain.User{ID: 1, Role: domain.RoleUser}, nil)
	store := &memStore{data: map[string][]byte{}}
	r := NewCachedUserRepo(next, store, time.Minute, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = r.FindByID(context.Background(), 1)
	}()
	<-loading
	go func() {
		defer wg.Done()
		_, _ = r.Update(context.Background(), 1, domain.UserPatch{Role: domain.Value(domain.RoleUser)})
	}()
	<-written
	close(release)
	wg.Wait()

	u, err := r.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	next.AssertExpectations(t)
}

func TestCachedUserRepo_InvalidationFailureDoesNotFailWrite(t *testing.T) {
	next := &mockUserRepo{}
	next.On("Delete", mock.Anything, uint(3)).Return(domain.ErrNotFound)
	r := NewCachedUserRepo(next, &memStore{data: map[string][]byte{}, fail: true}, time.Minute, nil)

	err := r.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
