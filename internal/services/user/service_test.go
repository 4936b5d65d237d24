package user

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"saldo/internal/models"
	"saldo/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	user    *models.User
	updates int
	lookups int
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, repositories.ErrUserNotFound
	}
	return f.user, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.lookups++
	if f.user == nil || f.user.Username != username {
		return nil, repositories.ErrUserNotFound
	}
	return f.user, nil
}
func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.updates++
	f.user = user
	return nil
}
func (f *fakeUserRepo) UpdateStatus(ctx context.Context, userID uint, status string) error {
	return nil
}
func (f *fakeUserRepo) IncrementTokenVersion(ctx context.Context, userID uint) error { return nil }

type fakeTxRepo struct {
	inflows  decimal.Decimal
	outflows decimal.Decimal
	sums     int
}

func (f *fakeTxRepo) Create(ctx context.Context, tx *models.Transaction) error { return nil }
func (f *fakeTxRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return nil, repositories.ErrTransactionNotFound
}
func (f *fakeTxRepo) GetByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Transaction, error) {
	return nil, repositories.ErrTransactionNotFound
}
func (f *fakeTxRepo) GetByProviderID(ctx context.Context, providerTransactionID string) (*models.Transaction, error) {
	return nil, repositories.ErrTransactionNotFound
}
func (f *fakeTxRepo) Update(ctx context.Context, tx *models.Transaction) error { return nil }
func (f *fakeTxRepo) TransitionState(ctx context.Context, id string, from []string, to string) error {
	return nil
}
func (f *fakeTxRepo) MarkSettled(ctx context.Context, id string, from []string, at time.Time) error {
	return nil
}
func (f *fakeTxRepo) SumSettledByDirection(ctx context.Context, userID uint, direction string) (decimal.Decimal, error) {
	f.sums++
	if direction == models.DirectionDeposit {
		return f.inflows, nil
	}
	return f.outflows, nil
}

type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return repositories.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

func (m *memoryCache) Close() error { return nil }

func newTestService(t *testing.T) (Service, *fakeUserRepo, *fakeTxRepo, *memoryCache) {
	t.Helper()
	users := &fakeUserRepo{user: &models.User{
		Model:    gorm.Model{ID: 1},
		Email:    "alice@example.com",
		Username: "alice",
		Name:     "Alice",
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}}
	txns := &fakeTxRepo{
		inflows:  decimal.NewFromInt(1500),
		outflows: decimal.NewFromInt(300),
	}
	cache := newMemoryCache()
	return NewService(users, txns, cache), users, txns, cache
}

func TestProfileProjectsUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	view, err := svc.Profile(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(1), view.ID)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "alice@example.com", view.Email)
	assert.Equal(t, models.UserStatusActive, view.Status)

	_, err = svc.Profile(context.Background(), "nobody")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestProfileCacheHitSkipsDatabase(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, users.lookups)

	// The cached view is served without revisiting the user table.
	view, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, 1, users.lookups)
}

func TestBalanceCachesAggregates(t *testing.T) {
	svc, _, txns, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.TotalInflows.Equal(decimal.NewFromInt(1500)))
	assert.True(t, view.TotalOutflows.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, 2, txns.sums)

	// Second read comes from the cache, not the aggregate query.
	_, err = svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, txns.sums)
}

func TestBalanceReloadsAfterInvalidation(t *testing.T) {
	svc, _, txns, cache := newTestService(t)
	ctx := context.Background()

	_, err := svc.Balance(ctx, 1)
	require.NoError(t, err)

	// A settlement elsewhere invalidates the key; the next read sees it.
	txns.inflows = decimal.NewFromInt(2000)
	require.NoError(t, cache.Invalidate(ctx, repositories.BalanceCacheKey("alice")))

	view, err := svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.TotalInflows.Equal(decimal.NewFromInt(2000)))
}

func TestUpdateProfileInvalidatesCachedView(t *testing.T) {
	svc, users, _, cache := newTestService(t)
	ctx := context.Background()

	// Warm the cached profile.
	_, err := svc.Profile(ctx, "alice")
	require.NoError(t, err)
	_, warm := cache.entries[repositories.ProfileCacheKey("alice")]
	require.True(t, warm)

	gender := "feminino"
	view, err := svc.UpdateProfile(ctx, 1, ProfileUpdate{Name: "Alice Lima", Gender: &gender})
	require.NoError(t, err)
	assert.Equal(t, "Alice Lima", view.Name)
	require.NotNil(t, view.Gender)
	assert.Equal(t, "feminino", *view.Gender)
	assert.Equal(t, 1, users.updates)

	_, stillCached := cache.entries[repositories.ProfileCacheKey("alice")]
	assert.False(t, stillCached, "stale profile must be evicted before the update returns")

	// Empty fields leave the stored values untouched.
	view, err = svc.UpdateProfile(ctx, 1, ProfileUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Alice Lima", view.Name)
}
