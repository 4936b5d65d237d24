package apikey

import (
	"context"
	"testing"

	"saldo/internal/models"
	"saldo/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeKeyRepo stores api keys in memory, rotation semantics included.
type fakeKeyRepo struct {
	keys []*models.ApiKey
}

func (f *fakeKeyRepo) GetActiveByToken(ctx context.Context, token string) (*models.ApiKey, error) {
	for _, key := range f.keys {
		if key.Token == token && key.Status == models.ApiKeyStatusActive {
			return key, nil
		}
	}
	return nil, repositories.ErrApiKeyNotFound
}

func (f *fakeKeyRepo) Rotate(ctx context.Context, key *models.ApiKey) error {
	for _, existing := range f.keys {
		if existing.UserID == key.UserID && existing.Status == models.ApiKeyStatusActive {
			existing.Status = models.ApiKeyStatusRevoked
		}
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeKeyRepo) RevokeAllForUser(ctx context.Context, userID uint) error {
	for _, existing := range f.keys {
		if existing.UserID == userID && existing.Status == models.ApiKeyStatusActive {
			existing.Status = models.ApiKeyStatusRevoked
		}
	}
	return nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepo) UpdateStatus(ctx context.Context, userID uint, status string) error {
	return nil
}
func (f *fakeUserRepo) IncrementTokenVersion(ctx context.Context, userID uint) error { return nil }

func newTestService(t *testing.T) (Service, *fakeKeyRepo, *models.User) {
	t.Helper()
	user := &models.User{
		Model:    gorm.Model{ID: 7},
		Username: "alice",
		Status:   models.UserStatusActive,
	}
	keys := &fakeKeyRepo{}
	svc := NewService(keys, &fakeUserRepo{users: map[uint]*models.User{user.ID: user}})
	return svc, keys, user
}

func hashSecret(t *testing.T, secret string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, keys, user := newTestService(t)
	keys.keys = append(keys.keys, &models.ApiKey{
		UserID:     user.ID,
		Token:      "tok-1",
		SecretHash: hashSecret(t, "s3cret"),
		Status:     models.ApiKeyStatusActive,
	})

	got, err := svc.Authenticate(ctx, "tok-1", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "", "s3cret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Authenticate(ctx, "tok-1", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Authenticate(ctx, "tok-1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "unknown-token", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRevokedKey(t *testing.T) {
	ctx := context.Background()
	svc, keys, user := newTestService(t)
	keys.keys = append(keys.keys, &models.ApiKey{
		UserID:     user.ID,
		Token:      "tok-old",
		SecretHash: hashSecret(t, "s3cret"),
		Status:     models.ApiKeyStatusRevoked,
	})

	_, err := svc.Authenticate(ctx, "tok-old", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueKeyPairRotates(t *testing.T) {
	ctx := context.Background()
	svc, keys, user := newTestService(t)

	first, err := svc.IssueKeyPair(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	require.NotEmpty(t, first.Secret)

	// The stored record holds a hash, never the plaintext secret.
	stored, err := keys.GetActiveByToken(ctx, first.Token)
	require.NoError(t, err)
	assert.NotEqual(t, first.Secret, stored.SecretHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.SecretHash), []byte(first.Secret)))

	second, err := svc.IssueKeyPair(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// Latest-issued wins: the old pair stops authenticating.
	_, err = svc.Authenticate(ctx, first.Token, first.Secret)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.Authenticate(ctx, second.Token, second.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}
