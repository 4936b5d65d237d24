package repositories

import (
	"context"
	"errors"

	"saldo/internal/models"

	"gorm.io/gorm"
)

var ErrApiKeyNotFound = errors.New("api key not found")

// ApiKeyRepository defines API key persistence. Rotation is a single
// database transaction so there is never more than one active key set.
type ApiKeyRepository interface {
	GetActiveByToken(ctx context.Context, token string) (*models.ApiKey, error)
	Rotate(ctx context.Context, key *models.ApiKey) error
	RevokeAllForUser(ctx context.Context, userID uint) error
}

type apiKeyRepository struct {
	db *gorm.DB
}

func NewApiKeyRepository(db *gorm.DB) ApiKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) GetActiveByToken(ctx context.Context, token string) (*models.ApiKey, error) {
	var key models.ApiKey
	err := r.db.WithContext(ctx).
		Where("token = ? AND status = ?", token, models.ApiKeyStatusActive).
		First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApiKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

// Rotate revokes every active key of the owning user and creates the new
// one atomically. Latest-issued wins.
func (r *apiKeyRepository) Rotate(ctx context.Context, key *models.ApiKey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ApiKey{}).
			Where("user_id = ? AND status = ?", key.UserID, models.ApiKeyStatusActive).
			Update("status", models.ApiKeyStatusRevoked).Error; err != nil {
			return err
		}
		return tx.Create(key).Error
	})
}

func (r *apiKeyRepository) RevokeAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.ApiKey{}).
		Where("user_id = ? AND status = ?", userID, models.ApiKeyStatusActive).
		Update("status", models.ApiKeyStatusRevoked).Error
}
