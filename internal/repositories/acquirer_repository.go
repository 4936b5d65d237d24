package repositories

import (
	"context"
	"errors"

	"saldo/internal/models"

	"gorm.io/gorm"
)

var ErrAcquirerNotFound = errors.New("acquirer not found")

// AcquirerRepository reads acquirer routing configuration.
type AcquirerRepository interface {
	ListEnabled(ctx context.Context) ([]models.Acquirer, error)
	GetByReference(ctx context.Context, reference string) (*models.Acquirer, error)
	Upsert(ctx context.Context, acquirer *models.Acquirer) error
}

type acquirerRepository struct {
	db *gorm.DB
}

func NewAcquirerRepository(db *gorm.DB) AcquirerRepository {
	return &acquirerRepository{db: db}
}

func (r *acquirerRepository) ListEnabled(ctx context.Context) ([]models.Acquirer, error) {
	var acquirers []models.Acquirer
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("reference asc").
		Find(&acquirers).Error
	return acquirers, err
}

func (r *acquirerRepository) GetByReference(ctx context.Context, reference string) (*models.Acquirer, error) {
	var acquirer models.Acquirer
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&acquirer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAcquirerNotFound
		}
		return nil, err
	}
	return &acquirer, nil
}

func (r *acquirerRepository) Upsert(ctx context.Context, acquirer *models.Acquirer) error {
	existing, err := r.GetByReference(ctx, acquirer.Reference)
	if err != nil {
		if errors.Is(err, ErrAcquirerNotFound) {
			return r.db.WithContext(ctx).Create(acquirer).Error
		}
		return err
	}
	acquirer.ID = existing.ID
	return r.db.WithContext(ctx).Save(acquirer).Error
}
