package auditlog

import (
	"context"

	"github.com/angelmondragon/opspulse-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists audit rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, row *models.APILog) error
	Since(ctx context.Context, sinceMs int64) ([]models.APILog, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Insert(ctx context.Context, row *models.APILog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// Since returns rows with ts >= sinceMs, oldest first.
func (r *repositoryImpl) Since(ctx context.Context, sinceMs int64) ([]models.APILog, error) {
	var rows []models.APILog
	err := r.db.WithContext(ctx).
		Where("ts >= ?", sinceMs).
		Order("ts ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
