package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// UploadRepository persists metadata about uploaded files.
type UploadRepository interface {
	Create(ctx context.Context, record *models.UploadRecord) error
	FindByChecksum(ctx context.Context, checksum string) (*models.UploadRecord, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs a repository for upload records.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, record *models.UploadRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByChecksum returns nil when no upload with the checksum exists.
func (r *uploadRepository) FindByChecksum(ctx context.Context, checksum string) (*models.UploadRecord, error) {
	var records []models.UploadRecord
	if err := r.db.WithContext(ctx).Where("checksum = ?", checksum).Limit(1).Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}
