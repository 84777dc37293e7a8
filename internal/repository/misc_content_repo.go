package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// PromptRepository defines persistence operations for prompts.
type PromptRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.Prompt, int64, error)
	GetByID(ctx context.Context, id string) (models.Prompt, error)
	Create(ctx context.Context, prompt *models.Prompt) error
	Update(ctx context.Context, prompt *models.Prompt) error
	Delete(ctx context.Context, id string) error
}

type promptRepository struct {
	documentRepository[models.Prompt]
}

// NewPromptRepository instantiates a GORM-backed repository.
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{documentRepository[models.Prompt]{db: db}}
}

func (r *promptRepository) List(ctx context.Context, filter ContentFilter) ([]models.Prompt, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Prompt{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.Tool != "" {
		query = query.Where("LOWER(tool) = LOWER(?)", filter.Tool)
	}
	return r.page(query, "created_at DESC", filter.Page, filter.PageSize)
}

// PaymentRepository defines persistence operations for payments.
type PaymentRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.Payment, int64, error)
	ListByStatus(ctx context.Context, status string) ([]models.Payment, error)
	GetByID(ctx context.Context, id string) (models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type paymentRepository struct {
	documentRepository[models.Payment]
}

// NewPaymentRepository instantiates a GORM-backed repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{documentRepository[models.Payment]{db: db}}
}

func (r *paymentRepository) List(ctx context.Context, filter ContentFilter) ([]models.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(user_email) LIKE ? OR LOWER(reference) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ParentID != "" {
		query = query.Where("course_id = ?", filter.ParentID)
	}
	return r.page(query, "created_at DESC", filter.Page, filter.PageSize)
}

// ListByStatus returns every payment, oldest first. An empty status matches all.
func (r *paymentRepository) ListByStatus(ctx context.Context, status string) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// CertificateTemplateRepository defines persistence operations for certificate templates.
type CertificateTemplateRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.CertificateTemplate, int64, error)
	GetByID(ctx context.Context, id string) (models.CertificateTemplate, error)
	Create(ctx context.Context, template *models.CertificateTemplate) error
	Update(ctx context.Context, template *models.CertificateTemplate) error
	Delete(ctx context.Context, id string) error
	ClearDefault(ctx context.Context, courseID, exceptID string) error
}

type certificateTemplateRepository struct {
	documentRepository[models.CertificateTemplate]
}

// NewCertificateTemplateRepository instantiates a GORM-backed repository.
func NewCertificateTemplateRepository(db *gorm.DB) CertificateTemplateRepository {
	return &certificateTemplateRepository{documentRepository[models.CertificateTemplate]{db: db}}
}

func (r *certificateTemplateRepository) List(ctx context.Context, filter ContentFilter) ([]models.CertificateTemplate, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CertificateTemplate{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(title) LIKE ?", pattern, pattern)
	}
	if filter.ParentID != "" {
		query = query.Where("course_id = ?", filter.ParentID)
	}
	return r.page(query, "created_at DESC", filter.Page, filter.PageSize)
}

// ClearDefault unsets the default flag on every template of the same course scope except exceptID.
func (r *certificateTemplateRepository) ClearDefault(ctx context.Context, courseID, exceptID string) error {
	return r.db.WithContext(ctx).Model(&models.CertificateTemplate{}).
		Where("course_id = ? AND id <> ? AND is_default = ?", courseID, exceptID, true).
		Update("is_default", false).Error
}
