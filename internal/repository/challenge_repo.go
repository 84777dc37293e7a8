package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// ChallengeRepository defines persistence operations for challenges.
type ChallengeRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.Challenge, int64, error)
	ListAll(ctx context.Context) ([]models.Challenge, error)
	GetByID(ctx context.Context, id string) (models.Challenge, error)
	GetByIDForUpdate(ctx context.Context, id string) (models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	Update(ctx context.Context, challenge *models.Challenge) error
	Delete(ctx context.Context, id string) error
}

type challengeRepository struct {
	documentRepository[models.Challenge]
}

// NewChallengeRepository instantiates a GORM-backed repository.
func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{documentRepository[models.Challenge]{db: db}}
}

func (r *challengeRepository) List(ctx context.Context, filter ContentFilter) ([]models.Challenge, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Challenge{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	return r.page(query, "created_at DESC", filter.Page, filter.PageSize)
}

// ChallengeDayRepository defines persistence operations for challenge days.
type ChallengeDayRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.ChallengeDay, int64, error)
	ListByChallenge(ctx context.Context, challengeID string) ([]models.ChallengeDay, error)
	FindByDay(ctx context.Context, challengeID string, day int) (*models.ChallengeDay, error)
	GetByID(ctx context.Context, id string) (models.ChallengeDay, error)
	MaxDay(ctx context.Context, challengeID string) (int, error)
	Create(ctx context.Context, day *models.ChallengeDay) error
	Update(ctx context.Context, day *models.ChallengeDay) error
	Delete(ctx context.Context, id string) error
	DeleteByChallenge(ctx context.Context, challengeID string) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type challengeDayRepository struct {
	documentRepository[models.ChallengeDay]
}

// NewChallengeDayRepository instantiates a GORM-backed repository.
func NewChallengeDayRepository(db *gorm.DB) ChallengeDayRepository {
	return &challengeDayRepository{documentRepository[models.ChallengeDay]{db: db}}
}

func (r *challengeDayRepository) List(ctx context.Context, filter ContentFilter) ([]models.ChallengeDay, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ChallengeDay{})
	if filter.ParentID != "" {
		query = query.Where("challenge_id = ?", filter.ParentID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(filter.Search))
	}
	return r.page(query, "challenge_id ASC, day ASC", filter.Page, filter.PageSize)
}

func (r *challengeDayRepository) ListByChallenge(ctx context.Context, challengeID string) ([]models.ChallengeDay, error) {
	var days []models.ChallengeDay
	if err := r.db.WithContext(ctx).
		Where("challenge_id = ?", challengeID).
		Order("day ASC").
		Find(&days).Error; err != nil {
		return nil, err
	}
	return days, nil
}

// FindByDay returns nil without error when no day with that number exists.
func (r *challengeDayRepository) FindByDay(ctx context.Context, challengeID string, day int) (*models.ChallengeDay, error) {
	var model models.ChallengeDay
	err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND day = ?", challengeID, day).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *challengeDayRepository) MaxDay(ctx context.Context, challengeID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.ChallengeDay{}).
		Where("challenge_id = ?", challengeID).
		Select("COALESCE(MAX(day), 0)").
		Scan(&max).Error
	return max, err
}

func (r *challengeDayRepository) DeleteByChallenge(ctx context.Context, challengeID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("challenge_id = ?", challengeID).Delete(&models.ChallengeDay{})
	return result.RowsAffected, result.Error
}

func (r *challengeDayRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	parents := r.db.Model(&models.Challenge{}).Select("id")
	result := r.db.WithContext(ctx).Where("challenge_id NOT IN (?)", parents).Delete(&models.ChallengeDay{})
	return result.RowsAffected, result.Error
}
