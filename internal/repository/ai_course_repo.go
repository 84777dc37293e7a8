package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// AICourseRepository defines persistence operations for mastery paths.
type AICourseRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.AICourse, int64, error)
	ListAll(ctx context.Context) ([]models.AICourse, error)
	GetByID(ctx context.Context, id string) (models.AICourse, error)
	GetByIDForUpdate(ctx context.Context, id string) (models.AICourse, error)
	Create(ctx context.Context, course *models.AICourse) error
	Update(ctx context.Context, course *models.AICourse) error
	Delete(ctx context.Context, id string) error
}

type aiCourseRepository struct {
	documentRepository[models.AICourse]
}

// NewAICourseRepository instantiates a GORM-backed repository.
func NewAICourseRepository(db *gorm.DB) AICourseRepository {
	return &aiCourseRepository{documentRepository[models.AICourse]{db: db}}
}

func (r *aiCourseRepository) List(ctx context.Context, filter ContentFilter) ([]models.AICourse, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AICourse{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Tool != "" {
		query = query.Where("LOWER(tool) = LOWER(?)", filter.Tool)
	}
	return r.page(query, "created_at DESC", filter.Page, filter.PageSize)
}

// AILessonRepository defines persistence operations for mastery path lessons.
type AILessonRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.AILesson, int64, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.AILesson, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.AILesson, error)
	GetByID(ctx context.Context, id string) (models.AILesson, error)
	MaxOrder(ctx context.Context, courseID string) (int, error)
	Create(ctx context.Context, lesson *models.AILesson) error
	Update(ctx context.Context, lesson *models.AILesson) error
	UpdateOrders(ctx context.Context, lessons []models.AILesson) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type aiLessonRepository struct {
	documentRepository[models.AILesson]
}

// NewAILessonRepository instantiates a GORM-backed repository.
func NewAILessonRepository(db *gorm.DB) AILessonRepository {
	return &aiLessonRepository{documentRepository[models.AILesson]{db: db}}
}

func (r *aiLessonRepository) List(ctx context.Context, filter ContentFilter) ([]models.AILesson, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AILesson{})
	if filter.ParentID != "" {
		query = query.Where("ai_course_id = ?", filter.ParentID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(filter.Search))
	}
	return r.page(query, "ai_course_id ASC, sort_order ASC", filter.Page, filter.PageSize)
}

func (r *aiLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]models.AILesson, error) {
	var lessons []models.AILesson
	if err := r.db.WithContext(ctx).
		Where("ai_course_id = ?", courseID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *aiLessonRepository) MaxOrder(ctx context.Context, courseID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.AILesson{}).
		Where("ai_course_id = ?", courseID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *aiLessonRepository) UpdateOrders(ctx context.Context, lessons []models.AILesson) error {
	ids := make([]string, len(lessons))
	orders := make([]int, len(lessons))
	for i, lesson := range lessons {
		ids[i], orders[i] = lesson.ID, lesson.Order
	}
	return r.updateSortOrders(ctx, ids, orders)
}

func (r *aiLessonRepository) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("ai_course_id = ?", courseID).Delete(&models.AILesson{})
	return result.RowsAffected, result.Error
}

func (r *aiLessonRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	parents := r.db.Model(&models.AICourse{}).Select("id")
	result := r.db.WithContext(ctx).Where("ai_course_id NOT IN (?)", parents).Delete(&models.AILesson{})
	return result.RowsAffected, result.Error
}
