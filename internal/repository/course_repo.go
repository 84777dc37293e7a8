package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.Course, int64, error)
	ListAll(ctx context.Context) ([]models.Course, error)
	GetByID(ctx context.Context, id string) (models.Course, error)
	GetByIDForUpdate(ctx context.Context, id string) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepository struct {
	documentRepository[models.Course]
}

// NewCourseRepository instantiates a GORM-backed repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{documentRepository[models.Course]{db: db}}
}

func (r *courseRepository) List(ctx context.Context, filter ContentFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	return r.page(query, "created_at DESC", filter.Page, filter.PageSize)
}

// LessonRepository defines persistence operations for course lessons.
type LessonRepository interface {
	List(ctx context.Context, filter ContentFilter) ([]models.Lesson, int64, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Lesson, error)
	GetByID(ctx context.Context, id string) (models.Lesson, error)
	MaxOrder(ctx context.Context, courseID string) (int, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	UpdateOrders(ctx context.Context, lessons []models.Lesson) error
	Delete(ctx context.Context, id string) error
	DeleteByCourse(ctx context.Context, courseID string) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type lessonRepository struct {
	documentRepository[models.Lesson]
}

// NewLessonRepository instantiates a GORM-backed repository.
func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{documentRepository[models.Lesson]{db: db}}
}

func (r *lessonRepository) List(ctx context.Context, filter ContentFilter) ([]models.Lesson, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Lesson{})
	if filter.ParentID != "" {
		query = query.Where("course_id = ?", filter.ParentID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(filter.Search))
	}
	return r.page(query, "course_id ASC, sort_order ASC", filter.Page, filter.PageSize)
}

func (r *lessonRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *lessonRepository) MaxOrder(ctx context.Context, courseID string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

func (r *lessonRepository) UpdateOrders(ctx context.Context, lessons []models.Lesson) error {
	ids := make([]string, len(lessons))
	orders := make([]int, len(lessons))
	for i, lesson := range lessons {
		ids[i], orders[i] = lesson.ID, lesson.Order
	}
	return r.updateSortOrders(ctx, ids, orders)
}

func (r *lessonRepository) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("course_id = ?", courseID).Delete(&models.Lesson{})
	return result.RowsAffected, result.Error
}

func (r *lessonRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	parents := r.db.Model(&models.Course{}).Select("id")
	result := r.db.WithContext(ctx).Where("course_id NOT IN (?)", parents).Delete(&models.Lesson{})
	return result.RowsAffected, result.Error
}
