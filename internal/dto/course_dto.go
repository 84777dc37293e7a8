package dto

import (
	"time"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// CourseCreateRequest validates course creation payloads.
type CourseCreateRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Category    string  `json:"category" validate:"omitempty,max=120"`
	Level       string  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       float64 `json:"price" validate:"gte=0"`
	Thumbnail   string  `json:"thumbnail"`
	Status      string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// CourseUpdateRequest patches a course. Lessons, when present, must be a permutation of the
// course's current lesson ids and reorders them.
type CourseUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Category    *string  `json:"category" validate:"omitempty,max=120"`
	Level       *string  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft published archived"`
	Lessons     []string `json:"lessons" validate:"omitempty,dive,required"`
}

// CourseResponse serializes a course.
type CourseResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Level       string           `json:"level"`
	Price       float64          `json:"price"`
	Thumbnail   string           `json:"thumbnail"`
	Status      string           `json:"status"`
	Lessons     []string         `json:"lessons"`
	Populated   []LessonResponse `json:"populatedLessons,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// LessonCreateRequest validates lesson creation payloads.
type LessonCreateRequest struct {
	CourseID string `json:"courseId" validate:"required,notblank"`
	Title    string `json:"title" validate:"required,notblank,max=255"`
	Content  string `json:"content" validate:"required,notblank"`
	VideoURL string `json:"videoUrl" validate:"omitempty,url"`
	Duration int    `json:"duration" validate:"gte=0,lte=1440"`
	Order    *int   `json:"order" validate:"omitempty,gte=1"`
}

// LessonUpdateRequest patches a lesson.
type LessonUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,notblank,max=255"`
	Content  *string `json:"content" validate:"omitempty,notblank"`
	VideoURL *string `json:"videoUrl" validate:"omitempty,url"`
	Duration *int    `json:"duration" validate:"omitempty,gte=0,lte=1440"`
	Order    *int    `json:"order" validate:"omitempty,gte=1"`
}

// LessonResponse serializes a lesson.
type LessonResponse struct {
	ID        string          `json:"id"`
	CourseID  string          `json:"courseId"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	VideoURL  string          `json:"videoUrl"`
	Duration  int             `json:"duration"`
	Order     int             `json:"order"`
	Course    *CourseResponse `json:"course,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Category:    course.Category,
		Level:       course.Level,
		Price:       course.Price,
		Thumbnail:   course.Thumbnail,
		Status:      course.Status,
		Lessons:     append([]string{}, course.Lessons...),
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}

// NewLessonResponse converts a model into a DTO.
func NewLessonResponse(lesson models.Lesson) LessonResponse {
	return LessonResponse{
		ID:        lesson.ID,
		CourseID:  lesson.CourseID,
		Title:     lesson.Title,
		Content:   lesson.Content,
		VideoURL:  lesson.VideoURL,
		Duration:  lesson.Duration,
		Order:     lesson.Order,
		CreatedAt: lesson.CreatedAt,
		UpdatedAt: lesson.UpdatedAt,
	}
}
