package dto

import (
	"time"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// AILessonCreateRequest captures payloads for creating an AI lesson.
type AILessonCreateRequest struct {
	AICourseID string   `json:"aiCourseId" validate:"required,notblank"`
	Title      string   `json:"title" validate:"required,notblank,max=255"`
	Content    string   `json:"content" validate:"required,notblank"`
	Order      *int     `json:"order" validate:"omitempty,gte=1"`
	Photos     []string `json:"photos" validate:"omitempty,max=20"`
	Media      string   `json:"media"`
	CanRead    bool     `json:"canRead"`
	CanListen  bool     `json:"canListen"`
}

// AILessonUpdateRequest patches an AI lesson. Setting Order moves the lesson within its course.
type AILessonUpdateRequest struct {
	Title     *string  `json:"title" validate:"omitempty,notblank,max=255"`
	Content   *string  `json:"content" validate:"omitempty,notblank"`
	Order     *int     `json:"order" validate:"omitempty,gte=1"`
	Photos    []string `json:"photos" validate:"omitempty,max=20"`
	Media     *string  `json:"media"`
	CanRead   *bool    `json:"canRead"`
	CanListen *bool    `json:"canListen"`
}

// AILessonDraft is one entry of a multi-lesson form. Entries without title or content are skipped.
type AILessonDraft struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Photos    []string `json:"photos" validate:"omitempty,max=20"`
	Media     string   `json:"media"`
	CanRead   bool     `json:"canRead"`
	CanListen bool     `json:"canListen"`
}

// AILessonBatchRequest creates several lessons for one course in one go.
type AILessonBatchRequest struct {
	AICourseID string          `json:"aiCourseId" validate:"required,notblank"`
	LevelIndex *int            `json:"levelIndex" validate:"omitempty,gte=0"`
	Lessons    []AILessonDraft `json:"lessons" validate:"required,min=1,max=100,dive"`
}

// AILessonBatchResponse lists created lessons in submission order.
type AILessonBatchResponse struct {
	Created []AILessonResponse `json:"created"`
	Skipped int                `json:"skipped"`
}

// AILessonResponse serializes an AI lesson.
type AILessonResponse struct {
	ID         string    `json:"id"`
	AICourseID string    `json:"aiCourseId"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Order      int       `json:"order"`
	Photos     []string  `json:"photos"`
	Media      string    `json:"media"`
	CanRead    bool      `json:"canRead"`
	CanListen  bool      `json:"canListen"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AILessonWithCourseResponse is an AI lesson with its parent course populated.
type AILessonWithCourseResponse struct {
	AILessonResponse
	AICourse *AICourseResponse `json:"aiCourse"`
}

// NewAILessonResponse converts a model into a DTO.
func NewAILessonResponse(lesson models.AILesson) AILessonResponse {
	return AILessonResponse{
		ID:         lesson.ID,
		AICourseID: lesson.AICourseID,
		Title:      lesson.Title,
		Content:    lesson.Content,
		Order:      lesson.Order,
		Photos:     append([]string{}, lesson.Photos...),
		Media:      lesson.Media,
		CanRead:    lesson.CanRead,
		CanListen:  lesson.CanListen,
		CreatedAt:  lesson.CreatedAt,
		UpdatedAt:  lesson.UpdatedAt,
	}
}
