package dto

import (
	"time"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// LevelRequest describes one level of a mastery path tree.
type LevelRequest struct {
	Level     int      `json:"level"`
	Topic     string   `json:"topic" validate:"required,notblank,max=255"`
	Lessons   []string `json:"lessons" validate:"omitempty,dive,required"`
	CanRead   bool     `json:"canRead"`
	CanListen bool     `json:"canListen"`
}

// AICourseCreateRequest captures payloads for creating a mastery path.
type AICourseCreateRequest struct {
	Title       string         `json:"title" validate:"required,notblank,max=255"`
	Description string         `json:"description" validate:"omitempty,max=5000"`
	Tool        string         `json:"tool" validate:"omitempty,max=120"`
	Thumbnail   string         `json:"thumbnail"`
	Level       string         `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Status      string         `json:"status" validate:"omitempty,oneof=draft published archived"`
	Tree        []LevelRequest `json:"tree" validate:"omitempty,dive"`
}

// AICourseUpdateRequest patches a mastery path. A nil Tree leaves the tree untouched.
type AICourseUpdateRequest struct {
	Title       *string        `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string        `json:"description" validate:"omitempty,max=5000"`
	Tool        *string        `json:"tool" validate:"omitempty,max=120"`
	Thumbnail   *string        `json:"thumbnail"`
	Level       *string        `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Status      *string        `json:"status" validate:"omitempty,oneof=draft published archived"`
	Tree        []LevelRequest `json:"tree" validate:"omitempty,dive"`
}

// AttachLessonsRequest lists lesson ids to append to a level.
type AttachLessonsRequest struct {
	LessonIDs []string `json:"lessonIds" validate:"required,min=1,dive,required"`
}

// CommitTreeRequest carries a complete draft tree.
type CommitTreeRequest struct {
	Tree []LevelRequest `json:"tree" validate:"dive"`
}

// LevelResponse serializes a level with lesson ids.
type LevelResponse struct {
	Level     int      `json:"level"`
	Topic     string   `json:"topic"`
	Lessons   []string `json:"lessons"`
	CanRead   bool     `json:"canRead"`
	CanListen bool     `json:"canListen"`
}

// PopulatedLevelResponse serializes a level with resolved lessons.
type PopulatedLevelResponse struct {
	Level     int                `json:"level"`
	Topic     string             `json:"topic"`
	Lessons   []AILessonResponse `json:"lessons"`
	CanRead   bool               `json:"canRead"`
	CanListen bool               `json:"canListen"`
}

// AICourseResponse serializes a mastery path.
type AICourseResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Tool        string          `json:"tool"`
	Thumbnail   string          `json:"thumbnail"`
	Level       string          `json:"level"`
	Status      string          `json:"status"`
	Tree        []LevelResponse `json:"tree"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PopulatedAICourseResponse serializes a mastery path with lessons resolved in tree order.
type PopulatedAICourseResponse struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Tool        string                   `json:"tool"`
	Thumbnail   string                   `json:"thumbnail"`
	Level       string                   `json:"level"`
	Status      string                   `json:"status"`
	Tree        []PopulatedLevelResponse `json:"tree"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

// TreeCommitResponse reports the committed course together with what changed.
type TreeCommitResponse struct {
	Course    AICourseResponse `json:"course"`
	Changes   TreeChanges      `json:"changes"`
	Committed bool             `json:"committed"`
}

// TreeChanges mirrors the diff computed for a tree commit.
type TreeChanges struct {
	AddedLessons   []string `json:"addedLessons"`
	RemovedLessons []string `json:"removedLessons"`
	ChangedLevels  []int    `json:"changedLevels"`
	AddedLevels    int      `json:"addedLevels"`
	RemovedLevels  int      `json:"removedLevels"`
}

// LevelsFromRequest converts request levels into model levels.
func LevelsFromRequest(levels []LevelRequest) []models.Level {
	out := make([]models.Level, 0, len(levels))
	for _, level := range levels {
		lessons := append([]string{}, level.Lessons...)
		out = append(out, models.Level{
			Level:     level.Level,
			Topic:     level.Topic,
			Lessons:   lessons,
			CanRead:   level.CanRead,
			CanListen: level.CanListen,
		})
	}
	return out
}

// NewAICourseResponse converts a model into a DTO.
func NewAICourseResponse(course models.AICourse) AICourseResponse {
	tree := make([]LevelResponse, 0, len(course.Tree))
	for _, level := range course.Tree {
		tree = append(tree, LevelResponse{
			Level:     level.Level,
			Topic:     level.Topic,
			Lessons:   append([]string{}, level.Lessons...),
			CanRead:   level.CanRead,
			CanListen: level.CanListen,
		})
	}
	return AICourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Tool:        course.Tool,
		Thumbnail:   course.Thumbnail,
		Level:       course.Level,
		Status:      course.Status,
		Tree:        tree,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}

// NewPopulatedAICourseResponse resolves each level's lesson ids through lessons. Ids with no
// matching lesson are left out.
func NewPopulatedAICourseResponse(course models.AICourse, lessons map[string]models.AILesson) PopulatedAICourseResponse {
	tree := make([]PopulatedLevelResponse, 0, len(course.Tree))
	for _, level := range course.Tree {
		resolved := make([]AILessonResponse, 0, len(level.Lessons))
		for _, id := range level.Lessons {
			if lesson, ok := lessons[id]; ok {
				resolved = append(resolved, NewAILessonResponse(lesson))
			}
		}
		tree = append(tree, PopulatedLevelResponse{
			Level:     level.Level,
			Topic:     level.Topic,
			Lessons:   resolved,
			CanRead:   level.CanRead,
			CanListen: level.CanListen,
		})
	}
	return PopulatedAICourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Tool:        course.Tool,
		Thumbnail:   course.Thumbnail,
		Level:       course.Level,
		Status:      course.Status,
		Tree:        tree,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}
