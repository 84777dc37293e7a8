package dto

import (
	"time"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// ChallengeCreateRequest validates challenge creation payloads.
type ChallengeCreateRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Duration    int    `json:"duration" validate:"required,gte=1,lte=365"`
	Thumbnail   string `json:"thumbnail"`
	Status      string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ChallengeUpdateRequest patches a challenge. Duration may not drop below an existing day.
type ChallengeUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Duration    *int    `json:"duration" validate:"omitempty,gte=1,lte=365"`
	Thumbnail   *string `json:"thumbnail"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// ChallengeResponse serializes a challenge.
type ChallengeResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Duration    int                    `json:"duration"`
	Thumbnail   string                 `json:"thumbnail"`
	Status      string                 `json:"status"`
	Days        []string               `json:"days"`
	Populated   []ChallengeDayResponse `json:"populatedDays,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

// QuestionRequest is a multiple choice question attached to a day.
type QuestionRequest struct {
	Question string   `json:"question" validate:"required,notblank"`
	Options  []string `json:"options" validate:"required,min=2,max=6,dive,required"`
	Answer   int      `json:"answer" validate:"gte=0"`
}

// ChallengeDayCreateRequest validates day creation payloads.
type ChallengeDayCreateRequest struct {
	ChallengeID string            `json:"challengeId" validate:"required,notblank"`
	Day         int               `json:"day" validate:"required,gte=1,lte=365"`
	Title       string            `json:"title" validate:"required,notblank,max=255"`
	Content     string            `json:"content"`
	Tasks       []string          `json:"tasks" validate:"omitempty,dive,required"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// ChallengeDayUpdateRequest patches a day.
type ChallengeDayUpdateRequest struct {
	Day       *int              `json:"day" validate:"omitempty,gte=1,lte=365"`
	Title     *string           `json:"title" validate:"omitempty,notblank,max=255"`
	Content   *string           `json:"content"`
	Tasks     []string          `json:"tasks" validate:"omitempty,dive,required"`
	Questions []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

// QuestionResponse serializes a question.
type QuestionResponse struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

// ChallengeDayResponse serializes a challenge day.
type ChallengeDayResponse struct {
	ID          string             `json:"id"`
	ChallengeID string             `json:"challengeId"`
	Day         int                `json:"day"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	Tasks       []string           `json:"tasks"`
	Questions   []QuestionResponse `json:"questions"`
	Challenge   *ChallengeResponse `json:"challenge,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// QuestionsFromRequest converts request questions into model questions.
func QuestionsFromRequest(items []QuestionRequest) []models.Question {
	out := make([]models.Question, 0, len(items))
	for _, item := range items {
		out = append(out, models.Question{
			Question: item.Question,
			Options:  append([]string{}, item.Options...),
			Answer:   item.Answer,
		})
	}
	return out
}

// NewChallengeResponse converts a model into a DTO.
func NewChallengeResponse(challenge models.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:          challenge.ID,
		Title:       challenge.Title,
		Description: challenge.Description,
		Duration:    challenge.Duration,
		Thumbnail:   challenge.Thumbnail,
		Status:      challenge.Status,
		Days:        append([]string{}, challenge.Days...),
		CreatedAt:   challenge.CreatedAt,
		UpdatedAt:   challenge.UpdatedAt,
	}
}

// NewChallengeDayResponse converts a model into a DTO.
func NewChallengeDayResponse(day models.ChallengeDay) ChallengeDayResponse {
	questions := make([]QuestionResponse, 0, len(day.Questions))
	for _, q := range day.Questions {
		questions = append(questions, QuestionResponse{
			Question: q.Question,
			Options:  append([]string{}, q.Options...),
			Answer:   q.Answer,
		})
	}
	return ChallengeDayResponse{
		ID:          day.ID,
		ChallengeID: day.ChallengeID,
		Day:         day.Day,
		Title:       day.Title,
		Content:     day.Content,
		Tasks:       append([]string{}, day.Tasks...),
		Questions:   questions,
		CreatedAt:   day.CreatedAt,
		UpdatedAt:   day.UpdatedAt,
	}
}
