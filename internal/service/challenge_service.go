package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

const (
	resourceChallenge    = "challenge"
	resourceChallengeDay = "challengeDay"
)

// ChallengeService manages multi-day challenges.
type ChallengeService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.ChallengeResponse], error)
	Get(ctx context.Context, id string, populateDays bool) (dto.ChallengeResponse, error)
	Create(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error)
	Update(ctx context.Context, id string, payload dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error)
	Delete(ctx context.Context, id string) error
}

// ChallengeDayService manages the per-day content of a challenge.
type ChallengeDayService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.ChallengeDayResponse], error)
	Get(ctx context.Context, id string, populateChallenge bool) (dto.ChallengeDayResponse, error)
	Create(ctx context.Context, payload dto.ChallengeDayCreateRequest) (dto.ChallengeDayResponse, error)
	Update(ctx context.Context, id string, payload dto.ChallengeDayUpdateRequest) (dto.ChallengeDayResponse, error)
	Delete(ctx context.Context, id string) error
}

type challengeService struct {
	store     *repository.Store
	validator *validator.Validate
	media     MediaPolicy
	events    EventBus
	logger    zerolog.Logger
}

// NewChallengeService constructs the challenge service.
func NewChallengeService(store *repository.Store, validate *validator.Validate, media MediaPolicy, events EventBus, logger zerolog.Logger) ChallengeService {
	return &challengeService{
		store:     store,
		validator: validate,
		media:     media,
		events:    events,
		logger:    logger.With().Str("component", "challenge_service").Logger(),
	}
}

func (s *challengeService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.ChallengeResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "id")
	if err != nil {
		return dto.ListResult[dto.ChallengeResponse]{}, err
	}
	challenges, total, err := s.store.Challenges.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.ChallengeResponse]{}, err
	}
	return listResult(challenges, total, query, dto.NewChallengeResponse), nil
}

func (s *challengeService) Get(ctx context.Context, id string, populateDays bool) (dto.ChallengeResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.ChallengeResponse{}, err
	}
	challenge, err := s.store.Challenges.GetByID(ctx, id)
	if err != nil {
		return dto.ChallengeResponse{}, notFound(err, ErrChallengeNotFound)
	}

	response := dto.NewChallengeResponse(challenge)
	if populateDays {
		days, err := s.store.ChallengeDays.ListByChallenge(ctx, challenge.ID)
		if err != nil {
			return dto.ChallengeResponse{}, err
		}
		response.Populated = make([]dto.ChallengeDayResponse, 0, len(days))
		for _, day := range days {
			response.Populated = append(response.Populated, dto.NewChallengeDayResponse(day))
		}
	}
	return response, nil
}

func (s *challengeService) Create(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}
	if err := s.media.Check("thumbnail", payload.Thumbnail, MediaImage); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge := models.Challenge{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Duration:    payload.Duration,
		Thumbnail:   strings.TrimSpace(payload.Thumbnail),
		Status:      payload.Status,
	}
	if err := s.store.Challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourceChallenge, challenge.ID, fmt.Sprintf("Challenge %s created", challenge.Title))
	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Update(ctx context.Context, id string, payload dto.ChallengeUpdateRequest) (dto.ChallengeResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.ChallengeResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}
	if payload.Thumbnail != nil {
		if err := s.media.Check("thumbnail", *payload.Thumbnail, MediaImage); err != nil {
			return dto.ChallengeResponse{}, err
		}
	}

	var challenge models.Challenge
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		challenge, err = tx.Challenges.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrChallengeNotFound)
		}

		if payload.Duration != nil && *payload.Duration != challenge.Duration {
			lastDay, err := tx.ChallengeDays.MaxDay(ctx, challenge.ID)
			if err != nil {
				return err
			}
			if *payload.Duration < lastDay {
				return newValidationError("duration", "challenge already has content for day %d", lastDay)
			}
			challenge.Duration = *payload.Duration
		}
		challenge.Title = trimmedOr(payload.Title, challenge.Title)
		challenge.Description = trimmedOr(payload.Description, challenge.Description)
		challenge.Thumbnail = trimmedOr(payload.Thumbnail, challenge.Thumbnail)
		challenge.Status = trimmedOr(payload.Status, challenge.Status)
		return tx.Challenges.Update(ctx, &challenge)
	})
	if err != nil {
		return dto.ChallengeResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourceChallenge, challenge.ID, fmt.Sprintf("Challenge %s updated", challenge.Title))
	return dto.NewChallengeResponse(challenge), nil
}

func (s *challengeService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	var removed int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Challenges.GetByIDForUpdate(ctx, id); err != nil {
			return notFound(err, ErrChallengeNotFound)
		}
		var err error
		if removed, err = tx.ChallengeDays.DeleteByChallenge(ctx, id); err != nil {
			return err
		}
		return notFound(tx.Challenges.Delete(ctx, id), ErrChallengeNotFound)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("challenge_id", id).Int64("days_removed", removed).Msg("challenge deleted")
	publishEvent(ctx, s.events, EventDeleted, resourceChallenge, id, "Challenge deleted")
	return nil
}

// syncChallengeDays rewrites the challenge's day list in day order.
func syncChallengeDays(ctx context.Context, tx *repository.Store, challengeID string) error {
	days, err := tx.ChallengeDays.ListByChallenge(ctx, challengeID)
	if err != nil {
		return err
	}
	challenge, err := tx.Challenges.GetByIDForUpdate(ctx, challengeID)
	if err != nil {
		return ignoreNotFound(err)
	}
	ids := make([]string, 0, len(days))
	for _, day := range days {
		ids = append(ids, day.ID)
	}
	challenge.Days = ids
	return tx.Challenges.Update(ctx, &challenge)
}

type challengeDayService struct {
	store     *repository.Store
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	events    EventBus
	logger    zerolog.Logger
}

// NewChallengeDayService constructs the challenge day service.
func NewChallengeDayService(store *repository.Store, validate *validator.Validate, events EventBus, logger zerolog.Logger) ChallengeDayService {
	return &challengeDayService{
		store:     store,
		validator: validate,
		sanitizer: contentPolicy(),
		events:    events,
		logger:    logger.With().Str("component", "challenge_day_service").Logger(),
	}
}

func (s *challengeDayService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.ChallengeDayResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "challengeId")
	if err != nil {
		return dto.ListResult[dto.ChallengeDayResponse]{}, err
	}
	days, total, err := s.store.ChallengeDays.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.ChallengeDayResponse]{}, err
	}
	return listResult(days, total, query, dto.NewChallengeDayResponse), nil
}

func (s *challengeDayService) Get(ctx context.Context, id string, populateChallenge bool) (dto.ChallengeDayResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.ChallengeDayResponse{}, err
	}
	day, err := s.store.ChallengeDays.GetByID(ctx, id)
	if err != nil {
		return dto.ChallengeDayResponse{}, notFound(err, ErrChallengeDayNotFound)
	}

	response := dto.NewChallengeDayResponse(day)
	if populateChallenge {
		challenge, err := s.store.Challenges.GetByID(ctx, day.ChallengeID)
		if err == nil {
			parent := dto.NewChallengeResponse(challenge)
			response.Challenge = &parent
		} else if !isMissing(err) {
			return dto.ChallengeDayResponse{}, err
		}
	}
	return response, nil
}

func (s *challengeDayService) Create(ctx context.Context, payload dto.ChallengeDayCreateRequest) (dto.ChallengeDayResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeDayResponse{}, err
	}
	if err := requireID("challengeId", payload.ChallengeID); err != nil {
		return dto.ChallengeDayResponse{}, err
	}
	questions := dto.QuestionsFromRequest(payload.Questions)
	if err := checkQuestions(questions); err != nil {
		return dto.ChallengeDayResponse{}, err
	}

	day := models.ChallengeDay{
		ChallengeID: payload.ChallengeID,
		Day:         payload.Day,
		Title:       strings.TrimSpace(payload.Title),
		Content:     sanitizeContent(s.sanitizer, payload.Content),
		Tasks:       trimAll(payload.Tasks),
		Questions:   questions,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		challenge, err := tx.Challenges.GetByIDForUpdate(ctx, day.ChallengeID)
		if err != nil {
			if isMissing(err) {
				return newValidationError("challengeId", "challenge %q does not exist", day.ChallengeID)
			}
			return err
		}
		if day.Day > challenge.Duration {
			return newValidationError("day", "day %d exceeds the challenge duration of %d", day.Day, challenge.Duration)
		}
		existing, err := tx.ChallengeDays.FindByDay(ctx, day.ChallengeID, day.Day)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrChallengeDayExists
		}
		if err := tx.ChallengeDays.Create(ctx, &day); err != nil {
			return err
		}
		return syncChallengeDays(ctx, tx, day.ChallengeID)
	})
	if err != nil {
		return dto.ChallengeDayResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourceChallengeDay, day.ID, fmt.Sprintf("Day %d %s created", day.Day, day.Title))
	return dto.NewChallengeDayResponse(day), nil
}

func (s *challengeDayService) Update(ctx context.Context, id string, payload dto.ChallengeDayUpdateRequest) (dto.ChallengeDayResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.ChallengeDayResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeDayResponse{}, err
	}

	var day models.ChallengeDay
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		day, err = tx.ChallengeDays.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrChallengeDayNotFound)
		}

		if payload.Day != nil && *payload.Day != day.Day {
			challenge, err := tx.Challenges.GetByIDForUpdate(ctx, day.ChallengeID)
			if err != nil && !isMissing(err) {
				return err
			}
			if err == nil && *payload.Day > challenge.Duration {
				return newValidationError("day", "day %d exceeds the challenge duration of %d", *payload.Day, challenge.Duration)
			}
			existing, err := tx.ChallengeDays.FindByDay(ctx, day.ChallengeID, *payload.Day)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != day.ID {
				return ErrChallengeDayExists
			}
			day.Day = *payload.Day
		}

		day.Title = trimmedOr(payload.Title, day.Title)
		if payload.Content != nil {
			day.Content = sanitizeContent(s.sanitizer, *payload.Content)
		}
		if payload.Tasks != nil {
			day.Tasks = trimAll(payload.Tasks)
		}
		if payload.Questions != nil {
			questions := dto.QuestionsFromRequest(payload.Questions)
			if err := checkQuestions(questions); err != nil {
				return err
			}
			day.Questions = questions
		}
		if err := tx.ChallengeDays.Update(ctx, &day); err != nil {
			return err
		}
		return syncChallengeDays(ctx, tx, day.ChallengeID)
	})
	if err != nil {
		return dto.ChallengeDayResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourceChallengeDay, day.ID, fmt.Sprintf("Day %d %s updated", day.Day, day.Title))
	return dto.NewChallengeDayResponse(day), nil
}

func (s *challengeDayService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		day, err := tx.ChallengeDays.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrChallengeDayNotFound)
		}
		if err := tx.ChallengeDays.Delete(ctx, id); err != nil {
			return notFound(err, ErrChallengeDayNotFound)
		}
		return syncChallengeDays(ctx, tx, day.ChallengeID)
	})
	if err != nil {
		return err
	}

	publishEvent(ctx, s.events, EventDeleted, resourceChallengeDay, id, "Challenge day deleted")
	return nil
}

// checkQuestions verifies every answer points at one of its options.
func checkQuestions(questions []models.Question) error {
	for i, question := range questions {
		if question.Answer < 0 || question.Answer >= len(question.Options) {
			return newValidationError(fmt.Sprintf("questions[%d].answer", i), "answer %d is not a valid option index", question.Answer)
		}
	}
	return nil
}
