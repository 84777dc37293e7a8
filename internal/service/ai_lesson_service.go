package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-content-admin/internal/curriculum"
	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/observability"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

const resourceAILesson = "aiLesson"

// AILessonService manages the lessons of mastery paths.
type AILessonService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.AILessonResponse], error)
	Get(ctx context.Context, id string, populateCourse bool) (dto.AILessonWithCourseResponse, error)
	Create(ctx context.Context, payload dto.AILessonCreateRequest) (dto.AILessonResponse, error)
	BatchCreate(ctx context.Context, payload dto.AILessonBatchRequest) (dto.AILessonBatchResponse, error)
	Update(ctx context.Context, id string, payload dto.AILessonUpdateRequest) (dto.AILessonResponse, error)
	Delete(ctx context.Context, id string) error
}

type aiLessonService struct {
	store     *repository.Store
	validator *validator.Validate
	media     MediaPolicy
	sanitizer *bluemonday.Policy
	events    EventBus
	cache     *aiCourseCache
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAILessonService constructs the AI lesson service. It shares the populated course cache
// with the course service so lesson writes invalidate the parent entry.
func NewAILessonService(store *repository.Store, validate *validator.Validate, media MediaPolicy, events EventBus, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) AILessonService {
	componentLogger := logger.With().Str("component", "ai_lesson_service").Logger()
	return &aiLessonService{
		store:     store,
		validator: validate,
		media:     media,
		sanitizer: contentPolicy(),
		events:    events,
		cache:     newAICourseCache(redisClient, cacheTTL, componentLogger),
		logger:    componentLogger,
		tracer:    otel.Tracer("github.com/noah-isme/gema-content-admin/internal/service/ai_lesson"),
	}
}

func (s *aiLessonService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.AILessonResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "aiCourseId")
	if err != nil {
		return dto.ListResult[dto.AILessonResponse]{}, err
	}

	lessons, total, err := s.store.AILessons.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.AILessonResponse]{}, err
	}
	return listResult(lessons, total, query, dto.NewAILessonResponse), nil
}

func (s *aiLessonService) Get(ctx context.Context, id string, populateCourse bool) (dto.AILessonWithCourseResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.AILessonWithCourseResponse{}, err
	}
	lesson, err := s.store.AILessons.GetByID(ctx, id)
	if err != nil {
		return dto.AILessonWithCourseResponse{}, notFound(err, ErrAILessonNotFound)
	}

	response := dto.AILessonWithCourseResponse{AILessonResponse: dto.NewAILessonResponse(lesson)}
	if populateCourse {
		course, err := s.store.AICourses.GetByID(ctx, lesson.AICourseID)
		if err == nil {
			parent := dto.NewAICourseResponse(course)
			response.AICourse = &parent
		} else if !isMissing(err) {
			return dto.AILessonWithCourseResponse{}, err
		}
	}
	return response, nil
}

func (s *aiLessonService) Create(ctx context.Context, payload dto.AILessonCreateRequest) (dto.AILessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AILessonResponse{}, err
	}
	if err := requireID("aiCourseId", payload.AICourseID); err != nil {
		return dto.AILessonResponse{}, err
	}
	if err := s.checkMedia(payload.Photos, payload.Media); err != nil {
		return dto.AILessonResponse{}, err
	}

	lesson := models.AILesson{
		AICourseID: payload.AICourseID,
		Title:      strings.TrimSpace(payload.Title),
		Content:    sanitizeContent(s.sanitizer, payload.Content),
		Photos:     trimAll(payload.Photos),
		Media:      strings.TrimSpace(payload.Media),
		CanRead:    payload.CanRead,
		CanListen:  payload.CanListen,
	}
	if lesson.Content == "" {
		return dto.AILessonResponse{}, newValidationError("content", "content is empty after sanitising")
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureAICourse(ctx, tx, lesson.AICourseID); err != nil {
			return err
		}
		max, err := tx.AILessons.MaxOrder(ctx, lesson.AICourseID)
		if err != nil {
			return err
		}
		lesson.Order = max + 1
		if err := tx.AILessons.Create(ctx, &lesson); err != nil {
			return err
		}
		if payload.Order != nil && *payload.Order < lesson.Order {
			return moveAILesson(ctx, tx, &lesson, *payload.Order)
		}
		return nil
	})
	if err != nil {
		return dto.AILessonResponse{}, err
	}

	s.cache.invalidate(ctx, lesson.AICourseID)
	publishEvent(ctx, s.events, EventCreated, resourceAILesson, lesson.ID, fmt.Sprintf("Lesson %s created", lesson.Title))
	return dto.NewAILessonResponse(lesson), nil
}

// BatchCreate creates every filled entry in one transaction. Entries missing a title or content
// are skipped; any failure rolls back the whole batch.
func (s *aiLessonService) BatchCreate(ctx context.Context, payload dto.AILessonBatchRequest) (dto.AILessonBatchResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AILessonBatchResponse{}, err
	}
	if err := requireID("aiCourseId", payload.AICourseID); err != nil {
		return dto.AILessonBatchResponse{}, err
	}

	drafts := make([]models.AILesson, 0, len(payload.Lessons))
	skipped := 0
	for i, entry := range payload.Lessons {
		title := strings.TrimSpace(entry.Title)
		content := sanitizeContent(s.sanitizer, entry.Content)
		if title == "" || content == "" {
			skipped++
			continue
		}
		if err := s.checkMedia(entry.Photos, entry.Media); err != nil {
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				validationErr.Field = fmt.Sprintf("lessons[%d].%s", i, validationErr.Field)
			}
			return dto.AILessonBatchResponse{}, err
		}
		drafts = append(drafts, models.AILesson{
			AICourseID: payload.AICourseID,
			Title:      title,
			Content:    content,
			Photos:     trimAll(entry.Photos),
			Media:      strings.TrimSpace(entry.Media),
			CanRead:    entry.CanRead,
			CanListen:  entry.CanListen,
		})
	}
	if len(drafts) == 0 {
		return dto.AILessonBatchResponse{}, newValidationError("lessons", "no lesson has both a title and content")
	}

	ctx, span := s.tracer.Start(ctx, "ai_lesson.batch_create", trace.WithAttributes(
		attribute.String("ai_course.id", payload.AICourseID),
		attribute.Int("ai_lesson.count", len(drafts)),
		attribute.Int("ai_lesson.skipped", skipped),
	))
	defer span.End()

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		course, err := tx.AICourses.GetByIDForUpdate(ctx, payload.AICourseID)
		if err != nil {
			if isMissing(err) {
				return newValidationError("aiCourseId", "course %q does not exist", payload.AICourseID)
			}
			return err
		}
		if payload.LevelIndex != nil && (*payload.LevelIndex < 0 || *payload.LevelIndex >= len(course.Tree)) {
			return ErrLevelNotFound
		}

		max, err := tx.AILessons.MaxOrder(ctx, course.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(drafts))
		for i := range drafts {
			drafts[i].Order = max + i + 1
			if err := tx.AILessons.Create(ctx, &drafts[i]); err != nil {
				return err
			}
			ids = append(ids, drafts[i].ID)
		}

		if payload.LevelIndex == nil {
			return nil
		}
		tree, err := curriculum.AttachToLevel(course.Tree, *payload.LevelIndex, ids)
		if err != nil {
			return ErrLevelNotFound
		}
		course.Tree = tree
		return tx.AICourses.Update(ctx, &course)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch create failed")
		return dto.AILessonBatchResponse{}, err
	}

	s.cache.invalidate(ctx, payload.AICourseID)
	if payload.LevelIndex != nil {
		observability.TreeMutations().WithLabelValues("batch_attach").Inc()
	}
	s.logger.Info().Str("ai_course_id", payload.AICourseID).Int("created", len(drafts)).Int("skipped", skipped).Msg("ai lessons batch created")
	publishEvent(ctx, s.events, EventCreated, resourceAILesson, payload.AICourseID, fmt.Sprintf("%d lesson(s) created", len(drafts)))

	created := make([]dto.AILessonResponse, 0, len(drafts))
	for _, lesson := range drafts {
		created = append(created, dto.NewAILessonResponse(lesson))
	}
	return dto.AILessonBatchResponse{Created: created, Skipped: skipped}, nil
}

func (s *aiLessonService) Update(ctx context.Context, id string, payload dto.AILessonUpdateRequest) (dto.AILessonResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.AILessonResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AILessonResponse{}, err
	}
	media := ""
	if payload.Media != nil {
		media = *payload.Media
	}
	if err := s.checkMedia(payload.Photos, media); err != nil {
		return dto.AILessonResponse{}, err
	}

	var lesson models.AILesson
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		lesson, err = tx.AILessons.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrAILessonNotFound)
		}
		if payload.Order != nil {
			if _, err := tx.AICourses.GetByIDForUpdate(ctx, lesson.AICourseID); ignoreNotFound(err) != nil {
				return err
			}
		}

		lesson.Title = trimmedOr(payload.Title, lesson.Title)
		if payload.Content != nil {
			lesson.Content = sanitizeContent(s.sanitizer, *payload.Content)
			if lesson.Content == "" {
				return newValidationError("content", "content is empty after sanitising")
			}
		}
		if payload.Photos != nil {
			lesson.Photos = trimAll(payload.Photos)
		}
		lesson.Media = trimmedOr(payload.Media, lesson.Media)
		if payload.CanRead != nil {
			lesson.CanRead = *payload.CanRead
		}
		if payload.CanListen != nil {
			lesson.CanListen = *payload.CanListen
		}

		if err := tx.AILessons.Update(ctx, &lesson); err != nil {
			return err
		}
		if payload.Order != nil && *payload.Order != lesson.Order {
			return moveAILesson(ctx, tx, &lesson, *payload.Order)
		}
		return nil
	})
	if err != nil {
		return dto.AILessonResponse{}, err
	}

	s.cache.invalidate(ctx, lesson.AICourseID)
	publishEvent(ctx, s.events, EventUpdated, resourceAILesson, lesson.ID, fmt.Sprintf("Lesson %s updated", lesson.Title))
	return dto.NewAILessonResponse(lesson), nil
}

// Delete removes the lesson, detaches it from its course tree and renumbers the remaining lessons.
func (s *aiLessonService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	var lesson models.AILesson
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		lesson, err = tx.AILessons.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrAILessonNotFound)
		}
		// Lock the parent before touching siblings so concurrent writers renumber in turn.
		course, courseErr := tx.AICourses.GetByIDForUpdate(ctx, lesson.AICourseID)
		if courseErr != nil && !isMissing(courseErr) {
			return courseErr
		}

		siblings, err := tx.AILessons.ListByCourse(ctx, lesson.AICourseID)
		if err != nil {
			return err
		}
		remaining, err := curriculum.RemoveItem(siblings, id, curriculum.AILessonID, curriculum.SetAILessonOrder)
		if err != nil {
			return err
		}
		if err := tx.AILessons.Delete(ctx, id); err != nil {
			return notFound(err, ErrAILessonNotFound)
		}
		if err := tx.AILessons.UpdateOrders(ctx, remaining); err != nil {
			return err
		}

		if courseErr != nil {
			// The parent is already gone; the cleanup job owns that case.
			return nil
		}
		tree, changed := curriculum.DetachFromLevels(course.Tree, id)
		if !changed {
			return nil
		}
		course.Tree = tree
		return tx.AICourses.Update(ctx, &course)
	})
	if err != nil {
		return err
	}

	s.cache.invalidate(ctx, lesson.AICourseID)
	observability.TreeMutations().WithLabelValues("detach").Inc()
	publishEvent(ctx, s.events, EventDeleted, resourceAILesson, id, fmt.Sprintf("Lesson %s deleted", lesson.Title))
	return nil
}

func (s *aiLessonService) checkMedia(photos []string, media string) error {
	if err := s.media.CheckAll("photos", photos, MediaImage); err != nil {
		return err
	}
	return s.media.Check("media", media, MediaAudio)
}

// moveAILesson places lesson at position among its siblings and renumbers them all.
func moveAILesson(ctx context.Context, tx *repository.Store, lesson *models.AILesson, position int) error {
	siblings, err := tx.AILessons.ListByCourse(ctx, lesson.AICourseID)
	if err != nil {
		return err
	}
	ordered, err := curriculum.MoveItem(siblings, lesson.ID, position, curriculum.AILessonID, curriculum.SetAILessonOrder)
	if err != nil {
		return err
	}
	for _, sibling := range ordered {
		if sibling.ID == lesson.ID {
			lesson.Order = sibling.Order
		}
	}
	return tx.AILessons.UpdateOrders(ctx, ordered)
}

// ensureAICourse locks the parent course row, reporting a missing course as a validation error.
func ensureAICourse(ctx context.Context, tx *repository.Store, id string) error {
	if _, err := tx.AICourses.GetByIDForUpdate(ctx, id); err != nil {
		if isMissing(err) {
			return newValidationError("aiCourseId", "course %q does not exist", id)
		}
		return err
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
