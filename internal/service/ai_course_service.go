package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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

const resourceAICourse = "aiCourse"

// AICourseService manages mastery paths and the lesson tree that ties them to their lessons.
type AICourseService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.AICourseResponse], error)
	Get(ctx context.Context, id string) (dto.AICourseResponse, error)
	GetPopulated(ctx context.Context, id string) (dto.PopulatedAICourseResponse, error)
	Create(ctx context.Context, payload dto.AICourseCreateRequest) (dto.AICourseResponse, error)
	Update(ctx context.Context, id string, payload dto.AICourseUpdateRequest) (dto.AICourseResponse, error)
	Delete(ctx context.Context, id string) error
	AttachChildren(ctx context.Context, parentID string, levelIndex int, childIDs []string) (dto.AICourseResponse, error)
	DetachChild(ctx context.Context, parentID, childID string) (dto.AICourseResponse, error)
	CommitTree(ctx context.Context, id string, payload dto.CommitTreeRequest) (dto.TreeCommitResponse, error)
}

type aiCourseService struct {
	store     *repository.Store
	validator *validator.Validate
	media     MediaPolicy
	events    EventBus
	cache     *aiCourseCache
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewAICourseService constructs the mastery path service. redisClient may be nil to disable caching.
func NewAICourseService(store *repository.Store, validate *validator.Validate, media MediaPolicy, events EventBus, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) AICourseService {
	componentLogger := logger.With().Str("component", "ai_course_service").Logger()
	return &aiCourseService{
		store:     store,
		validator: validate,
		media:     media,
		events:    events,
		cache:     newAICourseCache(redisClient, cacheTTL, componentLogger),
		logger:    componentLogger,
		tracer:    otel.Tracer("github.com/noah-isme/gema-content-admin/internal/service/ai_course"),
	}
}

func (s *aiCourseService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.AICourseResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "id")
	if err != nil {
		return dto.ListResult[dto.AICourseResponse]{}, err
	}

	courses, total, err := s.store.AICourses.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.AICourseResponse]{}, err
	}
	return listResult(courses, total, query, dto.NewAICourseResponse), nil
}

func (s *aiCourseService) Get(ctx context.Context, id string) (dto.AICourseResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.AICourseResponse{}, err
	}
	course, err := s.store.AICourses.GetByID(ctx, id)
	if err != nil {
		return dto.AICourseResponse{}, notFound(err, ErrAICourseNotFound)
	}
	return dto.NewAICourseResponse(course), nil
}

func (s *aiCourseService) GetPopulated(ctx context.Context, id string) (dto.PopulatedAICourseResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.PopulatedAICourseResponse{}, err
	}
	if cached, ok := s.cache.get(ctx, id); ok {
		return cached, nil
	}

	course, err := s.store.AICourses.GetByID(ctx, id)
	if err != nil {
		return dto.PopulatedAICourseResponse{}, notFound(err, ErrAICourseNotFound)
	}

	lessons, err := s.store.AILessons.FindByIDs(ctx, curriculum.LessonIDs(course.Tree))
	if err != nil {
		return dto.PopulatedAICourseResponse{}, err
	}
	byID := make(map[string]models.AILesson, len(lessons))
	for _, lesson := range lessons {
		if lesson.AICourseID == course.ID {
			byID[lesson.ID] = lesson
		}
	}

	result := dto.NewPopulatedAICourseResponse(course, byID)
	s.cache.set(ctx, id, result)
	return result, nil
}

func (s *aiCourseService) Create(ctx context.Context, payload dto.AICourseCreateRequest) (dto.AICourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AICourseResponse{}, err
	}
	if err := s.media.Check("thumbnail", payload.Thumbnail, MediaImage); err != nil {
		return dto.AICourseResponse{}, err
	}

	course := models.AICourse{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Tool:        strings.TrimSpace(payload.Tool),
		Thumbnail:   strings.TrimSpace(payload.Thumbnail),
		Level:       payload.Level,
		Status:      payload.Status,
		Tree:        curriculum.RenumberLevels(dto.LevelsFromRequest(payload.Tree)),
	}

	// A new course owns no lessons yet, so any referenced id is invalid.
	if ids := curriculum.LessonIDs(course.Tree); len(ids) > 0 {
		return dto.AICourseResponse{}, newValidationError("tree", "lesson %q does not belong to this course", ids[0])
	}

	if err := s.store.AICourses.Create(ctx, &course); err != nil {
		return dto.AICourseResponse{}, err
	}

	s.logger.Info().Str("ai_course_id", course.ID).Msg("ai course created")
	publishEvent(ctx, s.events, EventCreated, resourceAICourse, course.ID, fmt.Sprintf("AI course %s created", course.Title))
	return dto.NewAICourseResponse(course), nil
}

func (s *aiCourseService) Update(ctx context.Context, id string, payload dto.AICourseUpdateRequest) (dto.AICourseResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.AICourseResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AICourseResponse{}, err
	}
	if payload.Thumbnail != nil {
		if err := s.media.Check("thumbnail", *payload.Thumbnail, MediaImage); err != nil {
			return dto.AICourseResponse{}, err
		}
	}

	var course models.AICourse
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		course, err = tx.AICourses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrAICourseNotFound)
		}

		course.Title = trimmedOr(payload.Title, course.Title)
		course.Description = trimmedOr(payload.Description, course.Description)
		course.Tool = trimmedOr(payload.Tool, course.Tool)
		course.Thumbnail = trimmedOr(payload.Thumbnail, course.Thumbnail)
		course.Level = trimmedOr(payload.Level, course.Level)
		course.Status = trimmedOr(payload.Status, course.Status)

		if payload.Tree != nil {
			tree := curriculum.RenumberLevels(dto.LevelsFromRequest(payload.Tree))
			if err := validateTreeReferences(ctx, tx, course.ID, tree); err != nil {
				return err
			}
			course.Tree = tree
		}

		return tx.AICourses.Update(ctx, &course)
	})
	if err != nil {
		return dto.AICourseResponse{}, err
	}

	s.cache.invalidate(ctx, course.ID)
	publishEvent(ctx, s.events, EventUpdated, resourceAICourse, course.ID, fmt.Sprintf("AI course %s updated", course.Title))
	return dto.NewAICourseResponse(course), nil
}

// Delete removes the course together with every lesson it owns.
func (s *aiCourseService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "ai_course.delete", trace.WithAttributes(attribute.String("ai_course.id", id)))
	defer span.End()

	var removed int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.AICourses.GetByIDForUpdate(ctx, id); err != nil {
			return notFound(err, ErrAICourseNotFound)
		}
		var err error
		if removed, err = tx.AILessons.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		return notFound(tx.AICourses.Delete(ctx, id), ErrAICourseNotFound)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}

	span.SetAttributes(attribute.Int64("ai_course.lessons_removed", removed))
	s.cache.invalidate(ctx, id)
	observability.TreeMutations().WithLabelValues("cascade_delete").Inc()
	s.logger.Info().Str("ai_course_id", id).Int64("lessons_removed", removed).Msg("ai course deleted")
	publishEvent(ctx, s.events, EventDeleted, resourceAICourse, id, "AI course deleted")
	return nil
}

func (s *aiCourseService) AttachChildren(ctx context.Context, parentID string, levelIndex int, childIDs []string) (dto.AICourseResponse, error) {
	if err := requireID("id", parentID); err != nil {
		return dto.AICourseResponse{}, err
	}
	if len(childIDs) == 0 {
		return dto.AICourseResponse{}, newValidationError("lessonIds", "at least one lesson id is required")
	}
	if err := requireIDs("lessonIds", childIDs); err != nil {
		return dto.AICourseResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "ai_course.attach_children", trace.WithAttributes(
		attribute.String("ai_course.id", parentID),
		attribute.Int("ai_course.level_index", levelIndex),
		attribute.Int("ai_course.children", len(childIDs)),
	))
	defer span.End()

	var course models.AICourse
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		course, err = tx.AICourses.GetByIDForUpdate(ctx, parentID)
		if err != nil {
			return notFound(err, ErrAICourseNotFound)
		}

		tree, err := curriculum.AttachToLevel(course.Tree, levelIndex, childIDs)
		if err != nil {
			return ErrLevelNotFound
		}
		if err := validateTreeReferences(ctx, tx, course.ID, tree); err != nil {
			return err
		}

		course.Tree = tree
		return tx.AICourses.Update(ctx, &course)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "attach failed")
		return dto.AICourseResponse{}, err
	}

	s.cache.invalidate(ctx, course.ID)
	observability.TreeMutations().WithLabelValues("attach").Inc()
	publishEvent(ctx, s.events, EventUpdated, resourceAICourse, course.ID, fmt.Sprintf("%d lesson(s) added to level %d", len(childIDs), levelIndex+1))
	return dto.NewAICourseResponse(course), nil
}

// DetachChild removes childID from every level. Detaching an id the tree does not hold is a no-op.
func (s *aiCourseService) DetachChild(ctx context.Context, parentID, childID string) (dto.AICourseResponse, error) {
	if err := requireID("id", parentID); err != nil {
		return dto.AICourseResponse{}, err
	}
	if err := requireID("lessonId", childID); err != nil {
		return dto.AICourseResponse{}, err
	}

	var (
		course  models.AICourse
		changed bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		course, err = tx.AICourses.GetByIDForUpdate(ctx, parentID)
		if err != nil {
			return notFound(err, ErrAICourseNotFound)
		}

		var tree []models.Level
		tree, changed = curriculum.DetachFromLevels(course.Tree, childID)
		if !changed {
			return nil
		}
		course.Tree = tree
		return tx.AICourses.Update(ctx, &course)
	})
	if err != nil {
		return dto.AICourseResponse{}, err
	}
	if !changed {
		return dto.NewAICourseResponse(course), nil
	}

	s.cache.invalidate(ctx, course.ID)
	observability.TreeMutations().WithLabelValues("detach").Inc()
	publishEvent(ctx, s.events, EventUpdated, resourceAICourse, course.ID, "lesson removed from tree")
	return dto.NewAICourseResponse(course), nil
}

// CommitTree replaces the stored tree with a client draft, writing only when the draft differs.
func (s *aiCourseService) CommitTree(ctx context.Context, id string, payload dto.CommitTreeRequest) (dto.TreeCommitResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.TreeCommitResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.TreeCommitResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "ai_course.commit_tree", trace.WithAttributes(
		attribute.String("ai_course.id", id),
		attribute.Int("ai_course.levels", len(payload.Tree)),
	))
	defer span.End()

	next := curriculum.RenumberLevels(dto.LevelsFromRequest(payload.Tree))

	var (
		course models.AICourse
		diff   curriculum.TreeDiff
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		course, err = tx.AICourses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrAICourseNotFound)
		}
		if err := validateTreeReferences(ctx, tx, course.ID, next); err != nil {
			return err
		}

		diff = curriculum.Diff(course.Tree, next)
		if diff.Empty() {
			return nil
		}
		course.Tree = next
		return tx.AICourses.Update(ctx, &course)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		return dto.TreeCommitResponse{}, err
	}

	committed := !diff.Empty()
	span.SetAttributes(attribute.Bool("ai_course.committed", committed))
	if committed {
		s.cache.invalidate(ctx, course.ID)
		observability.TreeMutations().WithLabelValues("commit").Inc()
		publishEvent(ctx, s.events, EventUpdated, resourceAICourse, course.ID, fmt.Sprintf("AI course %s tree saved", course.Title))
	}

	return dto.TreeCommitResponse{
		Course:    dto.NewAICourseResponse(course),
		Committed: committed,
		Changes: dto.TreeChanges{
			AddedLessons:   diff.AddedLessons,
			RemovedLessons: diff.RemovedLessons,
			ChangedLevels:  diff.ChangedLevels,
			AddedLevels:    diff.AddedLevels,
			RemovedLevels:  diff.RemovedLevels,
		},
	}, nil
}

// validateTreeReferences checks that every referenced id is well formed, appears once and
// names an existing lesson of courseID.
func validateTreeReferences(ctx context.Context, tx *repository.Store, courseID string, tree []models.Level) error {
	ids := curriculum.LessonIDs(tree)
	if err := requireIDs("tree", ids); err != nil {
		return err
	}
	if dupes := curriculum.Duplicates(ids); len(dupes) > 0 {
		return newValidationError("tree", "lesson %q appears more than once", dupes[0])
	}
	if len(ids) == 0 {
		return nil
	}

	lessons, err := tx.AILessons.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	owners := make(map[string]string, len(lessons))
	for _, lesson := range lessons {
		owners[lesson.ID] = lesson.AICourseID
	}
	for _, id := range ids {
		owner, ok := owners[id]
		if !ok {
			return newValidationError("tree", "lesson %q does not exist", id)
		}
		if owner != courseID {
			return newValidationError("tree", "lesson %q does not belong to this course", id)
		}
	}
	return nil
}
