package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/curriculum"
	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

const (
	resourceCourse = "course"
	resourceLesson = "lesson"
)

// CourseService manages regular courses and keeps their lesson list in lesson order.
type CourseService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.CourseResponse], error)
	Get(ctx context.Context, id string, populateLessons bool) (dto.CourseResponse, error)
	Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, id string, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, id string) error
}

// LessonService manages course lessons.
type LessonService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.LessonResponse], error)
	Get(ctx context.Context, id string, populateCourse bool) (dto.LessonResponse, error)
	Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	Update(ctx context.Context, id string, payload dto.LessonUpdateRequest) (dto.LessonResponse, error)
	Delete(ctx context.Context, id string) error
}

type courseService struct {
	store     *repository.Store
	validator *validator.Validate
	media     MediaPolicy
	events    EventBus
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(store *repository.Store, validate *validator.Validate, media MediaPolicy, events EventBus, logger zerolog.Logger) CourseService {
	return &courseService{
		store:     store,
		validator: validate,
		media:     media,
		events:    events,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.CourseResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "id")
	if err != nil {
		return dto.ListResult[dto.CourseResponse]{}, err
	}
	courses, total, err := s.store.Courses.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.CourseResponse]{}, err
	}
	return listResult(courses, total, query, dto.NewCourseResponse), nil
}

func (s *courseService) Get(ctx context.Context, id string, populateLessons bool) (dto.CourseResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.CourseResponse{}, err
	}
	course, err := s.store.Courses.GetByID(ctx, id)
	if err != nil {
		return dto.CourseResponse{}, notFound(err, ErrCourseNotFound)
	}

	response := dto.NewCourseResponse(course)
	if populateLessons {
		lessons, err := s.store.Lessons.ListByCourse(ctx, course.ID)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		response.Populated = make([]dto.LessonResponse, 0, len(lessons))
		for _, lesson := range lessons {
			response.Populated = append(response.Populated, dto.NewLessonResponse(lesson))
		}
	}
	return response, nil
}

func (s *courseService) Create(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}
	if err := s.media.Check("thumbnail", payload.Thumbnail, MediaImage); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Category:    strings.TrimSpace(payload.Category),
		Level:       payload.Level,
		Price:       payload.Price,
		Thumbnail:   strings.TrimSpace(payload.Thumbnail),
		Status:      payload.Status,
	}
	if err := s.store.Courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourceCourse, course.ID, fmt.Sprintf("Course %s created", course.Title))
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, id string, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.CourseResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}
	if payload.Thumbnail != nil {
		if err := s.media.Check("thumbnail", *payload.Thumbnail, MediaImage); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	var course models.Course
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		course, err = tx.Courses.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrCourseNotFound)
		}

		course.Title = trimmedOr(payload.Title, course.Title)
		course.Description = trimmedOr(payload.Description, course.Description)
		course.Category = trimmedOr(payload.Category, course.Category)
		course.Level = trimmedOr(payload.Level, course.Level)
		course.Thumbnail = trimmedOr(payload.Thumbnail, course.Thumbnail)
		course.Status = trimmedOr(payload.Status, course.Status)
		if payload.Price != nil {
			course.Price = *payload.Price
		}

		if payload.Lessons != nil {
			if err := reorderCourseLessons(ctx, tx, &course, payload.Lessons); err != nil {
				return err
			}
		}
		return tx.Courses.Update(ctx, &course)
	})
	if err != nil {
		return dto.CourseResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourceCourse, course.ID, fmt.Sprintf("Course %s updated", course.Title))
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	var removed int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Courses.GetByIDForUpdate(ctx, id); err != nil {
			return notFound(err, ErrCourseNotFound)
		}
		var err error
		if removed, err = tx.Lessons.DeleteByCourse(ctx, id); err != nil {
			return err
		}
		return notFound(tx.Courses.Delete(ctx, id), ErrCourseNotFound)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("course_id", id).Int64("lessons_removed", removed).Msg("course deleted")
	publishEvent(ctx, s.events, EventDeleted, resourceCourse, id, "Course deleted")
	return nil
}

// reorderCourseLessons applies a client supplied ordering, which must name exactly the course's lessons.
func reorderCourseLessons(ctx context.Context, tx *repository.Store, course *models.Course, order []string) error {
	if err := requireIDs("lessons", order); err != nil {
		return err
	}
	if dupes := curriculum.Duplicates(order); len(dupes) > 0 {
		return newValidationError("lessons", "lesson %q appears more than once", dupes[0])
	}

	lessons, err := tx.Lessons.ListByCourse(ctx, course.ID)
	if err != nil {
		return err
	}
	byID := make(map[string]models.Lesson, len(lessons))
	for _, lesson := range lessons {
		byID[lesson.ID] = lesson
	}
	if len(order) != len(byID) {
		return newValidationError("lessons", "must list every lesson of the course exactly once")
	}

	ordered := make([]models.Lesson, 0, len(order))
	for _, id := range order {
		lesson, ok := byID[id]
		if !ok {
			return newValidationError("lessons", "lesson %q does not belong to this course", id)
		}
		ordered = append(ordered, lesson)
	}
	if err := tx.Lessons.UpdateOrders(ctx, curriculum.Renumber(ordered, curriculum.SetLessonOrder)); err != nil {
		return err
	}
	course.Lessons = append(course.Lessons[:0:0], order...)
	return nil
}

// syncCourseLessons renumbers a course's lessons and rewrites its lesson list to match.
func syncCourseLessons(ctx context.Context, tx *repository.Store, courseID string) error {
	lessons, err := tx.Lessons.ListByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	lessons = curriculum.Renumber(lessons, curriculum.SetLessonOrder)
	if err := tx.Lessons.UpdateOrders(ctx, lessons); err != nil {
		return err
	}

	course, err := tx.Courses.GetByIDForUpdate(ctx, courseID)
	if err != nil {
		return ignoreNotFound(err)
	}
	ids := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		ids = append(ids, lesson.ID)
	}
	course.Lessons = ids
	return tx.Courses.Update(ctx, &course)
}

type lessonService struct {
	store     *repository.Store
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	events    EventBus
	logger    zerolog.Logger
}

// NewLessonService constructs the course lesson service.
func NewLessonService(store *repository.Store, validate *validator.Validate, events EventBus, logger zerolog.Logger) LessonService {
	return &lessonService{
		store:     store,
		validator: validate,
		sanitizer: contentPolicy(),
		events:    events,
		logger:    logger.With().Str("component", "lesson_service").Logger(),
	}
}

func (s *lessonService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.LessonResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "courseId")
	if err != nil {
		return dto.ListResult[dto.LessonResponse]{}, err
	}
	lessons, total, err := s.store.Lessons.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.LessonResponse]{}, err
	}
	return listResult(lessons, total, query, dto.NewLessonResponse), nil
}

func (s *lessonService) Get(ctx context.Context, id string, populateCourse bool) (dto.LessonResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.LessonResponse{}, err
	}
	lesson, err := s.store.Lessons.GetByID(ctx, id)
	if err != nil {
		return dto.LessonResponse{}, notFound(err, ErrLessonNotFound)
	}

	response := dto.NewLessonResponse(lesson)
	if populateCourse {
		course, err := s.store.Courses.GetByID(ctx, lesson.CourseID)
		if err == nil {
			parent := dto.NewCourseResponse(course)
			response.Course = &parent
		} else if !isMissing(err) {
			return dto.LessonResponse{}, err
		}
	}
	return response, nil
}

func (s *lessonService) Create(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}
	if err := requireID("courseId", payload.CourseID); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		CourseID: payload.CourseID,
		Title:    strings.TrimSpace(payload.Title),
		Content:  sanitizeContent(s.sanitizer, payload.Content),
		VideoURL: strings.TrimSpace(payload.VideoURL),
		Duration: payload.Duration,
	}
	if lesson.Content == "" {
		return dto.LessonResponse{}, newValidationError("content", "content is empty after sanitising")
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Courses.GetByIDForUpdate(ctx, lesson.CourseID); err != nil {
			if isMissing(err) {
				return newValidationError("courseId", "course %q does not exist", lesson.CourseID)
			}
			return err
		}
		max, err := tx.Lessons.MaxOrder(ctx, lesson.CourseID)
		if err != nil {
			return err
		}
		lesson.Order = max + 1
		if err := tx.Lessons.Create(ctx, &lesson); err != nil {
			return err
		}
		if payload.Order != nil && *payload.Order < lesson.Order {
			if err := moveLesson(ctx, tx, &lesson, *payload.Order); err != nil {
				return err
			}
		}
		return syncCourseLessons(ctx, tx, lesson.CourseID)
	})
	if err != nil {
		return dto.LessonResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourceLesson, lesson.ID, fmt.Sprintf("Lesson %s created", lesson.Title))
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Update(ctx context.Context, id string, payload dto.LessonUpdateRequest) (dto.LessonResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.LessonResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	var lesson models.Lesson
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		lesson, err = tx.Lessons.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrLessonNotFound)
		}
		if payload.Order != nil {
			if _, err := tx.Courses.GetByIDForUpdate(ctx, lesson.CourseID); ignoreNotFound(err) != nil {
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
		lesson.VideoURL = trimmedOr(payload.VideoURL, lesson.VideoURL)
		if payload.Duration != nil {
			lesson.Duration = *payload.Duration
		}
		if err := tx.Lessons.Update(ctx, &lesson); err != nil {
			return err
		}

		if payload.Order == nil || *payload.Order == lesson.Order {
			return nil
		}
		if err := moveLesson(ctx, tx, &lesson, *payload.Order); err != nil {
			return err
		}
		return syncCourseLessons(ctx, tx, lesson.CourseID)
	})
	if err != nil {
		return dto.LessonResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourceLesson, lesson.ID, fmt.Sprintf("Lesson %s updated", lesson.Title))
	return dto.NewLessonResponse(lesson), nil
}

func (s *lessonService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}

	var lesson models.Lesson
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		lesson, err = tx.Lessons.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrLessonNotFound)
		}
		if _, err := tx.Courses.GetByIDForUpdate(ctx, lesson.CourseID); ignoreNotFound(err) != nil {
			return err
		}
		if err := tx.Lessons.Delete(ctx, id); err != nil {
			return notFound(err, ErrLessonNotFound)
		}
		return syncCourseLessons(ctx, tx, lesson.CourseID)
	})
	if err != nil {
		return err
	}

	publishEvent(ctx, s.events, EventDeleted, resourceLesson, id, fmt.Sprintf("Lesson %s deleted", lesson.Title))
	return nil
}

func moveLesson(ctx context.Context, tx *repository.Store, lesson *models.Lesson, position int) error {
	siblings, err := tx.Lessons.ListByCourse(ctx, lesson.CourseID)
	if err != nil {
		return err
	}
	ordered, err := curriculum.MoveItem(siblings, lesson.ID, position, curriculum.LessonID, curriculum.SetLessonOrder)
	if err != nil {
		return err
	}
	for _, sibling := range ordered {
		if sibling.ID == lesson.ID {
			lesson.Order = sibling.Order
		}
	}
	return tx.Lessons.UpdateOrders(ctx, ordered)
}
