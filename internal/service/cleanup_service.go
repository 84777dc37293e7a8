package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/observability"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

// DefaultCleanupSchedule runs the orphan sweep hourly.
const DefaultCleanupSchedule = "@every 1h"

// CleanupService removes children whose parent is gone and drops references to missing children.
type CleanupService interface {
	Sweep(ctx context.Context) (dto.CleanupReport, error)
	Start(schedule string) error
	Stop(ctx context.Context)
}

type cleanupService struct {
	store  *repository.Store
	cache  *aiCourseCache
	logger zerolog.Logger

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewCleanupService constructs the orphan sweeper.
func NewCleanupService(store *repository.Store, redisClient *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) CleanupService {
	componentLogger := logger.With().Str("component", "cleanup_service").Logger()
	return &cleanupService{
		store:  store,
		cache:  newAICourseCache(redisClient, cacheTTL, componentLogger),
		logger: componentLogger,
	}
}

func (s *cleanupService) Sweep(ctx context.Context) (dto.CleanupReport, error) {
	report := dto.CleanupReport{StartedAt: time.Now().UTC()}
	var touched []string

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if report.AILessonsRemoved, err = tx.AILessons.DeleteOrphans(ctx); err != nil {
			return fmt.Errorf("sweep ai lessons: %w", err)
		}
		if report.LessonsRemoved, err = tx.Lessons.DeleteOrphans(ctx); err != nil {
			return fmt.Errorf("sweep lessons: %w", err)
		}
		if report.DaysRemoved, err = tx.ChallengeDays.DeleteOrphans(ctx); err != nil {
			return fmt.Errorf("sweep challenge days: %w", err)
		}

		if touched, err = detachMissingAILessons(ctx, tx); err != nil {
			return err
		}
		report.AICourseRefsDetached = len(touched)
		if report.CourseRefsDetached, err = detachMissingLessons(ctx, tx); err != nil {
			return err
		}
		if report.ChallengeRefsDetached, err = detachMissingDays(ctx, tx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("orphan sweep failed")
		return dto.CleanupReport{}, err
	}

	s.cache.invalidate(ctx, touched...)
	report.FinishedAt = time.Now().UTC()

	observability.CleanupRemoved().WithLabelValues("ai_lessons").Add(float64(report.AILessonsRemoved))
	observability.CleanupRemoved().WithLabelValues("lessons").Add(float64(report.LessonsRemoved))
	observability.CleanupRemoved().WithLabelValues("challenge_days").Add(float64(report.DaysRemoved))

	s.logger.Info().
		Int64("ai_lessons_removed", report.AILessonsRemoved).
		Int64("lessons_removed", report.LessonsRemoved).
		Int64("days_removed", report.DaysRemoved).
		Int("ai_courses_repaired", report.AICourseRefsDetached).
		Int("courses_repaired", report.CourseRefsDetached).
		Int("challenges_repaired", report.ChallengeRefsDetached).
		Msg("orphan sweep finished")
	return report, nil
}

// Start schedules Sweep. Calling Start twice replaces nothing and returns an error.
func (s *cleanupService) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return fmt.Errorf("cleanup scheduler already running")
	}
	if schedule == "" {
		schedule = DefaultCleanupSchedule
	}

	logger := cronLogger{logger: s.logger}
	scheduler := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.logger.Info().Str("schedule", schedule).Msg("cleanup scheduler started")
	return nil
}

// Stop halts the scheduler and waits for a running sweep until ctx expires.
func (s *cleanupService) Stop(ctx context.Context) {
	s.mu.Lock()
	scheduler := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if scheduler == nil {
		return
	}
	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("cleanup sweep still running at shutdown")
	}
}

// detachMissingAILessons drops tree references to lessons that no longer exist under the course.
func detachMissingAILessons(ctx context.Context, tx *repository.Store) ([]string, error) {
	courses, err := tx.AICourses.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var repaired []string
	for _, course := range courses {
		lessons, err := tx.AILessons.ListByCourse(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		present := make(map[string]struct{}, len(lessons))
		for _, lesson := range lessons {
			present[lesson.ID] = struct{}{}
		}

		changed := false
		for i := range course.Tree {
			kept := make([]string, 0, len(course.Tree[i].Lessons))
			for _, id := range course.Tree[i].Lessons {
				if _, ok := present[id]; ok {
					kept = append(kept, id)
				}
			}
			if len(kept) != len(course.Tree[i].Lessons) {
				course.Tree[i].Lessons = kept
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := tx.AICourses.Update(ctx, &course); err != nil {
			return nil, err
		}
		repaired = append(repaired, course.ID)
	}
	return repaired, nil
}

func detachMissingLessons(ctx context.Context, tx *repository.Store) (int, error) {
	courses, err := tx.Courses.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, course := range courses {
		lessons, err := tx.Lessons.ListByCourse(ctx, course.ID)
		if err != nil {
			return 0, err
		}
		if sameIDs(course.Lessons, lessons, func(l models.Lesson) string { return l.ID }) {
			continue
		}
		if err := syncCourseLessons(ctx, tx, course.ID); err != nil {
			return 0, err
		}
		repaired++
	}
	return repaired, nil
}

func detachMissingDays(ctx context.Context, tx *repository.Store) (int, error) {
	challenges, err := tx.Challenges.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, challenge := range challenges {
		days, err := tx.ChallengeDays.ListByChallenge(ctx, challenge.ID)
		if err != nil {
			return 0, err
		}
		if sameIDs(challenge.Days, days, func(d models.ChallengeDay) string { return d.ID }) {
			continue
		}
		if err := syncChallengeDays(ctx, tx, challenge.ID); err != nil {
			return 0, err
		}
		repaired++
	}
	return repaired, nil
}

func sameIDs[T any](ids []string, items []T, id func(T) string) bool {
	if len(ids) != len(items) {
		return false
	}
	for i, item := range items {
		if ids[i] != id(item) {
			return false
		}
	}
	return true
}

// cronLogger routes scheduler diagnostics through zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
