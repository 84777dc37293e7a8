package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/gema-content-admin/internal/curriculum"
	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads mastery paths from YAML seed files.
type SeedService interface {
	Seed(ctx context.Context, token string, raw []byte) (dto.SeedReport, error)
}

type seedService struct {
	store     *repository.Store
	media     MediaPolicy
	sanitizer *bluemonday.Policy
	events    EventBus
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(store *repository.Store, media MediaPolicy, events EventBus, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		store:     store,
		media:     media,
		sanitizer: contentPolicy(),
		events:    events,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

// Seed creates every course in the document together with its lessons and tree, all or nothing.
func (s *seedService) Seed(ctx context.Context, token string, raw []byte) (dto.SeedReport, error) {
	if !s.enabled {
		return dto.SeedReport{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.SeedReport{}, ErrSeedUnauthorized
	}

	document, err := ParseSeedDocument(raw)
	if err != nil {
		return dto.SeedReport{}, err
	}
	if err := s.checkDocument(document); err != nil {
		return dto.SeedReport{}, err
	}

	report := dto.SeedReport{AICourses: make([]string, 0, len(document.AICourses))}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		for _, seed := range document.AICourses {
			courseID, lessons, err := s.seedCourse(ctx, tx, seed)
			if err != nil {
				return fmt.Errorf("seed %s: %w", seed.Title, err)
			}
			report.AICourses = append(report.AICourses, courseID)
			report.AILessons += lessons
		}
		return nil
	})
	if err != nil {
		return dto.SeedReport{}, err
	}

	for _, id := range report.AICourses {
		publishEvent(ctx, s.events, EventCreated, resourceAICourse, id, "Mastery path seeded")
	}
	s.logger.Info().Int("ai_courses", len(report.AICourses)).Int("ai_lessons", report.AILessons).Msg("mastery paths seeded")
	return report, nil
}

func (s *seedService) seedCourse(ctx context.Context, tx *repository.Store, seed dto.SeedAICourse) (string, int, error) {
	course := models.AICourse{
		Title:       strings.TrimSpace(seed.Title),
		Description: strings.TrimSpace(seed.Description),
		Tool:        strings.TrimSpace(seed.Tool),
		Thumbnail:   strings.TrimSpace(seed.Thumbnail),
		Level:       seed.Level,
		Status:      seed.Status,
	}
	if err := tx.AICourses.Create(ctx, &course); err != nil {
		return "", 0, err
	}

	tree := make([]models.Level, 0, len(seed.Levels))
	order, created := 0, 0
	for _, seedLevel := range seed.Levels {
		level := models.Level{
			Topic:     strings.TrimSpace(seedLevel.Topic),
			CanRead:   seedLevel.CanRead,
			CanListen: seedLevel.CanListen,
			Lessons:   []string{},
		}
		for _, seedLesson := range seedLevel.Lessons {
			order++
			lesson := models.AILesson{
				AICourseID: course.ID,
				Title:      strings.TrimSpace(seedLesson.Title),
				Content:    sanitizeContent(s.sanitizer, seedLesson.Content),
				Order:      order,
				Photos:     trimAll(seedLesson.Photos),
				Media:      strings.TrimSpace(seedLesson.Media),
				CanRead:    seedLesson.CanRead,
				CanListen:  seedLesson.CanListen,
			}
			if err := tx.AILessons.Create(ctx, &lesson); err != nil {
				return "", 0, err
			}
			level.Lessons = append(level.Lessons, lesson.ID)
			created++
		}
		tree = append(tree, level)
	}

	course.Tree = curriculum.RenumberLevels(tree)
	if err := tx.AICourses.Update(ctx, &course); err != nil {
		return "", 0, err
	}
	return course.ID, created, nil
}

// checkDocument validates the whole file before anything is written.
func (s *seedService) checkDocument(document dto.SeedDocument) error {
	if len(document.AICourses) == 0 {
		return newValidationError("aiCourses", "seed file contains no courses")
	}
	for i, course := range document.AICourses {
		field := fmt.Sprintf("aiCourses[%d]", i)
		if strings.TrimSpace(course.Title) == "" {
			return newValidationError(field+".title", "title is required")
		}
		if err := s.media.Check(field+".thumbnail", course.Thumbnail, MediaImage); err != nil {
			return err
		}
		for j, level := range course.Levels {
			if strings.TrimSpace(level.Topic) == "" {
				return newValidationError(fmt.Sprintf("%s.levels[%d].topic", field, j), "topic is required")
			}
			for k, lesson := range level.Lessons {
				lessonField := fmt.Sprintf("%s.levels[%d].lessons[%d]", field, j, k)
				if strings.TrimSpace(lesson.Title) == "" || strings.TrimSpace(lesson.Content) == "" {
					return newValidationError(lessonField, "title and content are required")
				}
				if err := s.media.CheckAll(lessonField+".photos", lesson.Photos, MediaImage); err != nil {
					return err
				}
				if err := s.media.Check(lessonField+".media", lesson.Media, MediaAudio); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// ParseSeedDocument decodes a YAML seed file, rejecting unknown keys.
func ParseSeedDocument(raw []byte) (dto.SeedDocument, error) {
	var document dto.SeedDocument
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&document); err != nil {
		return dto.SeedDocument{}, newValidationError("body", "invalid seed file: %v", err)
	}
	return document, nil
}
