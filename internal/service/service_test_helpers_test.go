package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

var testDBCounter int64

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(newTestDB(t))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return NewValidator()
}

func intPtr(v int) *int { return &v }

func stringPtr(v string) *string { return &v }

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []dto.ContentEvent
}

func (b *recordingBus) Publish(ctx context.Context, event dto.ContentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) Subscribe() (<-chan dto.ContentEvent, func()) {
	ch := make(chan dto.ContentEvent)
	return ch, func() {}
}

func (b *recordingBus) Start(ctx context.Context) {}

func (b *recordingBus) types(resource string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, event := range b.events {
		if event.Resource == resource {
			out = append(out, event.Type)
		}
	}
	return out
}

// contentFixture wires every content service against one in-memory store.
type contentFixture struct {
	db         *gorm.DB
	store      *repository.Store
	bus        *recordingBus
	aiCourses  AICourseService
	aiLessons  AILessonService
	courses    CourseService
	lessons    LessonService
	challenges ChallengeService
	days       ChallengeDayService
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()
	db := newTestDB(t)
	store := repository.NewStore(db)
	bus := &recordingBus{}
	validate := testValidator()
	media := NewMediaPolicy(0, 0)

	return &contentFixture{
		db:         db,
		store:      store,
		bus:        bus,
		aiCourses:  NewAICourseService(store, validate, media, bus, nil, 0, testLogger()),
		aiLessons:  NewAILessonService(store, validate, media, bus, nil, 0, testLogger()),
		courses:    NewCourseService(store, validate, media, bus, testLogger()),
		lessons:    NewLessonService(store, validate, bus, testLogger()),
		challenges: NewChallengeService(store, validate, media, bus, testLogger()),
		days:       NewChallengeDayService(store, validate, bus, testLogger()),
	}
}

func (f *contentFixture) createAICourse(t *testing.T, title string, topics ...string) dto.AICourseResponse {
	t.Helper()
	tree := make([]dto.LevelRequest, 0, len(topics))
	for _, topic := range topics {
		tree = append(tree, dto.LevelRequest{Topic: topic})
	}
	course, err := f.aiCourses.Create(context.Background(), dto.AICourseCreateRequest{Title: title, Tree: tree})
	require.NoError(t, err)
	return course
}

func (f *contentFixture) createAILesson(t *testing.T, courseID, title string) dto.AILessonResponse {
	t.Helper()
	lesson, err := f.aiLessons.Create(context.Background(), dto.AILessonCreateRequest{
		AICourseID: courseID,
		Title:      title,
		Content:    "<p>" + title + "</p>",
	})
	require.NoError(t, err)
	return lesson
}
