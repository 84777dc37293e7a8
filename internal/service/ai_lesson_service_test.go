package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func lessonOrders(t *testing.T, f *contentFixture, courseID string) map[string]int {
	t.Helper()
	page, err := f.aiLessons.List(context.Background(), dto.ListQuery{ParentID: courseID, Limit: 100})
	require.NoError(t, err)
	orders := make(map[string]int, len(page.Items))
	for _, item := range page.Items {
		orders[item.Title] = item.Order
	}
	return orders
}

func TestAILessonCreateDefaultsAndMoves(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course := f.createAICourse(t, "Ordering", "One")

	f.createAILesson(t, course.ID, "A")
	f.createAILesson(t, course.ID, "B")
	inserted, err := f.aiLessons.Create(ctx, dto.AILessonCreateRequest{
		AICourseID: course.ID,
		Title:      "First",
		Content:    "<p>first</p><script>alert(1)</script>",
		Order:      intPtr(1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, inserted.Order)
	require.NotContains(t, inserted.Content, "script")

	require.Equal(t, map[string]int{"First": 1, "A": 2, "B": 3}, lessonOrders(t, f, course.ID))

	moved, err := f.aiLessons.Update(ctx, inserted.ID, dto.AILessonUpdateRequest{Order: intPtr(99)})
	require.NoError(t, err)
	require.Equal(t, 3, moved.Order)
	require.Equal(t, map[string]int{"A": 1, "B": 2, "First": 3}, lessonOrders(t, f, course.ID))
}

func TestAILessonConcurrentWritesKeepPositionsContiguous(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course := f.createAICourse(t, "Busy", "One")
	seed := f.createAILesson(t, course.ID, "Seed")
	_, err := f.aiCourses.AttachChildren(ctx, course.ID, 0, []string{seed.ID})
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers+1)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lesson, err := f.aiLessons.Create(ctx, dto.AILessonCreateRequest{
				AICourseID: course.ID,
				Title:      fmt.Sprintf("Writer %d", i),
				Content:    "<p>x</p>",
				Order:      intPtr(1),
			})
			if err == nil {
				_, err = f.aiCourses.AttachChildren(ctx, course.ID, 0, []string{lesson.ID})
			}
			errs <- err
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.aiCourses.DetachChild(ctx, course.ID, seed.ID)
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	orders := lessonOrders(t, f, course.ID)
	require.Len(t, orders, writers+1)
	positions := make([]int, 0, len(orders))
	for _, order := range orders {
		positions = append(positions, order)
	}
	sort.Ints(positions)
	for i, position := range positions {
		require.Equal(t, i+1, position)
	}

	stored, err := f.aiCourses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tree[0].Lessons, writers)
	require.NotContains(t, stored.Tree[0].Lessons, seed.ID)
}

func TestAILessonCreateRequiresExistingCourse(t *testing.T) {
	f := newContentFixture(t)

	_, err := f.aiLessons.Create(context.Background(), dto.AILessonCreateRequest{
		AICourseID: uuid.NewString(),
		Title:      "Orphan",
		Content:    "text",
	})
	require.True(t, IsValidationError(err))
	require.False(t, errors.Is(err, ErrNotFound))

	_, err = f.aiLessons.Create(context.Background(), dto.AILessonCreateRequest{
		AICourseID: uuid.NewString(),
		Title:      "Scripted",
		Content:    "<script>alert(1)</script>",
	})
	require.True(t, IsValidationError(err))
}

func TestAILessonDeleteRenumbersAndDetaches(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course := f.createAICourse(t, "Removal", "One")

	a := f.createAILesson(t, course.ID, "A")
	b := f.createAILesson(t, course.ID, "B")
	c := f.createAILesson(t, course.ID, "C")
	_, err := f.aiCourses.AttachChildren(ctx, course.ID, 0, []string{a.ID, b.ID, c.ID})
	require.NoError(t, err)

	require.NoError(t, f.aiLessons.Delete(ctx, b.ID))
	require.Equal(t, map[string]int{"A": 1, "C": 2}, lessonOrders(t, f, course.ID))

	stored, err := f.aiCourses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Equal(t, []string{a.ID, c.ID}, stored.Tree[0].Lessons)

	require.ErrorIs(t, f.aiLessons.Delete(ctx, b.ID), ErrAILessonNotFound)
}

func TestAILessonGetPopulatesCourse(t *testing.T) {
	f := newContentFixture(t)
	course := f.createAICourse(t, "Parent", "One")
	lesson := f.createAILesson(t, course.ID, "Child")

	plain, err := f.aiLessons.Get(context.Background(), lesson.ID, false)
	require.NoError(t, err)
	require.Nil(t, plain.AICourse)

	populated, err := f.aiLessons.Get(context.Background(), lesson.ID, true)
	require.NoError(t, err)
	require.NotNil(t, populated.AICourse)
	require.Equal(t, "Parent", populated.AICourse.Title)
}

func TestAILessonBatchSkipsBlankEntriesAndAttaches(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course := f.createAICourse(t, "Batch", "One", "Two")
	f.createAILesson(t, course.ID, "Existing")

	result, err := f.aiLessons.BatchCreate(ctx, dto.AILessonBatchRequest{
		AICourseID: course.ID,
		LevelIndex: intPtr(1),
		Lessons: []dto.AILessonDraft{
			{Title: "First", Content: "one"},
			{Title: "   ", Content: "ignored"},
			{Title: "Second", Content: "two"},
			{Title: "No content"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Skipped)
	require.Len(t, result.Created, 2)
	require.Equal(t, "First", result.Created[0].Title)
	require.Equal(t, 2, result.Created[0].Order)
	require.Equal(t, 3, result.Created[1].Order)

	stored, err := f.aiCourses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Tree[0].Lessons)
	require.Equal(t, []string{result.Created[0].ID, result.Created[1].ID}, stored.Tree[1].Lessons)

	_, err = f.aiLessons.BatchCreate(ctx, dto.AILessonBatchRequest{
		AICourseID: course.ID,
		Lessons:    []dto.AILessonDraft{{Title: "only title"}},
	})
	require.True(t, IsValidationError(err))

	_, err = f.aiLessons.BatchCreate(ctx, dto.AILessonBatchRequest{
		AICourseID: course.ID,
		LevelIndex: intPtr(7),
		Lessons:    []dto.AILessonDraft{{Title: "x", Content: "y"}},
	})
	require.ErrorIs(t, err, ErrLevelNotFound)
	require.Len(t, lessonOrders(t, f, course.ID), 3)
}

func TestAILessonBatchIsAllOrNothing(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course := f.createAICourse(t, "Atomic batch", "One")

	creates := 0
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:fail_second_lesson", func(tx *gorm.DB) {
		if tx.Statement.Table != "ai_lessons" {
			return
		}
		creates++
		if creates == 2 {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	_, err := f.aiLessons.BatchCreate(ctx, dto.AILessonBatchRequest{
		AICourseID: course.ID,
		LevelIndex: intPtr(0),
		Lessons: []dto.AILessonDraft{
			{Title: "One", Content: "1"},
			{Title: "Two", Content: "2"},
			{Title: "Three", Content: "3"},
		},
	})
	require.Error(t, err)
	require.Equal(t, 2, creates)
	require.Empty(t, lessonOrders(t, f, course.ID))

	stored, err := f.aiCourses.Get(ctx, course.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Tree[0].Lessons)
}

func TestAILessonBatchRejectsBadMediaBeforeWriting(t *testing.T) {
	f := newContentFixture(t)
	course := f.createAICourse(t, "Media", "One")

	_, err := f.aiLessons.BatchCreate(context.Background(), dto.AILessonBatchRequest{
		AICourseID: course.ID,
		Lessons: []dto.AILessonDraft{
			{Title: "Fine", Content: "ok"},
			{Title: "Bad", Content: "ok", Photos: []string{"ftp://example.com/a.png"}},
		},
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "lessons[1].photos", validationErr.Field)
	require.Empty(t, lessonOrders(t, f, course.ID))
}
