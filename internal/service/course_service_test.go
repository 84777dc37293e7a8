package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func createCourseWithLessons(t *testing.T, f *contentFixture, titles ...string) (dto.CourseResponse, []dto.LessonResponse) {
	t.Helper()
	ctx := context.Background()
	course, err := f.courses.Create(ctx, dto.CourseCreateRequest{Title: "Go fundamentals", Category: "programming", Price: 10})
	require.NoError(t, err)

	lessons := make([]dto.LessonResponse, 0, len(titles))
	for _, title := range titles {
		lesson, err := f.lessons.Create(ctx, dto.LessonCreateRequest{CourseID: course.ID, Title: title, Content: title + " body"})
		require.NoError(t, err)
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func TestCourseLessonListFollowsLessonOrder(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course, lessons := createCourseWithLessons(t, f, "Setup", "Types", "Loops")

	stored, err := f.courses.Get(ctx, course.ID, false)
	require.NoError(t, err)
	require.Equal(t, []string{lessons[0].ID, lessons[1].ID, lessons[2].ID}, stored.Lessons)
	require.Nil(t, stored.Populated)

	_, err = f.lessons.Update(ctx, lessons[2].ID, dto.LessonUpdateRequest{Order: intPtr(1)})
	require.NoError(t, err)

	stored, err = f.courses.Get(ctx, course.ID, true)
	require.NoError(t, err)
	require.Equal(t, []string{lessons[2].ID, lessons[0].ID, lessons[1].ID}, stored.Lessons)
	require.Len(t, stored.Populated, 3)
	require.Equal(t, "Loops", stored.Populated[0].Title)
	require.Equal(t, 1, stored.Populated[0].Order)

	require.NoError(t, f.lessons.Delete(ctx, lessons[0].ID))
	stored, err = f.courses.Get(ctx, course.ID, true)
	require.NoError(t, err)
	require.Equal(t, []string{lessons[2].ID, lessons[1].ID}, stored.Lessons)
	require.Equal(t, 2, stored.Populated[1].Order)
}

func TestCourseUpdateReordersByPermutation(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course, lessons := createCourseWithLessons(t, f, "A", "B", "C")

	order := []string{lessons[1].ID, lessons[2].ID, lessons[0].ID}
	updated, err := f.courses.Update(ctx, course.ID, dto.CourseUpdateRequest{Lessons: order, Title: stringPtr("Renamed")})
	require.NoError(t, err)
	require.Equal(t, order, updated.Lessons)
	require.Equal(t, "Renamed", updated.Title)

	first, err := f.lessons.Get(ctx, lessons[1].ID, true)
	require.NoError(t, err)
	require.Equal(t, 1, first.Order)
	require.NotNil(t, first.Course)

	_, err = f.courses.Update(ctx, course.ID, dto.CourseUpdateRequest{Lessons: order[:2]})
	require.True(t, IsValidationError(err))

	_, err = f.courses.Update(ctx, course.ID, dto.CourseUpdateRequest{Lessons: []string{order[0], order[0], order[1]}})
	require.True(t, IsValidationError(err))

	_, err = f.courses.Update(ctx, course.ID, dto.CourseUpdateRequest{Lessons: []string{order[0], order[1], uuid.NewString()}})
	require.True(t, IsValidationError(err))
}

func TestCourseDeleteCascadesLessons(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()
	course, lessons := createCourseWithLessons(t, f, "Only")

	require.NoError(t, f.courses.Delete(ctx, course.ID))
	_, err := f.lessons.Get(ctx, lessons[0].ID, false)
	require.ErrorIs(t, err, ErrLessonNotFound)
	_, err = f.courses.Get(ctx, course.ID, false)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestLessonCreateValidatesParentAndPayload(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	_, err := f.lessons.Create(ctx, dto.LessonCreateRequest{CourseID: uuid.NewString(), Title: "Lost", Content: "x"})
	require.True(t, IsValidationError(err))

	_, err = f.lessons.Create(ctx, dto.LessonCreateRequest{CourseID: uuid.NewString(), Title: "", Content: "x"})
	require.True(t, IsValidationError(err))

	course, _ := createCourseWithLessons(t, f)
	_, err = f.lessons.Create(ctx, dto.LessonCreateRequest{CourseID: course.ID, Title: "Video", Content: "x", VideoURL: "not a url"})
	require.True(t, IsValidationError(err))

	page, err := f.lessons.List(ctx, dto.ListQuery{ParentID: "bogus"})
	require.True(t, IsValidationError(err))
	require.Empty(t, page.Items)
}
