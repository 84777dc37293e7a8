package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
)

func TestCleanupSweepRemovesOrphansAndRepairsReferences(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	aiCourse := f.createAICourse(t, "Prompting", "Basics")
	kept := f.createAILesson(t, aiCourse.ID, "Kept")
	lost := f.createAILesson(t, aiCourse.ID, "Lost")
	_, err := f.aiCourses.AttachChildren(ctx, aiCourse.ID, 0, []string{kept.ID, lost.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.AILesson{}, "id = ?", lost.ID).Error)

	orphan := models.AILesson{AICourseID: uuid.NewString(), Title: "Orphan", Content: "<p>x</p>", Order: 1}
	require.NoError(t, f.store.AILessons.Create(ctx, &orphan))

	course, lessons := createCourseWithLessons(t, f, "One", "Two")
	require.NoError(t, f.db.Delete(&models.Lesson{}, "id = ?", lessons[0].ID).Error)

	challenge, err := f.challenges.Create(ctx, dto.ChallengeCreateRequest{Title: "5 days", Duration: 5})
	require.NoError(t, err)
	day, err := f.days.Create(ctx, dto.ChallengeDayCreateRequest{ChallengeID: challenge.ID, Day: 1, Title: "Start"})
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.ChallengeDay{}, "id = ?", day.ID).Error)

	sweeper := NewCleanupService(f.store, nil, 0, testLogger())
	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), report.AILessonsRemoved)
	require.Zero(t, report.LessonsRemoved)
	require.Zero(t, report.DaysRemoved)
	require.Equal(t, 1, report.AICourseRefsDetached)
	require.Equal(t, 1, report.CourseRefsDetached)
	require.Equal(t, 1, report.ChallengeRefsDetached)
	require.False(t, report.FinishedAt.Before(report.StartedAt))

	repairedAI, err := f.aiCourses.Get(ctx, aiCourse.ID)
	require.NoError(t, err)
	require.Equal(t, []string{kept.ID}, repairedAI.Tree[0].Lessons)

	repairedCourse, err := f.courses.Get(ctx, course.ID, false)
	require.NoError(t, err)
	require.Equal(t, []string{lessons[1].ID}, repairedCourse.Lessons)

	repairedChallenge, err := f.challenges.Get(ctx, challenge.ID, false)
	require.NoError(t, err)
	require.Empty(t, repairedChallenge.Days)

	// a second sweep finds nothing left to do
	again, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, again.AILessonsRemoved)
	require.Zero(t, again.AICourseRefsDetached)
	require.Zero(t, again.CourseRefsDetached)
	require.Zero(t, again.ChallengeRefsDetached)
}

func TestCleanupSchedulerLifecycle(t *testing.T) {
	sweeper := NewCleanupService(newTestStore(t), nil, 0, testLogger())

	require.Error(t, sweeper.Start("every now and then"))
	require.NoError(t, sweeper.Start("@every 1h"))
	require.Error(t, sweeper.Start(""))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)
	sweeper.Stop(ctx)

	require.NoError(t, sweeper.Start(""))
	sweeper.Stop(ctx)
}
