package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
)

func TestChallengeDayConstraints(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	challenge, err := f.challenges.Create(ctx, dto.ChallengeCreateRequest{Title: "7 days of prompts", Duration: 7})
	require.NoError(t, err)

	day3, err := f.days.Create(ctx, dto.ChallengeDayCreateRequest{
		ChallengeID: challenge.ID,
		Day:         3,
		Title:       "Roles",
		Content:     "<p>Use roles</p><img src=x onerror=alert(1)>",
		Tasks:       []string{" write a role prompt "},
		Questions: []dto.QuestionRequest{
			{Question: "Best opener?", Options: []string{"You are", "Please"}, Answer: 0},
		},
	})
	require.NoError(t, err)
	require.NotContains(t, day3.Content, "onerror")
	require.Equal(t, []string{"write a role prompt"}, day3.Tasks)

	day1, err := f.days.Create(ctx, dto.ChallengeDayCreateRequest{ChallengeID: challenge.ID, Day: 1, Title: "Start"})
	require.NoError(t, err)

	_, err = f.days.Create(ctx, dto.ChallengeDayCreateRequest{ChallengeID: challenge.ID, Day: 3, Title: "Again"})
	require.ErrorIs(t, err, ErrChallengeDayExists)
	require.ErrorIs(t, err, ErrConflict)

	_, err = f.days.Create(ctx, dto.ChallengeDayCreateRequest{ChallengeID: challenge.ID, Day: 8, Title: "Too late"})
	require.True(t, IsValidationError(err))

	_, err = f.days.Create(ctx, dto.ChallengeDayCreateRequest{
		ChallengeID: challenge.ID,
		Day:         2,
		Title:       "Quiz",
		Questions:   []dto.QuestionRequest{{Question: "?", Options: []string{"a", "b"}, Answer: 2}},
	})
	require.True(t, IsValidationError(err))

	stored, err := f.challenges.Get(ctx, challenge.ID, true)
	require.NoError(t, err)
	require.Equal(t, []string{day1.ID, day3.ID}, stored.Days)
	require.Len(t, stored.Populated, 2)

	_, err = f.challenges.Update(ctx, challenge.ID, dto.ChallengeUpdateRequest{Duration: intPtr(2)})
	require.True(t, IsValidationError(err))

	_, err = f.days.Update(ctx, day1.ID, dto.ChallengeDayUpdateRequest{Day: intPtr(3)})
	require.ErrorIs(t, err, ErrChallengeDayExists)

	moved, err := f.days.Update(ctx, day1.ID, dto.ChallengeDayUpdateRequest{Day: intPtr(5)})
	require.NoError(t, err)
	require.Equal(t, 5, moved.Day)

	stored, err = f.challenges.Get(ctx, challenge.ID, false)
	require.NoError(t, err)
	require.Equal(t, []string{day3.ID, day1.ID}, stored.Days)

	shrunk, err := f.challenges.Update(ctx, challenge.ID, dto.ChallengeUpdateRequest{Duration: intPtr(5)})
	require.NoError(t, err)
	require.Equal(t, 5, shrunk.Duration)
}

func TestChallengeDeleteCascadesDays(t *testing.T) {
	f := newContentFixture(t)
	ctx := context.Background()

	challenge, err := f.challenges.Create(ctx, dto.ChallengeCreateRequest{Title: "Short", Duration: 2})
	require.NoError(t, err)
	day, err := f.days.Create(ctx, dto.ChallengeDayCreateRequest{ChallengeID: challenge.ID, Day: 1, Title: "One"})
	require.NoError(t, err)

	populated, err := f.days.Get(ctx, day.ID, true)
	require.NoError(t, err)
	require.Equal(t, "Short", populated.Challenge.Title)

	require.NoError(t, f.days.Delete(ctx, day.ID))
	stored, err := f.challenges.Get(ctx, challenge.ID, false)
	require.NoError(t, err)
	require.Empty(t, stored.Days)

	_, err = f.days.Create(ctx, dto.ChallengeDayCreateRequest{ChallengeID: challenge.ID, Day: 2, Title: "Two"})
	require.NoError(t, err)
	require.NoError(t, f.challenges.Delete(ctx, challenge.ID))

	page, err := f.days.List(ctx, dto.ListQuery{ParentID: challenge.ID})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, 0, page.Pagination.TotalPages)
}

func TestWhitespaceOnlyFieldsAreRejected(t *testing.T) {
	f := newContentFixture(t)
	prompts := NewPromptService(f.store, testValidator(), nil, nil, testLogger())
	templates := NewCertificateTemplateService(f.store, testValidator(), NewMediaPolicy(0, 0), f.bus, testLogger())
	ctx := context.Background()

	_, err := f.courses.Create(ctx, dto.CourseCreateRequest{Title: "  "})
	require.True(t, IsValidationError(err))
	_, err = f.challenges.Create(ctx, dto.ChallengeCreateRequest{Title: "\t", Duration: 3})
	require.True(t, IsValidationError(err))
	_, err = prompts.Create(ctx, dto.PromptCreateRequest{Title: "Blank body", Content: "   "})
	require.True(t, IsValidationError(err))
	_, err = templates.Create(ctx, dto.CertificateTemplateCreateRequest{Name: " "})
	require.True(t, IsValidationError(err))

	course, err := f.courses.Create(ctx, dto.CourseCreateRequest{Title: "Kept"})
	require.NoError(t, err)
	_, err = f.courses.Update(ctx, course.ID, dto.CourseUpdateRequest{Title: stringPtr("   ")})
	require.True(t, IsValidationError(err))

	challenge, err := f.challenges.Create(ctx, dto.ChallengeCreateRequest{Title: "Kept", Duration: 3})
	require.NoError(t, err)
	_, err = f.challenges.Update(ctx, challenge.ID, dto.ChallengeUpdateRequest{Title: stringPtr(" ")})
	require.True(t, IsValidationError(err))

	storedCourse, err := f.courses.Get(ctx, course.ID, false)
	require.NoError(t, err)
	require.Equal(t, "Kept", storedCourse.Title)
	storedChallenge, err := f.challenges.Get(ctx, challenge.ID, false)
	require.NoError(t, err)
	require.Equal(t, "Kept", storedChallenge.Title)
}
