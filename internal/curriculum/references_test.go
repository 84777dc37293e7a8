package curriculum

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

func TestAttachToLevelAppendsAndPreserves(t *testing.T) {
	levels := []models.Level{
		{Level: 1, Topic: "intro", Lessons: []string{"a"}},
		{Level: 2, Topic: "deep", Lessons: []string{}},
	}

	out, err := AttachToLevel(levels, 0, []string{"b", "a", "c", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, out[0].Lessons)
	require.Equal(t, []string{"a"}, levels[0].Lessons, "source tree must stay untouched")
	require.Empty(t, out[1].Lessons)
}

func TestAttachToLevelMissingLevel(t *testing.T) {
	_, err := AttachToLevel([]models.Level{{Level: 1}}, 3, []string{"x"})
	require.ErrorIs(t, err, ErrLevelNotFound)
}

func TestDetachFromLevels(t *testing.T) {
	levels := []models.Level{
		{Level: 1, Lessons: []string{"a", "b"}},
		{Level: 2, Lessons: []string{"b", "c"}},
	}

	out, removed := DetachFromLevels(levels, "b")
	require.True(t, removed)
	require.Equal(t, []string{"a"}, out[0].Lessons)
	require.Equal(t, []string{"c"}, out[1].Lessons)

	same, removed := DetachFromLevels(out, "zzz")
	require.False(t, removed)
	require.Equal(t, out, same)
}

func TestMove(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}

	moved, err := Move(ids, "d", 1)
	require.NoError(t, err)
	require.Equal(t, []string{"d", "a", "b", "c"}, moved)

	moved, err = Move(ids, "a", 99)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "d", "a"}, moved)

	_, err = Move(ids, "x", 1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestDuplicates(t *testing.T) {
	require.Equal(t, []string{"a"}, Duplicates([]string{"a", "b", "a", "a"}))
	require.Empty(t, Duplicates([]string{"a", "b"}))
}

func TestDiff(t *testing.T) {
	prev := []models.Level{
		{Level: 1, Topic: "intro", Lessons: []string{"a", "b"}},
		{Level: 2, Topic: "deep", Lessons: []string{"c"}},
	}
	next := []models.Level{
		{Level: 1, Topic: "intro", Lessons: []string{"a", "b"}},
		{Level: 2, Topic: "deep", Lessons: []string{"d"}, CanRead: true},
		{Level: 3, Topic: "extra", Lessons: []string{}},
	}

	diff := Diff(prev, next)
	require.Equal(t, []string{"d"}, diff.AddedLessons)
	require.Equal(t, []string{"c"}, diff.RemovedLessons)
	require.Equal(t, []int{2}, diff.ChangedLevels)
	require.Equal(t, 1, diff.AddedLevels)
	require.Zero(t, diff.RemovedLevels)
	require.False(t, diff.Empty())

	require.True(t, Diff(prev, CloneLevels(prev)).Empty())
}
