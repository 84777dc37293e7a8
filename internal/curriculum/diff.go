package curriculum

import (
	"github.com/noah-isme/gema-content-admin/internal/models"
)

// TreeDiff summarises what a committed draft changes relative to the stored tree.
type TreeDiff struct {
	AddedLessons   []string `json:"addedLessons"`
	RemovedLessons []string `json:"removedLessons"`
	ChangedLevels  []int    `json:"changedLevels"`
	AddedLevels    int      `json:"addedLevels"`
	RemovedLevels  int      `json:"removedLevels"`
}

// Empty reports whether applying the draft would be a no-op.
func (d TreeDiff) Empty() bool {
	return len(d.AddedLessons) == 0 && len(d.RemovedLessons) == 0 && len(d.ChangedLevels) == 0 &&
		d.AddedLevels == 0 && d.RemovedLevels == 0
}

// Diff compares two trees position by position. Level numbers are ignored because both
// sides are expected to be renumbered.
func Diff(prev, next []models.Level) TreeDiff {
	diff := TreeDiff{
		AddedLessons:   []string{},
		RemovedLessons: []string{},
		ChangedLevels:  []int{},
	}

	before := toSet(LessonIDs(prev))
	after := toSet(LessonIDs(next))
	for _, id := range LessonIDs(next) {
		if _, ok := before[id]; !ok {
			diff.AddedLessons = append(diff.AddedLessons, id)
		}
	}
	for _, id := range LessonIDs(prev) {
		if _, ok := after[id]; !ok {
			diff.RemovedLessons = append(diff.RemovedLessons, id)
		}
	}

	shared := len(prev)
	if len(next) < shared {
		shared = len(next)
	}
	for i := 0; i < shared; i++ {
		if !levelEqual(prev[i], next[i]) {
			diff.ChangedLevels = append(diff.ChangedLevels, i+1)
		}
	}
	if len(next) > len(prev) {
		diff.AddedLevels = len(next) - len(prev)
	} else {
		diff.RemovedLevels = len(prev) - len(next)
	}
	return diff
}

func levelEqual(a, b models.Level) bool {
	if a.Topic != b.Topic || a.CanRead != b.CanRead || a.CanListen != b.CanListen {
		return false
	}
	if len(a.Lessons) != len(b.Lessons) {
		return false
	}
	for i := range a.Lessons {
		if a.Lessons[i] != b.Lessons[i] {
			return false
		}
	}
	return true
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
