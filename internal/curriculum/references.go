package curriculum

import (
	"github.com/noah-isme/gema-content-admin/internal/models"
)

// CloneLevels deep-copies a tree so callers never alias the lesson arrays of stored documents.
func CloneLevels(levels []models.Level) []models.Level {
	out := make([]models.Level, len(levels))
	for i, level := range levels {
		out[i] = level
		out[i].Lessons = append([]string{}, level.Lessons...)
	}
	return out
}

// AttachToLevel appends ids to the lessons of levels[levelIndex], keeping existing entries
// and skipping ids the level already holds.
func AttachToLevel(levels []models.Level, levelIndex int, ids []string) ([]models.Level, error) {
	if levelIndex < 0 || levelIndex >= len(levels) {
		return nil, ErrLevelNotFound
	}
	out := CloneLevels(levels)
	out[levelIndex].Lessons = AppendUnique(out[levelIndex].Lessons, ids...)
	return out, nil
}

// DetachFromLevels removes id from every level it appears in. The boolean reports whether
// anything was removed.
func DetachFromLevels(levels []models.Level, id string) ([]models.Level, bool) {
	out := CloneLevels(levels)
	removed := false
	for i := range out {
		var hit bool
		out[i].Lessons, hit = RemoveID(out[i].Lessons, id)
		removed = removed || hit
	}
	return out, removed
}

// LessonIDs flattens the tree into its referenced lesson ids in reading order.
func LessonIDs(levels []models.Level) []string {
	ids := make([]string, 0)
	for _, level := range levels {
		ids = append(ids, level.Lessons...)
	}
	return ids
}

// AppendUnique appends the ids not yet present in base, preserving order.
func AppendUnique(base []string, ids ...string) []string {
	seen := make(map[string]struct{}, len(base)+len(ids))
	out := make([]string, 0, len(base)+len(ids))
	for _, id := range base {
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// RemoveID removes every occurrence of id from ids.
func RemoveID(ids []string, id string) ([]string, bool) {
	out := make([]string, 0, len(ids))
	removed := false
	for _, candidate := range ids {
		if candidate == id {
			removed = true
			continue
		}
		out = append(out, candidate)
	}
	return out, removed
}

// Move places id at the 1-based position, clamping to the bounds of the slice.
func Move(ids []string, id string, position int) ([]string, error) {
	index := -1
	for i, candidate := range ids {
		if candidate == id {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, ErrIndexOutOfRange
	}

	rest, _ := RemoveID(ids, id)
	target := position - 1
	if target < 0 {
		target = 0
	}
	if target > len(rest) {
		target = len(rest)
	}

	out := make([]string, 0, len(ids))
	out = append(out, rest[:target]...)
	out = append(out, id)
	out = append(out, rest[target:]...)
	return out, nil
}

// Duplicates returns the ids that appear more than once, in first-seen order.
func Duplicates(ids []string) []string {
	counts := make(map[string]int, len(ids))
	dupes := make([]string, 0)
	for _, id := range ids {
		counts[id]++
		if counts[id] == 2 {
			dupes = append(dupes, id)
		}
	}
	return dupes
}
