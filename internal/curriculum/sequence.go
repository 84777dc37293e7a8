// Package curriculum holds the pure rules that keep nested course structures consistent:
// contiguous numbering of levels and lessons and the reference arrays that tie a parent
// document to its independently stored children.
package curriculum

import (
	"errors"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

var (
	// ErrIndexOutOfRange is returned when a position does not exist in a sequence.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrLevelNotFound is returned when a level index does not exist in a tree.
	ErrLevelNotFound = errors.New("level not found")
)

// Renumber returns a copy of items whose position field, written through set, runs 1..N in slice order.
func Renumber[T any](items []T, set func(*T, int)) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		set(&out[i], i+1)
	}
	return out
}

// ReorderOnRemoval drops the item at removedIndex and renumbers the rest.
func ReorderOnRemoval[T any](items []T, removedIndex int, set func(*T, int)) ([]T, error) {
	if removedIndex < 0 || removedIndex >= len(items) {
		return nil, ErrIndexOutOfRange
	}
	remaining := make([]T, 0, len(items)-1)
	remaining = append(remaining, items[:removedIndex]...)
	remaining = append(remaining, items[removedIndex+1:]...)
	return Renumber(remaining, set), nil
}

// SetLevelNumber writes the 1-based level field.
func SetLevelNumber(level *models.Level, position int) { level.Level = position }

// SetAILessonOrder writes the order field of an AI lesson.
func SetAILessonOrder(lesson *models.AILesson, position int) { lesson.Order = position }

// SetLessonOrder writes the order field of a course lesson.
func SetLessonOrder(lesson *models.Lesson, position int) { lesson.Order = position }

// RenumberLevels renumbers tree levels by array position.
func RenumberLevels(levels []models.Level) []models.Level {
	return Renumber(CloneLevels(levels), SetLevelNumber)
}

// MoveItem places the item keyed id at the 1-based position, clamped to the sequence bounds, and
// renumbers every item through set.
func MoveItem[T any](items []T, id string, position int, idOf func(T) string, set func(*T, int)) ([]T, error) {
	ids := make([]string, 0, len(items))
	byID := make(map[string]T, len(items))
	for _, item := range items {
		key := idOf(item)
		ids = append(ids, key)
		byID[key] = item
	}

	moved, err := Move(ids, id, position)
	if err != nil {
		return nil, err
	}
	ordered := make([]T, 0, len(moved))
	for _, key := range moved {
		ordered = append(ordered, byID[key])
	}
	return Renumber(ordered, set), nil
}

// RemoveItem drops the item keyed id and renumbers the rest.
func RemoveItem[T any](items []T, id string, idOf func(T) string, set func(*T, int)) ([]T, error) {
	for i, item := range items {
		if idOf(item) == id {
			return ReorderOnRemoval(items, i, set)
		}
	}
	return nil, ErrIndexOutOfRange
}

// AILessonID keys an AI lesson by its id.
func AILessonID(lesson models.AILesson) string { return lesson.ID }

// LessonID keys a course lesson by its id.
func LessonID(lesson models.Lesson) string { return lesson.ID }
