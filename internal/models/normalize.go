package models

import "strings"

// Course levels accepted by the admin.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Publication states shared by courses, challenges and prompts.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Payment states.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// NormalizeCourseLevel maps case variants onto the canonical level names.
func NormalizeCourseLevel(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "intermediate":
		return LevelIntermediate
	case "advanced":
		return LevelAdvanced
	default:
		return LevelBeginner
	}
}

// NormalizeStatus falls back to draft for unknown publication states.
func NormalizeStatus(status string) string {
	value := strings.ToLower(strings.TrimSpace(status))
	switch value {
	case StatusDraft, StatusPublished, StatusArchived:
		return value
	default:
		return StatusDraft
	}
}

// NormalizePaymentStatus falls back to pending for unknown payment states.
func NormalizePaymentStatus(status string) string {
	value := strings.ToLower(strings.TrimSpace(status))
	switch value {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return value
	default:
		return PaymentPending
	}
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(strings.ToLower(tag))
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return ""
	}
	return "|" + strings.Join(cleaned, "|") + "|"
}

func decodeTags(raw string) []string {
	raw = strings.Trim(raw, "|")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		tags = append(tags, trimmed)
	}
	return tags
}

// IsPaymentStatus reports whether status is one of the known payment states.
func IsPaymentStatus(status string) bool {
	switch status {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}
