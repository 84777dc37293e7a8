package service

import (
	"encoding/base64"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/gema-content-admin/internal/observability"
)

// MediaKind distinguishes the media categories accepted by content fields.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

const bytesPerMB = 1024 * 1024

// MediaPolicy validates inline media values before they are persisted.
type MediaPolicy struct {
	MaxImageBytes int64
	MaxAudioBytes int64
}

// NewMediaPolicy builds a policy from megabyte limits, defaulting to 5MB images and 10MB audio.
func NewMediaPolicy(maxImageMB, maxAudioMB int) MediaPolicy {
	if maxImageMB <= 0 {
		maxImageMB = 5
	}
	if maxAudioMB <= 0 {
		maxAudioMB = 10
	}
	return MediaPolicy{
		MaxImageBytes: int64(maxImageMB) * bytesPerMB,
		MaxAudioBytes: int64(maxAudioMB) * bytesPerMB,
	}
}

func (p MediaPolicy) limit(kind MediaKind) int64 {
	if kind == MediaAudio {
		return p.MaxAudioBytes
	}
	return p.MaxImageBytes
}

// Check accepts empty values, https URLs and base64 data URIs of the right kind within the size cap.
func (p MediaPolicy) Check(field, value string, kind MediaKind) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if !strings.HasPrefix(value, "data:") {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
			observability.UploadRejected().WithLabelValues("url").Inc()
			return newValidationError(field, "must be an https URL or a data URI")
		}
		return nil
	}

	comma := strings.Index(value, ",")
	if comma < 0 || !strings.HasSuffix(value[:comma], ";base64") {
		observability.UploadRejected().WithLabelValues("encoding").Inc()
		return newValidationError(field, "data URI must be base64 encoded")
	}

	encoded := value[comma+1:]
	limit := p.limit(kind)
	if int64(base64.StdEncoding.DecodedLen(len(encoded))) > limit+3 {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return newValidationError(field, "%s exceeds %dMB", kind, limit/bytesPerMB)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		observability.UploadRejected().WithLabelValues("encoding").Inc()
		return newValidationError(field, "invalid base64 payload")
	}
	if int64(len(decoded)) > limit {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return newValidationError(field, "%s exceeds %dMB", kind, limit/bytesPerMB)
	}

	if !matchesKind(mimetype.Detect(decoded).String(), kind) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return newValidationError(field, "must contain %s data", kind)
	}
	return nil
}

// CheckAll runs Check over every value of a list field.
func (p MediaPolicy) CheckAll(field string, values []string, kind MediaKind) error {
	for _, value := range values {
		if err := p.Check(field, value, kind); err != nil {
			return err
		}
	}
	return nil
}

func matchesKind(detected string, kind MediaKind) bool {
	detected = strings.ToLower(detected)
	switch kind {
	case MediaAudio:
		return strings.HasPrefix(detected, "audio/") || detected == "application/ogg" || detected == "video/webm"
	default:
		return strings.HasPrefix(detected, "image/")
	}
}
