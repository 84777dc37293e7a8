package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/observability"
	"github.com/noah-isme/gema-content-admin/internal/repository"
	"github.com/noah-isme/gema-content-admin/pkg/cloudinary"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the cap for its kind.
	ErrUploadTooLarge error = &ValidationError{Field: "file", Message: "file exceeds maximum allowed size"}
	// ErrUploadTypeNotAllowed indicates the sniffed MIME type does not match the requested kind.
	ErrUploadTypeNotAllowed error = &ValidationError{Field: "file", Message: "file type not allowed"}
	// ErrUploadMissing indicates the multipart form carried no file.
	ErrUploadMissing error = &ValidationError{Field: "file", Message: "file is required"}
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Store(ctx context.Context, kind, name string, reader io.Reader) (cloudinary.Asset, error)
}

// UploadService validates media files and pushes them to storage.
type UploadService interface {
	Upload(ctx context.Context, kind MediaKind, file *multipart.FileHeader, uploadedBy string) (dto.UploadResponse, error)
}

type uploadService struct {
	storage FileStorage
	repo    repository.UploadRepository
	policy  MediaPolicy
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service. A nil storage makes every upload fail as unavailable.
func NewUploadService(storage FileStorage, repo repository.UploadRepository, policy MediaPolicy, logger zerolog.Logger) UploadService {
	return &uploadService{
		storage: storage,
		repo:    repo,
		policy:  policy,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/gema-content-admin/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, kind MediaKind, file *multipart.FileHeader, uploadedBy string) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store", trace.WithAttributes(attribute.String("upload.kind", string(kind))))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	fail := func(reason string, err error) (dto.UploadResponse, error) {
		if reason != "" {
			observability.UploadRejected().WithLabelValues(reason).Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return dto.UploadResponse{}, err
	}

	if kind != MediaImage && kind != MediaAudio {
		return fail("kind", newValidationError("kind", "kind must be image or audio"))
	}
	if file == nil {
		return fail("missing", ErrUploadMissing)
	}
	if s.storage == nil {
		return fail("", ErrIntegrationUnavailable)
	}

	limit := s.policy.limit(kind)
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
		attribute.Int64("upload.max_bytes", limit),
	)
	if file.Size > limit {
		return fail("size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		return fail("", fmt.Errorf("open upload: %w", err))
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, limit+1)); err != nil {
		return fail("", fmt.Errorf("read upload: %w", err))
	}
	if int64(buf.Len()) > limit {
		return fail("size", ErrUploadTooLarge)
	}

	detected := mimetype.Detect(buf.Bytes()).String()
	span.SetAttributes(attribute.String("upload.detected_mime", detected))
	if !matchesKind(detected, kind) {
		return fail("type", ErrUploadTypeNotAllowed)
	}

	sum := sha256.Sum256(buf.Bytes())
	checksum := hex.EncodeToString(sum[:])
	existing, err := s.repo.FindByChecksum(ctx, checksum)
	if err != nil {
		return fail("", err)
	}
	if existing != nil && existing.Kind == string(kind) {
		s.logger.Debug().Str("checksum", checksum).Str("upload_id", existing.ID).Msg("reusing stored media")
		observability.UploadRequests().WithLabelValues(string(kind)).Inc()
		span.SetStatus(codes.Ok, "deduplicated")
		return newUploadResponse(*existing), nil
	}

	name := sanitizeFileName(file.Filename)
	asset, err := s.storage.Store(ctx, string(kind), name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fail("storage", err)
	}

	record := models.UploadRecord{
		UploadedBy: uploadedBy,
		Kind:       string(kind),
		FileName:   name,
		URL:        asset.URL,
		MimeType:   detected,
		SizeBytes:  int64(buf.Len()),
		Checksum:   checksum,
	}
	if err := s.repo.Create(ctx, &record); err != nil {
		return fail("", err)
	}

	observability.UploadRequests().WithLabelValues(string(kind)).Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Str("upload_id", record.ID).Str("kind", record.Kind).Int64("size_bytes", record.SizeBytes).Msg("media uploaded")
	return newUploadResponse(record), nil
}

func newUploadResponse(record models.UploadRecord) dto.UploadResponse {
	return dto.UploadResponse{
		ID:        record.ID,
		Kind:      record.Kind,
		URL:       record.URL,
		FileName:  record.FileName,
		MimeType:  record.MimeType,
		SizeBytes: record.SizeBytes,
		Checksum:  record.Checksum,
		CreatedAt: record.CreatedAt,
	}
}

// ParseMediaKind accepts "image" or "audio" in any case.
func ParseMediaKind(value string) (MediaKind, error) {
	switch kind := MediaKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case MediaImage, MediaAudio:
		return kind, nil
	case "":
		return "", newValidationError("kind", "kind is required")
	default:
		return "", newValidationError("kind", "unsupported media kind %q", value)
	}
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
