package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

const resourceCertificateTemplate = "certificateTemplate"

// CertificateTemplateService manages certificate layouts. At most one template per course
// (or one global template when courseId is empty) is the default.
type CertificateTemplateService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.CertificateTemplateResponse], error)
	Get(ctx context.Context, id string) (dto.CertificateTemplateResponse, error)
	Create(ctx context.Context, payload dto.CertificateTemplateCreateRequest) (dto.CertificateTemplateResponse, error)
	Update(ctx context.Context, id string, payload dto.CertificateTemplateUpdateRequest) (dto.CertificateTemplateResponse, error)
	Delete(ctx context.Context, id string) error
}

type certificateTemplateService struct {
	store     *repository.Store
	validator *validator.Validate
	media     MediaPolicy
	sanitizer *bluemonday.Policy
	events    EventBus
	logger    zerolog.Logger
}

// NewCertificateTemplateService constructs the certificate template service.
func NewCertificateTemplateService(store *repository.Store, validate *validator.Validate, media MediaPolicy, events EventBus, logger zerolog.Logger) CertificateTemplateService {
	return &certificateTemplateService{
		store:     store,
		validator: validate,
		media:     media,
		sanitizer: contentPolicy(),
		events:    events,
		logger:    logger.With().Str("component", "certificate_template_service").Logger(),
	}
}

func (s *certificateTemplateService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.CertificateTemplateResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "courseId")
	if err != nil {
		return dto.ListResult[dto.CertificateTemplateResponse]{}, err
	}
	templates, total, err := s.store.Certificates.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.CertificateTemplateResponse]{}, err
	}
	return listResult(templates, total, query, dto.NewCertificateTemplateResponse), nil
}

func (s *certificateTemplateService) Get(ctx context.Context, id string) (dto.CertificateTemplateResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.CertificateTemplateResponse{}, err
	}
	template, err := s.store.Certificates.GetByID(ctx, id)
	if err != nil {
		return dto.CertificateTemplateResponse{}, notFound(err, ErrCertificateTemplateNotFound)
	}
	return dto.NewCertificateTemplateResponse(template), nil
}

func (s *certificateTemplateService) Create(ctx context.Context, payload dto.CertificateTemplateCreateRequest) (dto.CertificateTemplateResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CertificateTemplateResponse{}, err
	}
	if err := s.media.Check("background", payload.Background, MediaImage); err != nil {
		return dto.CertificateTemplateResponse{}, err
	}

	template := models.CertificateTemplate{
		Name:          strings.TrimSpace(payload.Name),
		CourseID:      strings.TrimSpace(payload.CourseID),
		Title:         strings.TrimSpace(payload.Title),
		Body:          sanitizeContent(s.sanitizer, payload.Body),
		SignatureName: strings.TrimSpace(payload.SignatureName),
		Background:    strings.TrimSpace(payload.Background),
		IsDefault:     payload.IsDefault,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureCourse(ctx, tx, template.CourseID); err != nil {
			return err
		}
		if err := tx.Certificates.Create(ctx, &template); err != nil {
			return err
		}
		if template.IsDefault {
			return tx.Certificates.ClearDefault(ctx, template.CourseID, template.ID)
		}
		return nil
	})
	if err != nil {
		return dto.CertificateTemplateResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourceCertificateTemplate, template.ID, fmt.Sprintf("Certificate template %s created", template.Name))
	return dto.NewCertificateTemplateResponse(template), nil
}

func (s *certificateTemplateService) Update(ctx context.Context, id string, payload dto.CertificateTemplateUpdateRequest) (dto.CertificateTemplateResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.CertificateTemplateResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.CertificateTemplateResponse{}, err
	}
	if payload.Background != nil {
		if err := s.media.Check("background", *payload.Background, MediaImage); err != nil {
			return dto.CertificateTemplateResponse{}, err
		}
	}

	var template models.CertificateTemplate
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		template, err = tx.Certificates.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrCertificateTemplateNotFound)
		}

		if payload.CourseID != nil {
			courseID := strings.TrimSpace(*payload.CourseID)
			if err := ensureCourse(ctx, tx, courseID); err != nil {
				return err
			}
			template.CourseID = courseID
		}
		template.Name = trimmedOr(payload.Name, template.Name)
		template.Title = trimmedOr(payload.Title, template.Title)
		template.SignatureName = trimmedOr(payload.SignatureName, template.SignatureName)
		template.Background = trimmedOr(payload.Background, template.Background)
		if payload.Body != nil {
			template.Body = sanitizeContent(s.sanitizer, *payload.Body)
		}
		if payload.IsDefault != nil {
			template.IsDefault = *payload.IsDefault
		}

		if err := tx.Certificates.Update(ctx, &template); err != nil {
			return err
		}
		if template.IsDefault {
			return tx.Certificates.ClearDefault(ctx, template.CourseID, template.ID)
		}
		return nil
	})
	if err != nil {
		return dto.CertificateTemplateResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourceCertificateTemplate, template.ID, fmt.Sprintf("Certificate template %s updated", template.Name))
	return dto.NewCertificateTemplateResponse(template), nil
}

func (s *certificateTemplateService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.store.Certificates.Delete(ctx, id); err != nil {
		return notFound(err, ErrCertificateTemplateNotFound)
	}
	publishEvent(ctx, s.events, EventDeleted, resourceCertificateTemplate, id, "Certificate template deleted")
	return nil
}

// ensureCourse accepts an empty id (no course) or the id of an existing course.
func ensureCourse(ctx context.Context, tx *repository.Store, courseID string) error {
	if courseID == "" {
		return nil
	}
	if err := requireID("courseId", courseID); err != nil {
		return err
	}
	if _, err := tx.Courses.GetByID(ctx, courseID); err != nil {
		if isMissing(err) {
			return newValidationError("courseId", "course %q does not exist", courseID)
		}
		return err
	}
	return nil
}
