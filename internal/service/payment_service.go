package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/repository"
)

const (
	resourcePayment   = "payment"
	paymentSheetName  = "Payments"
	paymentDateLayout = "2006-01-02 15:04:05"
)

var paymentExportHeader = []interface{}{"ID", "User Email", "Course ID", "Amount", "Currency", "Status", "Provider", "Reference", "Created At"}

// PaymentService manages payment records.
type PaymentService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.PaymentResponse], error)
	Get(ctx context.Context, id string, populateCourse bool) (dto.PaymentResponse, error)
	Create(ctx context.Context, payload dto.PaymentCreateRequest) (dto.PaymentResponse, error)
	Update(ctx context.Context, id string, payload dto.PaymentUpdateRequest) (dto.PaymentResponse, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, status string) ([]byte, error)
}

type paymentService struct {
	store     *repository.Store
	validator *validator.Validate
	events    EventBus
	logger    zerolog.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(store *repository.Store, validate *validator.Validate, events EventBus, logger zerolog.Logger) PaymentService {
	return &paymentService{
		store:     store,
		validator: validate,
		events:    events,
		logger:    logger.With().Str("component", "payment_service").Logger(),
	}
}

func (s *paymentService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.PaymentResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "courseId")
	if err != nil {
		return dto.ListResult[dto.PaymentResponse]{}, err
	}
	payments, total, err := s.store.Payments.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.PaymentResponse]{}, err
	}
	return listResult(payments, total, query, dto.NewPaymentResponse), nil
}

func (s *paymentService) Get(ctx context.Context, id string, populateCourse bool) (dto.PaymentResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.PaymentResponse{}, err
	}
	payment, err := s.store.Payments.GetByID(ctx, id)
	if err != nil {
		return dto.PaymentResponse{}, notFound(err, ErrPaymentNotFound)
	}

	response := dto.NewPaymentResponse(payment)
	if populateCourse && payment.CourseID != "" {
		course, err := s.store.Courses.GetByID(ctx, payment.CourseID)
		if err == nil {
			parent := dto.NewCourseResponse(course)
			response.Course = &parent
		} else if !isMissing(err) {
			return dto.PaymentResponse{}, err
		}
	}
	return response, nil
}

func (s *paymentService) Create(ctx context.Context, payload dto.PaymentCreateRequest) (dto.PaymentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PaymentResponse{}, err
	}

	payment := models.Payment{
		UserEmail: strings.ToLower(strings.TrimSpace(payload.UserEmail)),
		CourseID:  strings.TrimSpace(payload.CourseID),
		Amount:    payload.Amount,
		Currency:  payload.Currency,
		Status:    payload.Status,
		Provider:  strings.TrimSpace(payload.Provider),
		Reference: strings.TrimSpace(payload.Reference),
	}
	if err := ensureCourse(ctx, s.store, payment.CourseID); err != nil {
		return dto.PaymentResponse{}, err
	}

	if err := s.store.Payments.Create(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourcePayment, payment.ID, fmt.Sprintf("Payment from %s recorded", payment.UserEmail))
	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Update(ctx context.Context, id string, payload dto.PaymentUpdateRequest) (dto.PaymentResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.PaymentResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.PaymentResponse{}, err
	}

	payment, err := s.store.Payments.GetByID(ctx, id)
	if err != nil {
		return dto.PaymentResponse{}, notFound(err, ErrPaymentNotFound)
	}

	payment.Status = trimmedOr(payload.Status, payment.Status)
	payment.Provider = trimmedOr(payload.Provider, payment.Provider)
	payment.Reference = trimmedOr(payload.Reference, payment.Reference)
	if payload.Amount != nil {
		payment.Amount = *payload.Amount
	}
	if err := s.store.Payments.Update(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourcePayment, payment.ID, fmt.Sprintf("Payment marked %s", payment.Status))
	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.store.Payments.Delete(ctx, id); err != nil {
		return notFound(err, ErrPaymentNotFound)
	}
	publishEvent(ctx, s.events, EventDeleted, resourcePayment, id, "Payment deleted")
	return nil
}

// Export renders the payments with the given status (all when empty) as an xlsx workbook.
func (s *paymentService) Export(ctx context.Context, status string) ([]byte, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !models.IsPaymentStatus(status) {
		return nil, newValidationError("status", "unknown payment status %q", status)
	}

	payments, err := s.store.Payments.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	defer func() {
		if err := book.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to close payment workbook")
		}
	}()

	if err := book.SetSheetName("Sheet1", paymentSheetName); err != nil {
		return nil, fmt.Errorf("prepare payment sheet: %w", err)
	}
	if err := book.SetSheetRow(paymentSheetName, "A1", &paymentExportHeader); err != nil {
		return nil, fmt.Errorf("write payment header: %w", err)
	}

	for i, payment := range payments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			payment.ID,
			payment.UserEmail,
			payment.CourseID,
			payment.Amount,
			payment.Currency,
			payment.Status,
			payment.Provider,
			payment.Reference,
			payment.CreatedAt.UTC().Format(paymentDateLayout),
		}
		if err := book.SetSheetRow(paymentSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write payment row: %w", err)
		}
	}

	buffer, err := book.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode payment workbook: %w", err)
	}

	s.logger.Info().Int("rows", len(payments)).Str("status", status).Msg("payments exported")
	return buffer.Bytes(), nil
}
