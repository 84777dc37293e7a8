package dto

import (
	"time"

	"github.com/noah-isme/gema-content-admin/internal/models"
)

// PromptCreateRequest validates prompt creation payloads.
type PromptCreateRequest struct {
	Title    string   `json:"title" validate:"required,notblank,max=255"`
	Content  string   `json:"content" validate:"required,notblank"`
	Category string   `json:"category" validate:"omitempty,max=120"`
	Tool     string   `json:"tool" validate:"omitempty,max=120"`
	Tags     []string `json:"tags" validate:"omitempty,dive,required"`
	Status   string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// PromptUpdateRequest patches a prompt.
type PromptUpdateRequest struct {
	Title    *string  `json:"title" validate:"omitempty,notblank,max=255"`
	Content  *string  `json:"content" validate:"omitempty,notblank"`
	Category *string  `json:"category" validate:"omitempty,max=120"`
	Tool     *string  `json:"tool" validate:"omitempty,max=120"`
	Tags     []string `json:"tags" validate:"omitempty,dive,required"`
	Status   *string  `json:"status" validate:"omitempty,oneof=draft published archived"`
}

// PromptRunRequest supplies values for a prompt's placeholders.
type PromptRunRequest struct {
	Variables map[string]string `json:"variables"`
}

// PromptRunResponse returns the rendered prompt and the model output.
type PromptRunResponse struct {
	PromptID string `json:"promptId"`
	Rendered string `json:"rendered"`
	Output   string `json:"output"`
	Model    string `json:"model"`
}

// PromptResponse serializes a prompt.
type PromptResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	Tool         string    `json:"tool"`
	Tags         []string  `json:"tags"`
	Status       string    `json:"status"`
	Placeholders []string  `json:"placeholders"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PaymentCreateRequest validates payment creation payloads.
type PaymentCreateRequest struct {
	UserEmail string  `json:"userEmail" validate:"required,notblank,email"`
	CourseID  string  `json:"courseId"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Currency  string  `json:"currency" validate:"required,notblank,len=3,alpha"`
	Status    string  `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Provider  string  `json:"provider" validate:"omitempty,max=60"`
	Reference string  `json:"reference" validate:"omitempty,max=120"`
}

// PaymentUpdateRequest patches a payment.
type PaymentUpdateRequest struct {
	Status    *string  `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Amount    *float64 `json:"amount" validate:"omitempty,gte=0"`
	Provider  *string  `json:"provider" validate:"omitempty,max=60"`
	Reference *string  `json:"reference" validate:"omitempty,max=120"`
}

// PaymentResponse serializes a payment.
type PaymentResponse struct {
	ID        string          `json:"id"`
	UserEmail string          `json:"userEmail"`
	CourseID  string          `json:"courseId"`
	Amount    float64         `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Provider  string          `json:"provider"`
	Reference string          `json:"reference"`
	Course    *CourseResponse `json:"course,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CertificateTemplateCreateRequest validates template creation payloads.
type CertificateTemplateCreateRequest struct {
	Name          string `json:"name" validate:"required,notblank,max=160"`
	CourseID      string `json:"courseId"`
	Title         string `json:"title" validate:"omitempty,max=255"`
	Body          string `json:"body"`
	SignatureName string `json:"signatureName" validate:"omitempty,max=160"`
	Background    string `json:"background"`
	IsDefault     bool   `json:"isDefault"`
}

// CertificateTemplateUpdateRequest patches a template.
type CertificateTemplateUpdateRequest struct {
	Name          *string `json:"name" validate:"omitempty,notblank,max=160"`
	CourseID      *string `json:"courseId"`
	Title         *string `json:"title" validate:"omitempty,max=255"`
	Body          *string `json:"body"`
	SignatureName *string `json:"signatureName" validate:"omitempty,max=160"`
	Background    *string `json:"background"`
	IsDefault     *bool   `json:"isDefault"`
}

// CertificateTemplateResponse serializes a template.
type CertificateTemplateResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CourseID      string    `json:"courseId"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	SignatureName string    `json:"signatureName"`
	Background    string    `json:"background"`
	IsDefault     bool      `json:"isDefault"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewPromptResponse converts a model into a DTO.
func NewPromptResponse(prompt models.Prompt, placeholders []string) PromptResponse {
	if placeholders == nil {
		placeholders = []string{}
	}
	return PromptResponse{
		ID:           prompt.ID,
		Title:        prompt.Title,
		Content:      prompt.Content,
		Category:     prompt.Category,
		Tool:         prompt.Tool,
		Tags:         append([]string{}, prompt.Tags...),
		Status:       prompt.Status,
		Placeholders: placeholders,
		CreatedAt:    prompt.CreatedAt,
		UpdatedAt:    prompt.UpdatedAt,
	}
}

// NewPaymentResponse converts a model into a DTO.
func NewPaymentResponse(payment models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        payment.ID,
		UserEmail: payment.UserEmail,
		CourseID:  payment.CourseID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Status:    payment.Status,
		Provider:  payment.Provider,
		Reference: payment.Reference,
		CreatedAt: payment.CreatedAt,
		UpdatedAt: payment.UpdatedAt,
	}
}

// NewCertificateTemplateResponse converts a model into a DTO.
func NewCertificateTemplateResponse(template models.CertificateTemplate) CertificateTemplateResponse {
	return CertificateTemplateResponse{
		ID:            template.ID,
		Name:          template.Name,
		CourseID:      template.CourseID,
		Title:         template.Title,
		Body:          template.Body,
		SignatureName: template.SignatureName,
		Background:    template.Background,
		IsDefault:     template.IsDefault,
		CreatedAt:     template.CreatedAt,
		UpdatedAt:     template.UpdatedAt,
	}
}
