package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/models"
	"github.com/noah-isme/gema-content-admin/internal/observability"
	"github.com/noah-isme/gema-content-admin/internal/repository"
	"github.com/noah-isme/gema-content-admin/pkg/ai"
)

const resourcePrompt = "prompt"

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// PromptService manages reusable prompt templates and runs them against the configured model.
type PromptService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.PromptResponse], error)
	Get(ctx context.Context, id string) (dto.PromptResponse, error)
	Create(ctx context.Context, payload dto.PromptCreateRequest) (dto.PromptResponse, error)
	Update(ctx context.Context, id string, payload dto.PromptUpdateRequest) (dto.PromptResponse, error)
	Delete(ctx context.Context, id string) error
	Run(ctx context.Context, id string, payload dto.PromptRunRequest) (dto.PromptRunResponse, error)
}

type promptService struct {
	store     *repository.Store
	validator *validator.Validate
	completer ai.Completer
	events    EventBus
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewPromptService constructs the prompt service. A nil completer disables Run.
func NewPromptService(store *repository.Store, validate *validator.Validate, completer ai.Completer, events EventBus, logger zerolog.Logger) PromptService {
	return &promptService{
		store:     store,
		validator: validate,
		completer: completer,
		events:    events,
		logger:    logger.With().Str("component", "prompt_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/gema-content-admin/internal/service/prompt"),
	}
}

func (s *promptService) List(ctx context.Context, query dto.ListQuery) (dto.ListResult[dto.PromptResponse], error) {
	query = normalizeListQuery(query)
	filter, err := contentFilter(query, "id")
	if err != nil {
		return dto.ListResult[dto.PromptResponse]{}, err
	}
	prompts, total, err := s.store.Prompts.List(ctx, filter)
	if err != nil {
		return dto.ListResult[dto.PromptResponse]{}, err
	}
	return listResult(prompts, total, query, newPromptResponse), nil
}

func (s *promptService) Get(ctx context.Context, id string) (dto.PromptResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.PromptResponse{}, err
	}
	prompt, err := s.store.Prompts.GetByID(ctx, id)
	if err != nil {
		return dto.PromptResponse{}, notFound(err, ErrPromptNotFound)
	}
	return newPromptResponse(prompt), nil
}

func (s *promptService) Create(ctx context.Context, payload dto.PromptCreateRequest) (dto.PromptResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PromptResponse{}, err
	}

	prompt := models.Prompt{
		Title:    strings.TrimSpace(payload.Title),
		Content:  strings.TrimSpace(payload.Content),
		Category: strings.TrimSpace(payload.Category),
		Tool:     strings.TrimSpace(payload.Tool),
		Tags:     trimAll(payload.Tags),
		Status:   payload.Status,
	}
	if err := s.store.Prompts.Create(ctx, &prompt); err != nil {
		return dto.PromptResponse{}, err
	}

	publishEvent(ctx, s.events, EventCreated, resourcePrompt, prompt.ID, fmt.Sprintf("Prompt %s created", prompt.Title))
	return newPromptResponse(prompt), nil
}

func (s *promptService) Update(ctx context.Context, id string, payload dto.PromptUpdateRequest) (dto.PromptResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.PromptResponse{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.PromptResponse{}, err
	}

	prompt, err := s.store.Prompts.GetByID(ctx, id)
	if err != nil {
		return dto.PromptResponse{}, notFound(err, ErrPromptNotFound)
	}

	prompt.Title = trimmedOr(payload.Title, prompt.Title)
	prompt.Content = trimmedOr(payload.Content, prompt.Content)
	prompt.Category = trimmedOr(payload.Category, prompt.Category)
	prompt.Tool = trimmedOr(payload.Tool, prompt.Tool)
	prompt.Status = trimmedOr(payload.Status, prompt.Status)
	if payload.Tags != nil {
		prompt.Tags = trimAll(payload.Tags)
	}
	if err := s.store.Prompts.Update(ctx, &prompt); err != nil {
		return dto.PromptResponse{}, err
	}

	publishEvent(ctx, s.events, EventUpdated, resourcePrompt, prompt.ID, fmt.Sprintf("Prompt %s updated", prompt.Title))
	return newPromptResponse(prompt), nil
}

func (s *promptService) Delete(ctx context.Context, id string) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.store.Prompts.Delete(ctx, id); err != nil {
		return notFound(err, ErrPromptNotFound)
	}
	publishEvent(ctx, s.events, EventDeleted, resourcePrompt, id, "Prompt deleted")
	return nil
}

func (s *promptService) Run(ctx context.Context, id string, payload dto.PromptRunRequest) (dto.PromptRunResponse, error) {
	if err := requireID("id", id); err != nil {
		return dto.PromptRunResponse{}, err
	}
	prompt, err := s.store.Prompts.GetByID(ctx, id)
	if err != nil {
		return dto.PromptRunResponse{}, notFound(err, ErrPromptNotFound)
	}

	rendered, err := RenderPrompt(prompt.Content, payload.Variables)
	if err != nil {
		observability.PromptRuns().WithLabelValues("invalid").Inc()
		return dto.PromptRunResponse{}, err
	}
	if s.completer == nil {
		observability.PromptRuns().WithLabelValues("unavailable").Inc()
		return dto.PromptRunResponse{}, ErrIntegrationUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "prompt.run", trace.WithAttributes(attribute.String("prompt.id", prompt.ID)))
	defer span.End()

	completion, err := s.completer.Complete(ctx, ai.CompletionRequest{Prompt: rendered})
	if err != nil {
		observability.PromptRuns().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Str("prompt_id", prompt.ID).Msg("prompt run failed")
		publishEvent(ctx, s.events, EventFailed, resourcePrompt, prompt.ID, fmt.Sprintf("Prompt %s run failed", prompt.Title))
		return dto.PromptRunResponse{}, fmt.Errorf("run prompt: %w", err)
	}

	observability.PromptRuns().WithLabelValues("succeeded").Inc()
	return dto.PromptRunResponse{
		PromptID: prompt.ID,
		Rendered: rendered,
		Output:   completion.Output,
		Model:    completion.Model,
	}, nil
}

// Placeholders lists the distinct {{name}} placeholders of a template, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		names = append(names, match[1])
	}
	sort.Strings(names)
	return names
}

// RenderPrompt substitutes every placeholder. A placeholder without a non-blank value is a validation error.
func RenderPrompt(template string, variables map[string]string) (string, error) {
	var missing []string
	for _, name := range Placeholders(template) {
		if strings.TrimSpace(variables[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", newValidationError("variables", "missing values for %s", strings.Join(missing, ", "))
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		return variables[name]
	}), nil
}

func newPromptResponse(prompt models.Prompt) dto.PromptResponse {
	return dto.NewPromptResponse(prompt, Placeholders(prompt.Content))
}
