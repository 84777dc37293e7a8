package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/pkg/ai"
)

type completerStub struct {
	request ai.CompletionRequest
	err     error
}

func (c *completerStub) Complete(ctx context.Context, req ai.CompletionRequest) (ai.Completion, error) {
	c.request = req
	if c.err != nil {
		return ai.Completion{}, c.err
	}
	return ai.Completion{Model: "stub-model", Output: "done"}, nil
}

func TestRenderPrompt(t *testing.T) {
	template := "Write a {{ tone }} intro about {{topic}} for {{topic}} learners."
	require.Equal(t, []string{"tone", "topic"}, Placeholders(template))

	rendered, err := RenderPrompt(template, map[string]string{"tone": "friendly", "topic": "Go"})
	require.NoError(t, err)
	require.Equal(t, "Write a friendly intro about Go for Go learners.", rendered)

	_, err = RenderPrompt(template, map[string]string{"tone": "friendly", "topic": "  "})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Message, "topic")

	rendered, err = RenderPrompt("no placeholders", nil)
	require.NoError(t, err)
	require.Equal(t, "no placeholders", rendered)
}

func TestPromptServiceRun(t *testing.T) {
	store := newTestStore(t)
	completer := &completerStub{}
	bus := &recordingBus{}
	svc := NewPromptService(store, testValidator(), completer, bus, testLogger())
	ctx := context.Background()

	prompt, err := svc.Create(ctx, dto.PromptCreateRequest{
		Title:   "Summary",
		Content: "Summarise {{text}}",
		Tool:    "ChatGPT",
		Tags:    []string{"Writing", " summary "},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"text"}, prompt.Placeholders)
	require.Equal(t, []string{"writing", "summary"}, mustGetPrompt(t, svc, prompt.ID).Tags)

	result, err := svc.Run(ctx, prompt.ID, dto.PromptRunRequest{Variables: map[string]string{"text": "this"}})
	require.NoError(t, err)
	require.Equal(t, "Summarise this", completer.request.Prompt)
	require.Equal(t, "done", result.Output)
	require.Equal(t, "stub-model", result.Model)

	_, err = svc.Run(ctx, prompt.ID, dto.PromptRunRequest{})
	require.True(t, IsValidationError(err))

	completer.err = errors.New("rate limited")
	_, err = svc.Run(ctx, prompt.ID, dto.PromptRunRequest{Variables: map[string]string{"text": "this"}})
	require.Error(t, err)
	require.False(t, IsValidationError(err))
	require.Equal(t, []string{EventCreated, EventFailed}, bus.types(resourcePrompt))

	disabled := NewPromptService(store, testValidator(), nil, nil, testLogger())
	_, err = disabled.Run(ctx, prompt.ID, dto.PromptRunRequest{Variables: map[string]string{"text": "this"}})
	require.ErrorIs(t, err, ErrIntegrationUnavailable)

	require.NoError(t, svc.Delete(ctx, prompt.ID))
	_, err = svc.Run(ctx, prompt.ID, dto.PromptRunRequest{})
	require.ErrorIs(t, err, ErrPromptNotFound)
}

func mustGetPrompt(t *testing.T, svc PromptService, id string) dto.PromptResponse {
	t.Helper()
	prompt, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	return prompt
}
