package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

// RubricGenConfig defines configuration options for the rubric generator.
type RubricGenConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  zerolog.Logger
}

// OpenRouterRubricGenerator drafts rubrics through OpenRouter's
// chat-completions-compatible endpoint.
type OpenRouterRubricGenerator struct {
	client *openai.Client
	cfg    RubricGenConfig
	logger zerolog.Logger
}

// NewOpenRouterRubricGenerator builds a generator using the provided configuration.
func NewOpenRouterRubricGenerator(cfg RubricGenConfig) (*OpenRouterRubricGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = defaultVisionModel
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &OpenRouterRubricGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		logger: logger.With().Str("component", "rubric_generator").Logger(),
	}, nil
}

// Generate requests a schema-constrained rubric draft and validates it before
// returning. No retry; the caller surfaces failures.
func (g *OpenRouterRubricGenerator) Generate(ctx context.Context, promptText string, desired rubric.Type) (json.RawMessage, error) {
	request := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write compact grading rubrics as strict JSON and nothing else.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Produce a rubric JSON for a vision-graded whiteboard problem. "+
					"Follow the provided JSON schema exactly. Constraint: be compact. "+
					"Desired type: %s. Problem Prompt: %s", desired, promptText),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "rubric_schema",
				Schema: rubric.SchemaJSON(),
				Strict: true,
			},
		},
		Temperature: 0,
	}

	payload, err := g.complete(ctx, request)
	if err != nil {
		return nil, err
	}

	if err := rubric.ValidateJSON([]byte(payload)); err != nil {
		return nil, err
	}

	return json.RawMessage(payload), nil
}

// GenerateWithExplanation additionally asks for a short natural-language
// description of the grading approach. The response schema is relaxed: the
// rubric field is loosely typed and intended for teacher display only.
func (g *OpenRouterRubricGenerator) GenerateWithExplanation(ctx context.Context, promptText string, desired rubric.Type) (RubricDraft, error) {
	request := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You write grading rubrics as strict JSON and nothing else. " +
					"Respond with a JSON object of the form {\"rubric\": <rubric object>, \"explanation\": <string>}.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Draft a rubric for a vision-graded whiteboard problem and explain in two or "+
					"three sentences how it will be applied. Desired type: %s. Problem Prompt: %s", desired, promptText),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	}

	payload, err := g.complete(ctx, request)
	if err != nil {
		return RubricDraft{}, err
	}

	var draft RubricDraft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return RubricDraft{}, fmt.Errorf("decode rubric draft: %w", err)
	}

	if len(draft.Rubric) == 0 {
		return RubricDraft{}, fmt.Errorf("%w: draft carried no rubric field", ErrNoJSONPayload)
	}

	return draft, nil
}

func (g *OpenRouterRubricGenerator) complete(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("generate rubric: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	payload, fellBack, err := jsonPayload(content)
	if err != nil {
		return "", err
	}
	if fellBack {
		g.logger.Warn().Msg("rubric response was not pure JSON, extracted embedded object")
	}

	return payload, nil
}
