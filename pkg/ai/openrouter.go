package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/chalkboard-go-api/pkg/rubric"
)

var (
	gradingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chalkboard",
		Subsystem: "ai",
		Name:      "grading_duration_seconds",
		Help:      "Duration of vision grading requests",
	}, []string{"model"})

	gradingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chalkboard",
		Subsystem: "ai",
		Name:      "grading_failures_total",
		Help:      "Number of vision grading failures",
	}, []string{"model"})

	gradingFallbackParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chalkboard",
		Subsystem: "ai",
		Name:      "grading_fallback_parses_total",
		Help:      "Responses that were not pure JSON and needed substring extraction",
	}, []string{"model"})
)

const (
	defaultBaseURL     = "https://openrouter.ai/api/v1"
	defaultVisionModel = "meta-llama/llama-3.2-90b-vision-instruct"
)

const graderSystemPrompt = "You are a strict grader returning only JSON that matches the schema. " +
	"No prose, no markdown, only JSON."

// OpenRouterConfig defines configuration options for the OpenRouter vision grader.
type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	VisionModel string
	Referer     string
	Title       string
	HTTPClient  *http.Client
	Logger      zerolog.Logger
}

// OpenRouterGrader implements Grader against the OpenRouter responses API.
// The request leans on a schema-constrained response format, and the reply is
// re-validated against the same schema: the model may ignore its own contract,
// and an unvalidated score must never reach persistence.
type OpenRouterGrader struct {
	cfg    OpenRouterConfig
	client *http.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenRouterGrader builds a grader using the provided configuration.
func NewOpenRouterGrader(cfg OpenRouterConfig) (*OpenRouterGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.VisionModel == "" {
		cfg.VisionModel = defaultVisionModel
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenRouterGrader{
		cfg:    cfg,
		client: client,
		tracer: otel.Tracer("github.com/noah-isme/chalkboard-go-api/pkg/ai/openrouter"),
		logger: logger.With().Str("component", "openrouter_grader").Logger(),
	}, nil
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type inputMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict"`
}

type responseFormat struct {
	Type       string           `json:"type"`
	JSONSchema jsonSchemaFormat `json:"json_schema"`
}

// gradeRequest is the responses-format request body. Temperature is pinned to
// zero so repeated grading of the same submission stays reproducible.
type gradeRequest struct {
	Model          string         `json:"model"`
	Input          []inputMessage `json:"input"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type apiResponse struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Text    string `json:"text"`
			Content string `json:"content"`
		} `json:"content"`
	} `json:"output"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Grade sends a single multimodal request and parses the verdict.
func (g *OpenRouterGrader) Grade(parent context.Context, input GradeInput) (GradeResult, error) {
	ctx, span := g.tracer.Start(parent, "openrouter.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.VisionModel),
	))
	defer span.End()

	start := time.Now()
	result, err := g.grade(ctx, input)
	gradingDuration.WithLabelValues(g.cfg.VisionModel).Observe(time.Since(start).Seconds())
	if err != nil {
		gradingFailures.WithLabelValues(g.cfg.VisionModel).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradeResult{}, err
	}

	span.SetAttributes(attribute.Float64("grade.score", result.Score))

	return result, nil
}

func (g *OpenRouterGrader) grade(ctx context.Context, input GradeInput) (GradeResult, error) {
	userContent := []contentPart{
		{Type: "text", Text: buildGradingPrompt(input)},
		{Type: "image_url", ImageURL: input.ImageURL},
	}
	if input.WorkText != "" {
		userContent = append(userContent, contentPart{
			Type: "text",
			Text: "Student optional notes: " + input.WorkText,
		})
	}

	body := gradeRequest{
		Model: g.cfg.VisionModel,
		Input: []inputMessage{
			{Role: "system", Content: []contentPart{{Type: "text", Text: graderSystemPrompt}}},
			{Role: "user", Content: userContent},
		},
		ResponseFormat: responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchemaFormat{
				Name:   "grade_schema",
				Schema: rubric.GradeSchemaJSON(),
				Strict: true,
			},
		},
		Temperature: 0,
	}

	text, err := g.send(ctx, body)
	if err != nil {
		return GradeResult{}, err
	}

	payload, fellBack, err := jsonPayload(text)
	if err != nil {
		return GradeResult{}, err
	}
	if fellBack {
		gradingFallbackParses.WithLabelValues(g.cfg.VisionModel).Inc()
		g.logger.Warn().Msg("model response was not pure JSON, extracted embedded object")
	}

	if err := rubric.ValidateGradeJSON([]byte(payload)); err != nil {
		return GradeResult{}, err
	}

	var result GradeResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return GradeResult{}, fmt.Errorf("decode grade json: %w", err)
	}

	return result, nil
}

func (g *OpenRouterGrader) send(ctx context.Context, body gradeRequest) (string, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode grading request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(g.cfg.BaseURL, "/")+"/responses", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build grading request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	if g.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", g.cfg.Referer)
	}
	if g.cfg.Title != "" {
		req.Header.Set("X-Title", g.cfg.Title)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read openrouter response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter error: %d %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode openrouter response: %w", err)
	}

	text := extractResponseText(parsed)
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// extractResponseText walks the response shapes OpenRouter providers emit:
// a consolidated output_text, a structured output list, or a legacy
// chat-completions choices array.
func extractResponseText(resp apiResponse) string {
	if trimmed := strings.TrimSpace(resp.OutputText); trimmed != "" {
		return trimmed
	}

	if len(resp.Output) > 0 {
		var fragments []string
		for _, part := range resp.Output[0].Content {
			if part.Text != "" {
				fragments = append(fragments, part.Text)
			} else if part.Content != "" {
				fragments = append(fragments, part.Content)
			}
		}
		if len(fragments) > 0 {
			return strings.TrimSpace(strings.Join(fragments, "\n"))
		}
	}

	if len(resp.Choices) > 0 {
		return strings.TrimSpace(resp.Choices[0].Message.Content)
	}

	return ""
}

func buildGradingPrompt(input GradeInput) string {
	builder := strings.Builder{}
	builder.WriteString("Rubric JSON (strict):\n")
	builder.Write(input.Rubric)
	builder.WriteString("\n\nProblem Prompt:\n")
	builder.WriteString(input.PromptText)
	builder.WriteString("\n\nInstructions: Look at the image and find the student's final answer. ")
	builder.WriteString("Accept answers that are boxed, circled, underlined, or prefixed with \"Final:\" or \"Ans:\"; ")
	builder.WriteString("when several candidates appear, prefer the most clearly marked one. ")
	builder.WriteString("Treat trailing punctuation as insignificant. ")
	builder.WriteString("Apply the numeric tolerance from the rubric when comparing numbers. ")
	builder.WriteString("Grant partial credit only as the rubric's partial credit rules allow. ")
	builder.WriteString("Return only the Grade JSON.")

	return builder.String()
}
