package analyst

import (
	"context"
	"fmt"
	"strings"

	"coinpulse/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Service turns a day's ranked scores into a short natural-language
// commentary for the report channel. It is an optional garnish: every
// failure mode degrades to "no commentary", never to a failed report.
type Service struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewService(tracer trace.Tracer, llm LLMClient, model string) *Service {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Service{tracer: tracer, llm: llm, model: model}
}

// DailyCommentary asks the model for a two-to-three sentence read of
// the leaderboard, grounded in the attribution data.
func (s *Service) DailyCommentary(ctx context.Context, entries []domain.LeaderboardEntry, results []domain.ScoreResult) (string, error) {
	ctx, span := s.tracer.Start(ctx, "analyst.daily-commentary")
	defer span.End()
	span.SetAttributes(attribute.Int("leaderboard.size", len(entries)))

	if s.llm == nil || len(entries) == 0 {
		return "", nil
	}

	completion, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(FormatScoreContext(entries, results)),
		},
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("commentary unavailable: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	if len(reply) > maxCommentaryLen {
		reply = reply[:maxCommentaryLen]
	}
	span.SetAttributes(attribute.Int("llm.reply_length", len(reply)))
	return reply, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
