package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/integration/common"
	pkghttp "github.com/futig/oportune/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to an OpenAI compatible chat completions endpoint.
type Connector struct {
	config    config.LLMConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Complete sends a single system + user turn and returns the first choice.
func (c *Connector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "requesting completion from LLM service",
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	temperature := req.Temperature
	body := &entity.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    toMessages(req),
		Temperature: &temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp entity.ChatCompletionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.CompletionsEndpoint, body, &resp)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("invalid completion response: no choices")
	}

	content := resp.Choices[0].Message.Content
	fields := []zap.Field{
		zap.Int("answer_length", len(content)),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	}
	if resp.Usage != nil {
		fields = append(fields,
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		)
	}
	ctxzap.Info(ctx, "completion received", fields...)

	return content, nil
}

func toMessages(req *entity.CompletionRequest) []entity.ChatMessage {
	messages := make([]entity.ChatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, entity.ChatMessage{Role: "system", Content: req.System})
	}
	return append(messages, entity.ChatMessage{Role: "user", Content: req.Prompt})
}
