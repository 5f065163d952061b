package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	pkghttp "github.com/futig/oportune/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LangchainConnector completes prompts through the langchaingo OpenAI model.
type LangchainConnector struct {
	model        llms.Model
	modelName    string
	retryOptions []retry.Option
}

func NewLangchainConnector(cfg config.LLMConfig, logger *zap.Logger) (*LangchainConnector, error) {
	client := pkghttp.NewClient(
		pkghttp.WithRequestTimeout(cfg.RequestTimeout),
		pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
		pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkghttp.WithRequestLogging(),
	)

	model, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(apiBaseURL(cfg)),
		openai.WithHTTPClient(client),
	)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai model: %w", err)
	}

	logger.Info("Langchain LLM provider initialized", zap.String("model", cfg.Model))

	return &LangchainConnector{
		model:        model,
		modelName:    cfg.Model,
		retryOptions: cfg.Retry.ToRetryOptions(),
	}, nil
}

// apiBaseURL turns SERVICE_URL + /v1/chat/completions into the /v1 base expected by the SDK.
func apiBaseURL(cfg config.LLMConfig) string {
	base := strings.TrimSuffix(cfg.Url, "/")
	path := strings.TrimSuffix(cfg.CompletionsEndpoint, "/chat/completions")
	return base + path
}

func (c *LangchainConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "requesting completion via langchain",
		zap.String("model", c.modelName),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	messages := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))

	callOpts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}

	var resp *llms.ContentResponse
	generate := func() error {
		var err error
		resp, err = c.model.GenerateContent(ctx, messages, callOpts...)
		return err
	}

	var err error
	if len(c.retryOptions) == 0 {
		err = generate()
	} else {
		err = retry.Do(generate, append([]retry.Option{
			retry.Context(ctx),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}),
		}, c.retryOptions...)...)
	}
	if err != nil {
		return "", fmt.Errorf("langchain completion failed: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("invalid completion response: no choices")
	}

	content := resp.Choices[0].Content
	ctxzap.Info(ctx, "completion received",
		zap.Int("answer_length", len(content)),
		zap.String("stop_reason", resp.Choices[0].StopReason),
	)
	return content, nil
}
