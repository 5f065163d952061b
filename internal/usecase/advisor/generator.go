package advisor

import (
	"context"
	"errors"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Completer interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (string, error)
}

type Config struct {
	Temperature      float64
	MaxTokens        int
	MaxOpportunities int
}

func DefaultConfig() Config {
	return Config{
		Temperature:      0.2,
		MaxTokens:        2048,
		MaxOpportunities: 10,
	}
}

// Generator asks a completion service for improvement recommendations.
type Generator struct {
	completer Completer
	cfg       Config
}

func NewGenerator(completer Completer, cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.MaxOpportunities <= 0 {
		cfg.MaxOpportunities = def.MaxOpportunities
	}
	return &Generator{completer: completer, cfg: cfg}
}

// Generate returns the raw answer for a validated case. Passages may be empty.
func (g *Generator) Generate(ctx context.Context, c entity.CaseDescription, passages []entity.RetrievedPassage) (string, error) {
	req := &entity.CompletionRequest{
		System:      personaPrompt,
		Prompt:      BuildPrompt(c, passages, g.cfg.MaxOpportunities),
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	}

	ctxzap.Debug(ctx, "generating recommendations",
		zap.String("direction", c.Direction),
		zap.Int("passages", len(passages)),
	)

	answer, err := g.completer.Complete(ctx, req)
	if err != nil {
		return "", &entity.GenerationError{Direction: c.Direction, Err: err}
	}
	if strings.TrimSpace(answer) == "" {
		return "", &entity.GenerationError{Direction: c.Direction, Err: errors.New("empty answer")}
	}

	ctxzap.Debug(ctx, "recommendations generated", zap.Int("answer_length", len(answer)))
	return answer, nil
}
