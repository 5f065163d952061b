package extractor

import (
	"context"
	"fmt"

	"github.com/futig/oportune/internal/entity"
)

type Strategy string

const (
	StrategyRegex Strategy = "regex"
	StrategyModel Strategy = "llm"
)

func (s Strategy) IsValid() bool {
	return s == StrategyRegex || s == StrategyModel
}

// Extractor turns a raw model answer into structured recommendations.
// Returned records carry all five content fields and no direction.
type Extractor interface {
	Extract(ctx context.Context, raw string) ([]entity.Recommendation, error)
	Name() string
}

// New builds the extractor selected by strategy.
func New(strategy Strategy, completer Completer, cfg ModelConfig) (Extractor, error) {
	switch strategy {
	case StrategyRegex:
		return NewRegexExtractor(), nil
	case StrategyModel:
		if completer == nil {
			return nil, fmt.Errorf("%w: strategy %q needs a completer", entity.ErrInvalidParameter, strategy)
		}
		return NewModelExtractor(completer, cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown extractor strategy %q", entity.ErrInvalidParameter, strategy)
	}
}
