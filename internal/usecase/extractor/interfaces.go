package extractor

import (
	"context"

	"github.com/futig/oportune/internal/entity"
)

type Completer interface {
	Complete(ctx context.Context, req *entity.CompletionRequest) (string, error)
}
