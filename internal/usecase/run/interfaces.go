package run

import (
	"context"

	"github.com/futig/oportune/internal/entity"
)

type Retriever interface {
	Retrieve(ctx context.Context, req *entity.RetrieveRequest) ([]entity.RetrievedPassage, error)
}

type Generator interface {
	Generate(ctx context.Context, c entity.CaseDescription, passages []entity.RetrievedPassage) (string, error)
}

type Extractor interface {
	Extract(ctx context.Context, raw string) ([]entity.Recommendation, error)
	Name() string
}
