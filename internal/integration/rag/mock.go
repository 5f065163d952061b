package rag

import (
	"context"

	"github.com/futig/oportune/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

var mockPassages = []string{
	"Padronizar o processo de compras com procedimento operacional e checklist de aprovação.",
	"Implantar indicadores de desempenho (lead time, retrabalho) com revisão semanal.",
	"Automatizar a conciliação de notas fiscais com integração ao ERP.",
	"Treinar a equipe em ferramentas Lean para identificar desperdícios.",
	"Revisar contratos de fornecedores críticos com acordos de nível de serviço.",
}

// MockConnector returns fixed consulting passages.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Retrieve(ctx context.Context, req *entity.RetrieveRequest) ([]entity.RetrievedPassage, error) {
	ctxzap.Info(ctx, "[MOCK] retrieving passages", zap.Int("top_k", req.TopK))

	n := min(req.TopK, len(mockPassages))
	passages := make([]entity.RetrievedPassage, 0, n)
	for i := 0; i < n; i++ {
		s := 0.9 - float64(i)*0.05
		passages = append(passages, entity.RetrievedPassage{Text: mockPassages[i], Score: &s})
	}
	return passages, nil
}
