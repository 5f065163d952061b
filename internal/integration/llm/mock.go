package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns canned answers in the labelled format, or JSON when
// asked to restate an answer.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Complete(ctx context.Context, req *entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting completion",
		zap.Int("prompt_length", len(req.Prompt)),
		zap.Float64("temperature", req.Temperature),
	)

	if strings.Contains(req.System, "JSON") {
		return `[
  {"Oportunidade de Melhoria": "Padronizar o processo", "Solução": "Criar procedimento operacional padrão", "Backlog de Atividades": ["Mapear o fluxo atual", "Definir indicadores"], "Investimento": "40 horas de consultoria", "Ganhos": "Redução de retrabalho"}
]`, nil
	}

	direction := "geral"
	if i := strings.Index(req.Prompt, "direcionadores: "); i >= 0 {
		rest := req.Prompt[i+len("direcionadores: "):]
		if j := strings.Index(rest, ","); j >= 0 {
			direction = rest[:j]
		}
	}

	var b strings.Builder
	for i := 1; i <= 2; i++ {
		fmt.Fprintf(&b, "**Oportunidade de Melhoria**: Oportunidade %d para %s\n", i, direction)
		fmt.Fprintf(&b, "**Solução**: Solução sugerida %d\n", i)
		b.WriteString("**Backlog de Atividades**:\n- Mapear o fluxo atual\n- Definir indicadores\n")
		fmt.Fprintf(&b, "**Investimento**: %d0 horas\n", i*4)
		b.WriteString("**Ganhos**: Redução de custos e retrabalho\n\n")
	}
	return b.String(), nil
}
