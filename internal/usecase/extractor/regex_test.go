package extractor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/futig/oportune/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexExtractorConcreteScenario(t *testing.T) {
	raw := "Solução: Automatizar cobrança Backlog de Atividades: Mapear fluxo Investimento: 40h Ganhos: Redução de erros"

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, entity.Recommendation{
		Solution:   "Automatizar cobrança",
		Backlog:    "Mapear fluxo",
		Investment: "40h",
		Gains:      "Redução de erros",
	}, got[0])
}

func TestRegexExtractorSingleMarkdownBlock(t *testing.T) {
	raw := `**Oportunidade de Melhoria** : Automatização de Captura de Informações de Pagamentos:

**Solução** : Desenvolver uma integração com o sistema bancário
para baixa automática dos pagamentos.

**Backlog de Atividades:**
- Mapear fluxo
- Definir KPIs

**Investimento** : Horas para desenvolvimento.

**Ganhos:** Redução do risco de erros operacionais.`

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 1)

	rec := got[0]
	assert.Equal(t, "Automatização de Captura de Informações de Pagamentos", rec.Opportunity)
	assert.Equal(t, "Desenvolver uma integração com o sistema bancário para baixa automática dos pagamentos.", rec.Solution)
	assert.Equal(t, "Mapear fluxo Definir KPIs", rec.Backlog)
	assert.Equal(t, "Horas para desenvolvimento.", rec.Investment)
	assert.Equal(t, "Redução do risco de erros operacionais.", rec.Gains)
	assert.Empty(t, rec.Direction)
}

func TestRegexExtractorRepeatedBlocksInOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("Aqui estão as melhores oportunidades:\n\n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, "### %d. Oportunidade %d\n", i, i)
		fmt.Fprintf(&b, "%d. **Oportunidade de Melhoria**: O%d\n", i, i)
		fmt.Fprintf(&b, "   - **Solução**: S%d\n", i)
		fmt.Fprintf(&b, "   - **Backlog de Atividades**: B%d\n", i)
		fmt.Fprintf(&b, "   - **Investimento**: I%d\n", i)
		fmt.Fprintf(&b, "   - **Ganhos**: G%d\n\n", i)
	}

	got, err := NewRegexExtractor().Extract(context.Background(), b.String())
	require.NoError(t, err)
	require.Len(t, got, 4)

	for i, rec := range got {
		n := i + 1
		assert.Equal(t, entity.Recommendation{
			Opportunity: fmt.Sprintf("O%d", n),
			Solution:    fmt.Sprintf("S%d", n),
			Backlog:     fmt.Sprintf("B%d", n),
			Investment:  fmt.Sprintf("I%d", n),
			Gains:       fmt.Sprintf("G%d", n),
		}, rec, "record %d", n)
	}
}

func TestRegexExtractorBlocksWithoutOpportunityLabel(t *testing.T) {
	raw := "Solução: A Investimento: 1 Ganhos: X\nSolução: B Investimento: 2 Ganhos: Y"

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Solution)
	assert.Equal(t, "X", got[0].Gains)
	assert.Equal(t, "B", got[1].Solution)
	assert.Equal(t, "2", got[1].Investment)
}

func TestRegexExtractorMissingLabelIsEmpty(t *testing.T) {
	raw := `Oportunidade de Melhoria: Primeira
Solução: S1
Backlog de Atividades: B1
Investimento: I1
Ganhos: G1

Oportunidade de Melhoria: Segunda
Solução: S2
Ganhos: G2`

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Segunda", got[1].Opportunity)
	assert.Equal(t, "", got[1].Backlog)
	assert.Equal(t, "", got[1].Investment)
	assert.Equal(t, "G2", got[1].Gains)
}

func TestRegexExtractorPipeDelimited(t *testing.T) {
	raw := "Oportunidade de Melhoria: Reduzir retrabalho | Solução: Checklists | Backlog de Atividades: Criar modelo | Investimento: Baixo | Ganhos: Qualidade"

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, entity.Recommendation{
		Opportunity: "Reduzir retrabalho",
		Solution:    "Checklists",
		Backlog:     "Criar modelo",
		Investment:  "Baixo",
		Gains:       "Qualidade",
	}, got[0])
}

func TestRegexExtractorKeepsValueText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want entity.Recommendation
	}{
		{
			name: "numbers ending values on own lines",
			raw:  "Solução: Implantar fase 2.\nInvestimento: R$ 50.\nGanhos: -15% no tempo de ciclo",
			want: entity.Recommendation{Solution: "Implantar fase 2.", Investment: "R$ 50.", Gains: "-15% no tempo de ciclo"},
		},
		{
			name: "numbers ending values on one line",
			raw:  "Solução: Implantar fase 2. Investimento: R$ 50. Ganhos: -15% no tempo de ciclo",
			want: entity.Recommendation{Solution: "Implantar fase 2.", Investment: "R$ 50.", Gains: "-15% no tempo de ciclo"},
		},
		{
			name: "closing paren enumerator form",
			raw:  "Backlog de Atividades: Revisar itens 1 a 10)\nGanhos: Menos retrabalho",
			want: entity.Recommendation{Backlog: "Revisar itens 1 a 10)", Gains: "Menos retrabalho"},
		},
		{
			name: "leading minus in emphasis",
			raw:  "**Ganhos:** **-20% de custo**",
			want: entity.Recommendation{Gains: "-20% de custo"},
		},
		{
			name: "emphasis after label colon",
			raw:  "Ganhos: **-20%**",
			want: entity.Recommendation{Gains: "-20%"},
		},
		{
			name: "partial emphasis kept",
			raw:  "Ganhos: *Alta* prioridade para o time",
			want: entity.Recommendation{Gains: "*Alta* prioridade para o time"},
		},
		{
			name: "star bullets",
			raw:  "Backlog de Atividades:\n* Mapear fluxo\n* Definir KPIs\n\nInvestimento: Baixo",
			want: entity.Recommendation{Backlog: "Mapear fluxo Definir KPIs", Investment: "Baixo"},
		},
		{
			name: "dash bullets",
			raw:  "Backlog de Atividades:\n- Mapear fluxo\n- -5 dias de prazo\nInvestimento: Baixo",
			want: entity.Recommendation{Backlog: "Mapear fluxo -5 dias de prazo", Investment: "Baixo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRegexExtractor().Extract(context.Background(), tt.raw)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestRegexExtractorDropsEnumeratorBeforeNextBlock(t *testing.T) {
	raw := "1. Oportunidade de Melhoria: O1 Solução: Fase 2. Ganhos: G1 2. Oportunidade de Melhoria: O2 Ganhos: R$ 50.\n3) Oportunidade de Melhoria: O3 Solução: S3"

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, entity.Recommendation{Opportunity: "O1", Solution: "Fase 2.", Gains: "G1"}, got[0])
	assert.Equal(t, entity.Recommendation{Opportunity: "O2", Gains: "R$ 50."}, got[1])
	assert.Equal(t, entity.Recommendation{Opportunity: "O3", Solution: "S3"}, got[2])
}

func TestRegexExtractorToleratesSpellingVariants(t *testing.T) {
	raw := "OPORTUNIDADE DE MELHORIA : X\nSolucao: Y\nbacklog: Z\nINVESTIMENTO : W\nganhos : V"

	got, err := NewRegexExtractor().Extract(context.Background(), raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.Recommendation{Opportunity: "X", Solution: "Y", Backlog: "Z", Investment: "W", Gains: "V"}, got[0])
}

func TestRegexExtractorNoStructure(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "prose", raw: "Não foi possível identificar oportunidades para este caso."},
		{name: "label without colon", raw: "Os ganhos serão grandes e a solução é simples"},
		{name: "labels without values", raw: "Solução:\nGanhos:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRegexExtractor().Extract(context.Background(), tt.raw)
			assert.ErrorIs(t, err, entity.ErrNoStructureFound)
			assert.Nil(t, got)
		})
	}
}

func TestNewSelectsStrategy(t *testing.T) {
	ex, err := New(StrategyRegex, nil, DefaultModelConfig())
	require.NoError(t, err)
	assert.Equal(t, "regex", ex.Name())

	ex, err = New(StrategyModel, &scriptedCompleter{}, DefaultModelConfig())
	require.NoError(t, err)
	assert.Equal(t, "llm", ex.Name())

	_, err = New(StrategyModel, nil, DefaultModelConfig())
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	_, err = New("xml", nil, DefaultModelConfig())
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
