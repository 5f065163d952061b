package extractor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/futig/oportune/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []*entity.CompletionRequest
}

func (c *scriptedCompleter) Complete(_ context.Context, req *entity.CompletionRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests = append(c.requests, req)
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", nil
	}
	out := c.responses[0]
	c.responses = c.responses[1:]
	return out, nil
}

func (c *scriptedCompleter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func TestModelExtractorDecodesArray(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"```json\n" + `[
  {"Oportunidade de Melhoria": "Automatizar cobrança", "Solução": "RPA", "Backlog de Atividades": ["Mapear fluxo", "Contratar ferramenta"], "Investimento": 40, "Ganhos": "Menos erros"},
  {"Oportunidade de Melhoria": "Treinar equipe", "Solução": null, "Ganhos": "Produtividade"}
]` + "\n```"}}

	got, err := NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "texto livre")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, entity.Recommendation{
		Opportunity: "Automatizar cobrança",
		Solution:    "RPA",
		Backlog:     "Mapear fluxo; Contratar ferramenta",
		Investment:  "40",
		Gains:       "Menos erros",
	}, got[0])
	assert.Equal(t, "", got[1].Solution)
	assert.Equal(t, "", got[1].Backlog)

	require.Equal(t, 1, completer.calls())
	req := completer.requests[0]
	assert.Equal(t, "texto livre", req.Prompt)
	assert.InDelta(t, 0.1, req.Temperature, 1e-9)
	assert.Contains(t, req.System, "Backlog de Atividades")
}

func TestModelExtractorAcceptsSingleObjectAndProse(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`Segue o resultado: {"oportunidade_de_melhoria": "X", "solucao": "Y", "ganhos": "Z"} Espero ter ajudado.`,
	}}

	got, err := NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "raw")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, entity.Recommendation{Opportunity: "X", Solution: "Y", Gains: "Z"}, got[0])
}

func TestModelExtractorRepairsInvalidJSON(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`[{"Oportunidade de Melhoria": "X",]`,
		`[{"Oportunidade de Melhoria": "X"}]`,
	}}

	got, err := NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "raw")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "X", got[0].Opportunity)
	assert.Equal(t, 2, completer.calls())
	assert.Equal(t, `[{"Oportunidade de Melhoria": "X",]`, completer.requests[1].Prompt)
}

func TestModelExtractorParseErrorCarriesRaw(t *testing.T) {
	bad := `[{"Oportunidade de Melhoria": "X",`
	completer := &scriptedCompleter{responses: []string{bad}}
	cfg := DefaultModelConfig()
	cfg.RepairAttempts = 0

	got, err := NewModelExtractor(completer, cfg).Extract(context.Background(), "raw")
	require.Error(t, err)
	assert.Nil(t, got)

	var pErr *entity.ParseError
	require.True(t, errors.As(err, &pErr))
	assert.Equal(t, bad, pErr.Raw)
	assert.ErrorIs(t, err, entity.ErrParse)
}

func TestModelExtractorEmptyObjectsAreNoStructure(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{`[{"Oportunidade de Melhoria": "", "Solução": null}]`}}

	_, err := NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "raw")
	assert.ErrorIs(t, err, entity.ErrNoStructureFound)

	completer = &scriptedCompleter{responses: []string{`[]`}}
	_, err = NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "raw")
	assert.ErrorIs(t, err, entity.ErrNoStructureFound)
}

func TestModelExtractorCompleterFailure(t *testing.T) {
	completer := &scriptedCompleter{err: errors.New("rate limited")}

	_, err := NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "raw")
	assert.ErrorIs(t, err, entity.ErrGeneration)

	completer = &scriptedCompleter{responses: []string{"   "}}
	_, err = NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), "raw")
	assert.ErrorIs(t, err, entity.ErrGeneration)
}

func TestModelExtractorSkipsBlankInput(t *testing.T) {
	completer := &scriptedCompleter{}

	_, err := NewModelExtractor(completer, DefaultModelConfig()).Extract(context.Background(), " \n ")
	assert.ErrorIs(t, err, entity.ErrNoStructureFound)
	assert.Zero(t, completer.calls())
}
