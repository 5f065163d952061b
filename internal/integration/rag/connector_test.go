package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const weaviateResponse = `{
  "data": {
    "Get": {
      "DocsOportunidades": [
        {"oportunidade_melhoria": "Padronizar compras", "_additional": {"certainty": 0.91}},
        {"oportunidade_melhoria": "   ", "_additional": {"certainty": 0.90}},
        {"oportunidade_melhoria": "Automatizar conciliação", "_additional": {"distance": 0.25}},
        {"oportunidade_melhoria": "Treinar equipe"}
      ]
    }
  }
}`

func testRAGConfig(url string, ttl time.Duration) config.RAGConfig {
	return config.RAGConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: url},
		GraphQLEndpoint:  "/v1/graphql",
		ClassName:        "DocsOportunidades",
		TextProperty:     "oportunidade_melhoria",
		VectorizerKey:    "sk-vector",
		CacheTTL:         ttl,
	}
}

func TestRetrieveParsesPassages(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/graphql", r.URL.Path)
		assert.Equal(t, "sk-vector", r.Header.Get("X-OpenAI-Api-Key"))

		var req entity.GraphQLRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		query = req.Query
		_, _ = w.Write([]byte(weaviateResponse))
	}))
	defer srv.Close()

	c := NewConnector(testRAGConfig(srv.URL, 0), zap.NewNop())
	passages, err := c.Retrieve(context.Background(), &entity.RetrieveRequest{Query: `ramo "Varejo"`, TopK: 4})
	require.NoError(t, err)

	assert.Contains(t, query, `DocsOportunidades(nearText:{concepts:["ramo \"Varejo\""]},limit:4)`)
	assert.Contains(t, query, "oportunidade_melhoria _additional")

	require.Len(t, passages, 3)
	assert.Equal(t, "Padronizar compras", passages[0].Text)
	require.NotNil(t, passages[0].Score)
	assert.InDelta(t, 0.91, *passages[0].Score, 1e-9)

	require.NotNil(t, passages[1].Score)
	assert.InDelta(t, 0.75, *passages[1].Score, 1e-9)

	assert.Nil(t, passages[2].Score)
}

func TestRetrieveGraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [{"message": "class not found"}]}`))
	}))
	defer srv.Close()

	c := NewConnector(testRAGConfig(srv.URL, 0), zap.NewNop())
	_, err := c.Retrieve(context.Background(), &entity.RetrieveRequest{Query: "q", TopK: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrExternalService)
	assert.ErrorContains(t, err, "class not found")
}

func TestRetrieveHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewConnector(testRAGConfig(srv.URL, 0), zap.NewNop())
	_, err := c.Retrieve(context.Background(), &entity.RetrieveRequest{Query: "q", TopK: 3})
	assert.ErrorIs(t, err, entity.ErrExternalService)
}

func TestRetrieveUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(weaviateResponse))
	}))
	defer srv.Close()

	c := NewConnector(testRAGConfig(srv.URL, time.Minute), zap.NewNop())
	ctx := context.Background()

	first, err := c.Retrieve(ctx, &entity.RetrieveRequest{Query: "q", TopK: 4})
	require.NoError(t, err)
	first[0].Text = "mutated"

	second, err := c.Retrieve(ctx, &entity.RetrieveRequest{Query: "q", TopK: 4})
	require.NoError(t, err)
	assert.Equal(t, "Padronizar compras", second[0].Text)
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Retrieve(ctx, &entity.RetrieveRequest{Query: "q", TopK: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMockConnectorRespectsTopK(t *testing.T) {
	m := NewMockConnector(zap.NewNop())
	passages, err := m.Retrieve(context.Background(), &entity.RetrieveRequest{Query: "q", TopK: 2})
	require.NoError(t, err)
	assert.Len(t, passages, 2)

	passages, err = m.Retrieve(context.Background(), &entity.RetrieveRequest{Query: "q", TopK: 50})
	require.NoError(t, err)
	assert.Len(t, passages, len(mockPassages))
}
