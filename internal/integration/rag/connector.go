package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/integration/common"
	pkghttp "github.com/futig/oportune/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const serviceName = "weaviate"

// Connector retrieves reference passages from Weaviate with a nearText query.
type Connector struct {
	config    config.RAGConfig
	connector *pkghttp.Connector
	cache     *cache.Cache
	logger    *zap.Logger
}

func NewConnector(
	cfg config.RAGConfig,
	logger *zap.Logger,
) *Connector {
	var c *cache.Cache
	if cfg.CacheTTL > 0 {
		c = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry, logger,
			pkghttp.WithStaticHeader("X-OpenAI-Api-Key", cfg.VectorizerKey),
		),
		config: cfg,
		cache:  c,
		logger: logger,
	}
}

// Retrieve returns up to TopK passages ordered by the store's relevance.
func (c *Connector) Retrieve(ctx context.Context, req *entity.RetrieveRequest) ([]entity.RetrievedPassage, error) {
	key := cacheKey(req)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			passages := cached.([]entity.RetrievedPassage)
			ctxzap.Debug(ctx, "passages served from cache", zap.Int("passage_count", len(passages)))
			return clonePassages(passages), nil
		}
	}

	ctxzap.Debug(ctx, "querying vector store",
		zap.String("class", c.config.ClassName),
		zap.Int("top_k", req.TopK),
	)

	var resp entity.GraphQLResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.GraphQLEndpoint,
		&entity.GraphQLRequest{Query: c.buildQuery(req)}, &resp)
	if err != nil {
		return nil, &entity.ExternalServiceError{Service: serviceName, Err: err}
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &entity.ExternalServiceError{
			Service: serviceName,
			Err:     fmt.Errorf("graphql: %s", strings.Join(msgs, "; ")),
		}
	}

	passages := c.parsePassages(resp)
	if c.cache != nil {
		c.cache.SetDefault(key, clonePassages(passages))
	}

	ctxzap.Debug(ctx, "passages retrieved", zap.Int("passage_count", len(passages)))
	return passages, nil
}

func (c *Connector) buildQuery(req *entity.RetrieveRequest) string {
	concept, _ := json.Marshal(req.Query)
	return fmt.Sprintf(
		`{Get{%s(nearText:{concepts:[%s]},limit:%d){%s _additional{certainty distance}}}}`,
		c.config.ClassName, concept, req.TopK, c.config.TextProperty,
	)
}

func (c *Connector) parsePassages(resp entity.GraphQLResponse) []entity.RetrievedPassage {
	objects := resp.Data["Get"][c.config.ClassName]
	passages := make([]entity.RetrievedPassage, 0, len(objects))
	for _, obj := range objects {
		text, _ := obj[c.config.TextProperty].(string)
		if strings.TrimSpace(text) == "" {
			continue
		}
		passages = append(passages, entity.RetrievedPassage{
			Text:  text,
			Score: score(obj["_additional"]),
		})
	}
	return passages
}

// score prefers certainty and falls back to 1 - distance.
func score(additional any) *float64 {
	fields, ok := additional.(map[string]any)
	if !ok {
		return nil
	}
	if v, ok := toFloat(fields["certainty"]); ok {
		return &v
	}
	if v, ok := toFloat(fields["distance"]); ok {
		s := 1 - v
		return &s
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func cacheKey(req *entity.RetrieveRequest) string {
	return strconv.Itoa(req.TopK) + "|" + req.Query
}

func clonePassages(in []entity.RetrievedPassage) []entity.RetrievedPassage {
	out := make([]entity.RetrievedPassage, len(in))
	copy(out, in)
	return out
}
