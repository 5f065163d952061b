package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	defaultModelTemperature = 0.1
	defaultModelMaxTokens   = 2048
)

const structureSystemPrompt = `Você é um engenheiro de dados sênior. Converta o texto recebido em uma lista JSON de objetos.
Cada objeto representa uma oportunidade e tem exatamente as chaves:
"Oportunidade de Melhoria", "Solução", "Backlog de Atividades", "Investimento", "Ganhos".
Os valores são textos. Atividades do backlog ficam na mesma string, separadas por "; ".
Use "" quando a informação não existir. Responda somente com o JSON, sem comentários.`

const repairSystemPrompt = `O texto a seguir deveria ser uma lista JSON válida de objetos com as chaves
"Oportunidade de Melhoria", "Solução", "Backlog de Atividades", "Investimento", "Ganhos".
Corrija a sintaxe e responda somente com o JSON corrigido.`

type ModelConfig struct {
	Temperature float64
	MaxTokens   int
	// RepairAttempts is how many times undecodable output is sent back for correction.
	RepairAttempts int
}

func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Temperature:    defaultModelTemperature,
		MaxTokens:      defaultModelMaxTokens,
		RepairAttempts: 1,
	}
}

// ModelExtractor asks a completion service to restate an answer as JSON.
type ModelExtractor struct {
	completer Completer
	cfg       ModelConfig
}

func NewModelExtractor(completer Completer, cfg ModelConfig) *ModelExtractor {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultModelMaxTokens
	}
	if cfg.RepairAttempts < 0 {
		cfg.RepairAttempts = 0
	}
	return &ModelExtractor{completer: completer, cfg: cfg}
}

func (e *ModelExtractor) Name() string {
	return string(StrategyModel)
}

func (e *ModelExtractor) Extract(ctx context.Context, raw string) ([]entity.Recommendation, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, entity.ErrNoStructureFound
	}

	out, err := e.complete(ctx, structureSystemPrompt, raw)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(out)
	for attempt := 0; err != nil && errors.Is(err, entity.ErrParse) && attempt < e.cfg.RepairAttempts; attempt++ {
		ctxzap.Warn(ctx, "structured output is not valid JSON, asking for a fix",
			zap.Int("attempt", attempt+1),
			zap.String("output", textnorm.Preview(out, 300)),
		)
		out, err = e.complete(ctx, repairSystemPrompt, out)
		if err != nil {
			return nil, err
		}
		records, err = decodeRecords(out)
	}
	if err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "structured output decoded", zap.Int("records", len(records)))
	return records, nil
}

func (e *ModelExtractor) complete(ctx context.Context, system, prompt string) (string, error) {
	out, err := e.completer.Complete(ctx, &entity.CompletionRequest{
		System:      system,
		Prompt:      prompt,
		Temperature: e.cfg.Temperature,
		MaxTokens:   e.cfg.MaxTokens,
	})
	if err != nil {
		return "", &entity.GenerationError{Err: err}
	}
	if strings.TrimSpace(out) == "" {
		return "", &entity.GenerationError{Err: errors.New("empty structured output")}
	}
	return out, nil
}

// decodeRecords accepts a JSON array of objects, optionally fenced or
// surrounded by prose, or a single object.
func decodeRecords(out string) ([]entity.Recommendation, error) {
	payload, ok := locateJSON(textnorm.StripCodeFence(out))
	if !ok {
		return nil, &entity.ParseError{Raw: out, Err: errors.New("no JSON value in output")}
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var objects []map[string]any
	if payload[0] == '{' {
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			return nil, &entity.ParseError{Raw: out, Err: err}
		}
		objects = append(objects, obj)
	} else if err := dec.Decode(&objects); err != nil {
		return nil, &entity.ParseError{Raw: out, Err: err}
	}

	records := make([]entity.Recommendation, 0, len(objects))
	for _, obj := range objects {
		rec := toRecommendation(obj)
		if rec.IsEmpty() {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, entity.ErrNoStructureFound
	}
	return records, nil
}

func locateJSON(s string) ([]byte, bool) {
	if start, end := strings.IndexByte(s, '['), strings.LastIndexByte(s, ']'); start >= 0 && end > start {
		if obj := strings.IndexByte(s, '{'); obj < 0 || start < obj {
			return []byte(s[start : end+1]), true
		}
	}
	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start >= 0 && end > start {
		return []byte(s[start : end+1]), true
	}
	return nil, false
}

var keyFolder = strings.NewReplacer(
	"ç", "c", "ã", "a", "á", "a", "â", "a", "à", "a",
	"é", "e", "ê", "e", "í", "i", "ó", "o", "ô", "o", "õ", "o", "ú", "u",
	" ", "", "_", "", "-", "",
)

func foldKey(k string) string {
	return keyFolder.Replace(strings.ToLower(strings.TrimSpace(k)))
}

var fieldByKey = func() map[string]entity.Field {
	m := make(map[string]entity.Field)
	for _, f := range entity.Fields() {
		m[foldKey(f.Label())] = f
		m[foldKey(f.Key())] = f
	}
	m["solucoes"] = entity.FieldSolution
	m["ganho"] = entity.FieldGains
	return m
}()

func toRecommendation(obj map[string]any) entity.Recommendation {
	var rec entity.Recommendation
	for k, v := range obj {
		f, ok := fieldByKey[foldKey(k)]
		if !ok {
			continue
		}
		rec.Set(f, textnorm.FlattenLines(coerce(v)))
	}
	return rec
}

func coerce(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := strings.TrimSpace(coerce(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
