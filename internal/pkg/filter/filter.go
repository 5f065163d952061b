// Package filter selects result rows with CEL expressions such as
// `direction == "Custo" && gains.contains("redução")`.
package filter

import (
	"fmt"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/google/cel-go/cel"
)

const costLimit = 100000

// Filter is a compiled boolean expression over one recommendation.
type Filter struct {
	expr    string
	program cel.Program
}

func newEnv() (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable("direction", cel.StringType),
		cel.Variable("index", cel.IntType),
	}
	for _, f := range entity.Fields() {
		opts = append(opts, cel.Variable(f.Key(), cel.StringType))
	}
	return cel.NewEnv(opts...)
}

// Compile parses and type-checks expr. A blank expression yields a nil
// Filter, which matches everything.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression must be boolean, got %s", entity.ErrInvalidFilter, ast.OutputType())
	}

	prg, err := env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}

	return &Filter{expr: expr, program: prg}, nil
}

func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the expression for the record at position index.
func (f *Filter) Match(index int, r entity.Recommendation) (bool, error) {
	if f == nil {
		return true, nil
	}

	vars := map[string]any{
		"direction": r.Direction,
		"index":     int64(index),
	}
	for _, field := range entity.Fields() {
		vars[field.Key()] = r.Get(field)
	}

	out, _, err := f.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	matched, _ := out.Value().(bool)
	return matched, nil
}

// Apply returns the records the expression accepts, keeping their order.
func (f *Filter) Apply(records []entity.Recommendation) ([]entity.Recommendation, error) {
	if f == nil {
		return records, nil
	}

	out := make([]entity.Recommendation, 0, len(records))
	for i, r := range records {
		ok, err := f.Match(i, r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}
