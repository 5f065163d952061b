package extractor

import (
	"context"
	"regexp"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// labelPatterns are indexed by entity.Field. Accents are optional.
var labelPatterns = [...]string{
	entity.FieldOpportunity: `oportunidades?\s+de\s+melhorias?`,
	entity.FieldSolution:    `solu[çc](?:[ãa]o|[õo]es)`,
	entity.FieldBacklog:     `backlog(?:\s+de\s+atividades)?`,
	entity.FieldInvestment:  `investimentos?`,
	entity.FieldGains:       `ganhos?`,
}

// labelRegexp matches any label with optional markdown emphasis around it and a
// colon, possibly preceded by spaces. Group i+1 is set when field i matched.
var labelRegexp = buildLabelRegexp()

func buildLabelRegexp() *regexp.Regexp {
	groups := make([]string, len(labelPatterns))
	for i, p := range labelPatterns {
		groups[i] = "(" + p + ")"
	}
	return regexp.MustCompile(`(?i)(?:\*\*|__)?\b(?:` + strings.Join(groups, "|") + `)\b\s*(?:\*\*|__)?\s*:(?:\*\*|__)?`)
}

var (
	// markerLineRegexp matches lines holding only list enumerators, separators or emphasis.
	markerLineRegexp = regexp.MustCompile(`^(?:[-–*#|>_:]+|\(?\d{1,3}[.)])?$`)
	headingRegexp    = regexp.MustCompile(`^#{1,6}\s`)
	bulletRegexp     = regexp.MustCompile(`^[-–*+•][ \t]+`)

	// Both match only on the line of the next label.
	danglingMarkRegexp = regexp.MustCompile(`\s[-–*#|]+[ \t]*$`)
	danglingEnumRegexp = regexp.MustCompile(`(?:^|\s)\(?\d{1,3}[.)][ \t]*$`)
)

var emphasisMarks = [...]string{"**", "__", "*"}

type labelHit struct {
	field      entity.Field
	start, end int
}

type RegexExtractor struct{}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

func (e *RegexExtractor) Name() string {
	return string(StrategyRegex)
}

// Extract reads label/value pairs in source order. A block ends when a label
// repeats or a new opportunity label starts; missing labels stay empty.
func (e *RegexExtractor) Extract(ctx context.Context, raw string) ([]entity.Recommendation, error) {
	hits := findLabels(raw)
	if len(hits) == 0 {
		ctxzap.Debug(ctx, "no labels found in answer", zap.String("raw", textnorm.Preview(raw, 200)))
		return nil, entity.ErrNoStructureFound
	}

	var (
		records []entity.Recommendation
		current entity.Recommendation
		seen    = make(map[entity.Field]bool, len(labelPatterns))
	)

	flush := func() {
		if len(seen) > 0 && !current.IsEmpty() {
			records = append(records, current)
		}
		current = entity.Recommendation{}
		clear(seen)
	}

	for i, hit := range hits {
		end := len(raw)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}

		if seen[hit.field] || (hit.field == entity.FieldOpportunity && len(seen) > 0) {
			flush()
		}

		seen[hit.field] = true
		current.Set(hit.field, cleanValue(trimDangling(raw[hit.end:end], hits, i, seen)))
	}
	flush()

	if len(records) == 0 {
		return nil, entity.ErrNoStructureFound
	}

	ctxzap.Debug(ctx, "answer parsed", zap.Int("records", len(records)), zap.Int("labels", len(hits)))
	return records, nil
}

func findLabels(raw string) []labelHit {
	matches := labelRegexp.FindAllStringSubmatchIndex(raw, -1)
	hits := make([]labelHit, 0, len(matches))
	for _, m := range matches {
		for i := range labelPatterns {
			if m[2*(i+1)] >= 0 {
				hits = append(hits, labelHit{field: entity.Field(i), start: m[0], end: m[1]})
				break
			}
		}
	}
	return hits
}

// trimDangling cuts list markup that sits right before the next label. An
// enumerator is only cut when the next label opens a new block, so numbers
// that end a value ("fase 2.") survive.
func trimDangling(s string, hits []labelHit, i int, seen map[entity.Field]bool) string {
	if i+1 >= len(hits) {
		return s
	}
	s = danglingMarkRegexp.ReplaceAllString(s, "")

	next := hits[i+1].field
	if seen[next] || next == entity.FieldOpportunity {
		s = danglingEnumRegexp.ReplaceAllString(s, "")
	}
	return s
}

// cleanValue drops trailing marker lines and headings that belong to the next
// block, strips bullets and emphasis, then flattens what is left to one line.
// The text on the label's own line is never dropped.
func cleanValue(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for len(lines) > 1 {
		last := strings.TrimSpace(lines[len(lines)-1])
		if markerLineRegexp.MatchString(last) || headingRegexp.MatchString(last) {
			lines = lines[:len(lines)-1]
			continue
		}
		break
	}

	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	value := textnorm.FlattenLines(strings.Join(lines, "\n"))
	return strings.TrimRight(value, " :")
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = bulletRegexp.ReplaceAllString(line, "")
	line = strings.TrimSpace(strings.Trim(line, "|"))
	for _, mark := range emphasisMarks {
		if len(line) > 2*len(mark) && strings.HasPrefix(line, mark) && strings.HasSuffix(line, mark) {
			return strings.TrimSpace(line[len(mark) : len(line)-len(mark)])
		}
	}
	return line
}
