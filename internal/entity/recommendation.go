package entity

import "fmt"

// Field is one of the five content fields of a recommendation.
type Field int

const (
	FieldOpportunity Field = iota
	FieldSolution
	FieldBacklog
	FieldInvestment
	FieldGains
)

// DirectionLabel heads the direction column of exported tables.
const DirectionLabel = "Direcionador"

var fieldLabels = [...]string{
	FieldOpportunity: "Oportunidade de Melhoria",
	FieldSolution:    "Solução",
	FieldBacklog:     "Backlog de Atividades",
	FieldInvestment:  "Investimento",
	FieldGains:       "Ganhos",
}

var fieldKeys = [...]string{
	FieldOpportunity: "opportunity",
	FieldSolution:    "solution",
	FieldBacklog:     "backlog",
	FieldInvestment:  "investment",
	FieldGains:       "gains",
}

// Fields returns the content fields in their fixed order.
func Fields() []Field {
	return []Field{FieldOpportunity, FieldSolution, FieldBacklog, FieldInvestment, FieldGains}
}

// Label is the Portuguese label used in prompts, answers and exports.
func (f Field) Label() string {
	if f < 0 || int(f) >= len(fieldLabels) {
		return ""
	}
	return fieldLabels[f]
}

// Key is the JSON key of the field.
func (f Field) Key() string {
	if f < 0 || int(f) >= len(fieldKeys) {
		return ""
	}
	return fieldKeys[f]
}

func (f Field) String() string {
	return f.Key()
}

// Recommendation is one structured improvement row.
type Recommendation struct {
	Opportunity string `json:"opportunity"`
	Solution    string `json:"solution"`
	Backlog     string `json:"backlog"`
	Investment  string `json:"investment"`
	Gains       string `json:"gains"`
	Direction   string `json:"direction"`
}

func (r Recommendation) Get(f Field) string {
	switch f {
	case FieldOpportunity:
		return r.Opportunity
	case FieldSolution:
		return r.Solution
	case FieldBacklog:
		return r.Backlog
	case FieldInvestment:
		return r.Investment
	case FieldGains:
		return r.Gains
	default:
		return ""
	}
}

func (r *Recommendation) Set(f Field, value string) {
	switch f {
	case FieldOpportunity:
		r.Opportunity = value
	case FieldSolution:
		r.Solution = value
	case FieldBacklog:
		r.Backlog = value
	case FieldInvestment:
		r.Investment = value
	case FieldGains:
		r.Gains = value
	}
}

// IsEmpty reports whether every content field is blank.
func (r Recommendation) IsEmpty() bool {
	for _, f := range Fields() {
		if r.Get(f) != "" {
			return false
		}
	}
	return true
}

// RecommendationPatch replaces only the fields that are set.
type RecommendationPatch struct {
	Opportunity *string `json:"opportunity,omitempty"`
	Solution    *string `json:"solution,omitempty"`
	Backlog     *string `json:"backlog,omitempty"`
	Investment  *string `json:"investment,omitempty"`
	Gains       *string `json:"gains,omitempty"`
	Direction   *string `json:"direction,omitempty"`
}

func (p RecommendationPatch) IsEmpty() bool {
	return p.Opportunity == nil && p.Solution == nil && p.Backlog == nil &&
		p.Investment == nil && p.Gains == nil && p.Direction == nil
}

func (p RecommendationPatch) Apply(r Recommendation) Recommendation {
	if p.Opportunity != nil {
		r.Opportunity = *p.Opportunity
	}
	if p.Solution != nil {
		r.Solution = *p.Solution
	}
	if p.Backlog != nil {
		r.Backlog = *p.Backlog
	}
	if p.Investment != nil {
		r.Investment = *p.Investment
	}
	if p.Gains != nil {
		r.Gains = *p.Gains
	}
	if p.Direction != nil {
		r.Direction = *p.Direction
	}
	return r
}

// ResultSet is the ordered collection of recommendations of a session.
// Insertion order is generation order; edits never reorder rows.
type ResultSet struct {
	records []Recommendation
}

func NewResultSet(records ...Recommendation) *ResultSet {
	rs := &ResultSet{}
	rs.Append(records...)
	return rs
}

func (rs *ResultSet) Append(records ...Recommendation) {
	rs.records = append(rs.records, records...)
}

func (rs *ResultSet) Len() int {
	return len(rs.records)
}

// Records returns a copy of the rows.
func (rs *ResultSet) Records() []Recommendation {
	out := make([]Recommendation, len(rs.records))
	copy(out, rs.records)
	return out
}

func (rs *ResultSet) Get(index int) (Recommendation, error) {
	if err := rs.checkIndex(index); err != nil {
		return Recommendation{}, err
	}
	return rs.records[index], nil
}

// Update applies a field-level patch to the row at index.
func (rs *ResultSet) Update(index int, patch RecommendationPatch) (Recommendation, error) {
	if err := rs.checkIndex(index); err != nil {
		return Recommendation{}, err
	}
	rs.records[index] = patch.Apply(rs.records[index])
	return rs.records[index], nil
}

// Remove deletes the row at index, keeping the order of the others.
func (rs *ResultSet) Remove(index int) error {
	if err := rs.checkIndex(index); err != nil {
		return err
	}
	rs.records = append(rs.records[:index], rs.records[index+1:]...)
	return nil
}

func (rs *ResultSet) Clear() {
	rs.records = nil
}

func (rs *ResultSet) checkIndex(index int) error {
	if index < 0 || index >= len(rs.records) {
		return fmt.Errorf("%w: index %d of %d", ErrRecordNotFound, index, len(rs.records))
	}
	return nil
}
