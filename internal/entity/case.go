package entity

import "strings"

// CaseTemplate is the part of a case description shared by every direction of a run.
type CaseTemplate struct {
	Sector   string `json:"sector" yaml:"sector"`
	Process  string `json:"process" yaml:"process"`
	Activity string `json:"activity" yaml:"activity"`
	Event    string `json:"event" yaml:"event"`
	Cause    string `json:"cause" yaml:"cause"`
}

// WithDirection completes the template for a single direction tag.
func (t CaseTemplate) WithDirection(direction string) CaseDescription {
	return CaseDescription{
		Sector:    strings.TrimSpace(t.Sector),
		Direction: strings.TrimSpace(direction),
		Process:   strings.TrimSpace(t.Process),
		Activity:  strings.TrimSpace(t.Activity),
		Event:     strings.TrimSpace(t.Event),
		Cause:     strings.TrimSpace(t.Cause),
	}
}

// Validate reports the first empty field as a ValidationError.
func (t CaseTemplate) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"sector", t.Sector},
		{"process", t.Process},
		{"activity", t.Activity},
		{"event", t.Event},
		{"cause", t.Cause},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, ErrMissingField)
		}
	}
	return nil
}

// CaseDescription is the full input of one generation request.
type CaseDescription struct {
	Sector    string `json:"sector"`
	Direction string `json:"direction"`
	Process   string `json:"process"`
	Activity  string `json:"activity"`
	Event     string `json:"event"`
	Cause     string `json:"cause"`
}

func (c CaseDescription) Validate() error {
	if strings.TrimSpace(c.Direction) == "" {
		return NewValidationError("direction", ErrMissingField)
	}
	return c.Template().Validate()
}

func (c CaseDescription) Template() CaseTemplate {
	return CaseTemplate{
		Sector:   c.Sector,
		Process:  c.Process,
		Activity: c.Activity,
		Event:    c.Event,
		Cause:    c.Cause,
	}
}
