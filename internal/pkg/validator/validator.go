package validator

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/futig/oportune/internal/config"
	"github.com/futig/oportune/internal/entity"
)

// Validator checks request payloads against the configured limits.
type Validator struct {
	cfg config.ValidationConfig
}

func NewValidator(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

func (v *Validator) ValidateCreateSession(req *entity.CreateSessionRequest) error {
	if req.Case != nil {
		if err := v.ValidateCase(req.Case); err != nil {
			return err
		}
	}
	return v.validateDirections("directions", req.Directions)
}

// ValidateCase requires every field and bounds its length.
func (v *Validator) ValidateCase(tmpl *entity.CaseTemplate) error {
	if tmpl == nil {
		return entity.NewValidationError("case", entity.ErrMissingField)
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}

	fields := map[string]string{
		"sector":   tmpl.Sector,
		"process":  tmpl.Process,
		"activity": tmpl.Activity,
		"event":    tmpl.Event,
		"cause":    tmpl.Cause,
	}
	for _, name := range []string{"sector", "process", "activity", "event", "cause"} {
		if err := v.checkLength(name, fields[name], v.cfg.MaxFieldLength); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) ValidateAddDirection(req *entity.AddDirectionRequest) error {
	if strings.TrimSpace(req.Direction) == "" {
		return entity.NewValidationError("direction", entity.ErrMissingField)
	}
	return v.checkLength("direction", req.Direction, v.cfg.MaxFieldLength)
}

func (v *Validator) ValidateRun(req *entity.RunRequest) error {
	if err := v.validateDirections("directions", req.Directions); err != nil {
		return err
	}
	if req.CallbackURL == "" {
		return nil
	}
	u, err := url.ParseRequestURI(req.CallbackURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return entity.NewValidationError("callback_url", entity.ErrInvalidParameter)
	}
	return nil
}

func (v *Validator) ValidatePatch(patch *entity.RecommendationPatch) error {
	if patch.IsEmpty() {
		return entity.NewValidationError("patch", entity.ErrMissingField)
	}

	values := []struct {
		name  string
		value *string
	}{
		{"opportunity", patch.Opportunity},
		{"solution", patch.Solution},
		{"backlog", patch.Backlog},
		{"investment", patch.Investment},
		{"gains", patch.Gains},
		{"direction", patch.Direction},
	}
	for _, f := range values {
		if f.value == nil {
			continue
		}
		if err := v.checkLength(f.name, *f.value, v.cfg.MaxAnswerLength); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) ValidateExtract(req *entity.ExtractRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return entity.NewValidationError("text", entity.ErrMissingField)
	}
	return v.checkLength("text", req.Text, v.cfg.MaxAnswerLength)
}

// ParseIndex converts a path segment into a result row index.
func (v *Validator) ParseIndex(raw string) (int, error) {
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, entity.NewValidationError("index", fmt.Errorf("%w: %q is not a row index", entity.ErrInvalidParameter, raw))
	}
	return index, nil
}

func (v *Validator) validateDirections(field string, directions []string) error {
	if v.cfg.MaxDirections > 0 && len(directions) > v.cfg.MaxDirections {
		return entity.NewValidationError(field,
			fmt.Errorf("%w: at most %d directions, got %d", entity.ErrInvalidParameter, v.cfg.MaxDirections, len(directions)))
	}
	for _, d := range directions {
		if err := v.checkLength(field, d, v.cfg.MaxFieldLength); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkLength(field, value string, limit int) error {
	if limit > 0 && utf8.RuneCountInString(value) > limit {
		return entity.NewValidationError(field,
			fmt.Errorf("%w: longer than %d characters", entity.ErrInvalidParameter, limit))
	}
	return nil
}
