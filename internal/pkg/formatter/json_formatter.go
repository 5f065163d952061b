package formatter

import (
	"encoding/json"

	"github.com/futig/oportune/internal/entity"
)

const (
	jsonContentType   = "application/json"
	jsonFileExtension = ".json"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (jf *JSONFormatter) Format(records []entity.Recommendation) ([]byte, error) {
	if records == nil {
		records = []entity.Recommendation{}
	}
	return json.MarshalIndent(records, "", "  ")
}

func (jf *JSONFormatter) ContentType() string {
	return jsonContentType
}

func (jf *JSONFormatter) FileExtension() string {
	return jsonFileExtension
}
