package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

var markdownEscaper = strings.NewReplacer("|", `\|`)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format renders a GitHub style table, one row per record.
func (mf *MarkdownFormatter) Format(records []entity.Recommendation) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", baseTitle)

	header := entity.ExportHeader()
	writeMarkdownRow(&buf, header)

	buf.WriteString("|")
	for range header {
		buf.WriteString(" --- |")
	}
	buf.WriteString("\n")

	for _, r := range records {
		writeMarkdownRow(&buf, entity.ExportRow(r))
	}
	return buf.Bytes(), nil
}

func writeMarkdownRow(buf *bytes.Buffer, cells []string) {
	buf.WriteString("|")
	for _, c := range cells {
		buf.WriteString(" ")
		buf.WriteString(markdownEscaper.Replace(textnorm.FlattenLines(c)))
		buf.WriteString(" |")
	}
	buf.WriteString("\n")
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
