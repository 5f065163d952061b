package entity

type ResultFormat string

const (
	FormatXLSX     ResultFormat = "xlsx"
	FormatMarkdown ResultFormat = "markdown"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
	FormatJSON     ResultFormat = "json"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatXLSX, FormatMarkdown, FormatDOCX, FormatPDF, FormatJSON:
		return true
	default:
		return false
	}
}

// ExportBaseName is the file name, without extension, of exported result sets.
const ExportBaseName = "oportunidade_melhoria"

// ExportSheetName names the worksheet of spreadsheet exports.
const ExportSheetName = "Oportunidade de melhorias"

// ExportHeader returns the column titles of exported tables.
func ExportHeader() []string {
	header := []string{DirectionLabel}
	for _, f := range Fields() {
		header = append(header, f.Label())
	}
	return header
}

// ExportRow returns the cell values of a recommendation in header order.
func ExportRow(r Recommendation) []string {
	row := []string{r.Direction}
	for _, f := range Fields() {
		row = append(row, r.Get(f))
	}
	return row
}

// ExportFile is a rendered result set ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Rows        int
}
