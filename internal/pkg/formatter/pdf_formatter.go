package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// In the container image fonts live in /app/ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

// resolveFontPath returns the configured font, then the runtime
// or source layout copy, or "" when none exists.
func (pf *PDFFormatter) resolveFontPath() string {
	for _, p := range []string{pf.fontPath, pdfFontRuntimePath, pdfFontSourcePath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Format prints one block per record: the direction heading followed by
// the labelled fields.
func (pf *PDFFormatter) Format(records []entity.Recommendation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	fontName := "Arial"
	// Core fonts only understand cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := pf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, tr(baseTitle))
	pdf.Ln(14)

	if len(records) == 0 {
		pdf.SetFont(fontName, "", 11)
		pdf.Cell(0, 8, tr("Nenhuma oportunidade registrada."))
	}

	for i, r := range records {
		pdf.SetFont(fontName, "B", 13)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s: %s", i+1, entity.DirectionLabel, textnorm.FlattenLines(r.Direction))), "", "", false)
		pdf.Ln(1)

		for _, field := range entity.Fields() {
			pdf.SetFont(fontName, "B", 11)
			pdf.MultiCell(0, 6, tr(field.Label()), "", "", false)
			pdf.SetFont(fontName, "", 11)
			pdf.MultiCell(0, 6, tr(textnorm.FlattenLines(r.Get(field))), "", "", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
