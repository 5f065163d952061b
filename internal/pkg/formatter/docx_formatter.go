package formatter

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unioffice/measurement"
	"github.com/unidoc/unioffice/schema/soo/wml"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

var (
	licenseOnce sync.Once
	licenseErr  error
)

// applyLicense registers the metered key once per process.
func applyLicense(key string) error {
	if key == "" {
		return nil
	}
	licenseOnce.Do(func() {
		licenseErr = license.SetMeteredKey(key)
	})
	return licenseErr
}

type DOCXFormatter struct {
	licenseKey string
}

func NewDOCXFormatter(licenseKey string) *DOCXFormatter {
	return &DOCXFormatter{licenseKey: licenseKey}
}

// Format writes a landscape document with one bordered table.
func (df *DOCXFormatter) Format(records []entity.Recommendation) ([]byte, error) {
	if err := applyLicense(df.licenseKey); err != nil {
		return nil, fmt.Errorf("apply office license: %w", err)
	}

	doc := document.New()
	defer doc.Close()

	doc.BodySection().SetPageSizeAndOrientation(
		measurement.Inch*11, measurement.Inch*8.5, wml.ST_PageOrientationLandscape,
	)

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(baseTitle)

	table := doc.AddTable()
	table.Properties().SetWidthPercent(100)
	table.Properties().Borders().SetAll(wml.ST_BorderSingle, color.Auto, 1*measurement.Point)

	addRow := func(cells []string, bold bool) {
		row := table.AddRow()
		for _, value := range cells {
			run := row.AddCell().AddParagraph().AddRun()
			run.Properties().SetBold(bold)
			run.AddText(textnorm.Cell(value))
		}
	}

	addRow(entity.ExportHeader(), true)
	for _, r := range records {
		addRow(entity.ExportRow(r), false)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
