package formatter

import (
	"fmt"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsxFileExtension = ".xlsx"

	defaultMaxColumnWidth = 80
	columnPadding         = 2
)

type XLSXFormatter struct {
	maxColumnWidth int
}

func NewXLSXFormatter(maxColumnWidth int) *XLSXFormatter {
	if maxColumnWidth <= 0 {
		maxColumnWidth = defaultMaxColumnWidth
	}
	return &XLSXFormatter{maxColumnWidth: maxColumnWidth}
}

// Format writes a single worksheet with the header row and one row per record.
func (xf *XLSXFormatter) Format(records []entity.Recommendation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := entity.ExportSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := entity.ExportHeader()
	widths := make([]int, len(header))

	writeRow := func(row int, cells []string) error {
		for col, value := range cells {
			value = textnorm.Cell(value)
			if w := textnorm.DisplayWidth(value); w > widths[col] {
				widths[col] = w
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeRow(1, header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := writeRow(i+2, entity.ExportRow(r)); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := xf.styleHeader(f, sheet, len(header)); err != nil {
		return nil, err
	}

	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, float64(min(w+columnPadding, xf.maxColumnWidth))); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (xf *XLSXFormatter) styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func (xf *XLSXFormatter) ContentType() string {
	return xlsxContentType
}

func (xf *XLSXFormatter) FileExtension() string {
	return xlsxFileExtension
}
