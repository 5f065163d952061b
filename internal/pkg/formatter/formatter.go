package formatter

import (
	"fmt"

	"github.com/futig/oportune/internal/entity"
)

const baseTitle = "Oportunidades de melhoria"

type Formatter interface {
	Format(records []entity.Recommendation) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Options tune the binary formats. Zero values fall back to defaults.
type Options struct {
	MaxColumnWidth   int
	PDFFontPath      string
	OfficeLicenseKey string
}

type Factory struct {
	opts Options
}

func NewFactory(opts Options) *Factory {
	return &Factory{opts: opts}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatXLSX:
		return NewXLSXFormatter(f.opts.MaxColumnWidth), nil
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(f.opts.OfficeLicenseKey), nil
	case entity.FormatPDF:
		return NewPDFFormatter(f.opts.PDFFontPath), nil
	case entity.FormatJSON:
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", entity.ErrInvalidFormat, format)
	}
}

// FileName is the download name of an export in the given format.
func FileName(f Formatter) string {
	return entity.ExportBaseName + f.FileExtension()
}
