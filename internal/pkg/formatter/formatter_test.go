package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/futig/oportune/internal/entity"
	"github.com/futig/oportune/internal/pkg/textnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords(n int) []entity.Recommendation {
	records := make([]entity.Recommendation, n)
	for i := range records {
		records[i] = entity.Recommendation{
			Direction:   fmt.Sprintf("Direção %d", i%3),
			Opportunity: fmt.Sprintf("Reduzir retrabalho nº %d\ncom padronização", i),
			Solution:    "Implantar POP · ação ✓",
			Backlog:     "- Mapear\n- Medir\n- Melhorar",
			Investment:  fmt.Sprintf("R$ %d,00", i*100),
			Gains:       "Redução de 20% no ciclo 日本",
		}
	}
	return records
}

func readBack(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{entity.ExportSheetName}, f.GetSheetList())

	rows, err := f.GetRows(entity.ExportSheetName)
	require.NoError(t, err)
	return rows
}

// padRow restores the trailing empty cells that GetRows leaves out.
func padRow(row []string, n int) []string {
	for len(row) < n {
		row = append(row, "")
	}
	return row
}

func expectedRow(r entity.Recommendation) []string {
	want := entity.ExportRow(r)
	for j := range want {
		want[j] = textnorm.Cell(want[j])
	}
	return want
}

func TestXLSXRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 7, 1000} {
		t.Run(fmt.Sprintf("%d records", n), func(t *testing.T) {
			records := sampleRecords(n)

			data, err := NewXLSXFormatter(0).Format(records)
			require.NoError(t, err)

			rows := readBack(t, data)
			require.Len(t, rows, n+1)
			assert.Equal(t, entity.ExportHeader(), rows[0])

			for i, r := range records {
				assert.Equal(t, expectedRow(r), padRow(rows[i+1], len(rows[0])), "row %d", i+1)
			}
		})
	}
}

func TestXLSXRoundTripEdgeValues(t *testing.T) {
	tests := []struct {
		name    string
		records []entity.Recommendation
	}{
		{
			name: "empty gains",
			records: []entity.Recommendation{
				{Direction: "Custo", Opportunity: "O", Solution: "S", Backlog: "B", Investment: "I"},
			},
		},
		{
			name: "empty middle fields",
			records: []entity.Recommendation{
				{Direction: "Custo", Opportunity: "O", Gains: "G"},
				{Direction: "Prazo", Backlog: "B"},
				{Solution: "só solução"},
			},
		},
		{
			name: "only direction",
			records: []entity.Recommendation{
				{Direction: "Qualidade"},
				{Direction: "Custo", Gains: "G"},
			},
		},
		{
			name: "mixed unicode",
			records: []entity.Recommendation{{
				Direction:   "  Direção com espaços  ",
				Opportunity: "emoji 🚀 e 𝔘𝔫𝔦𝔠𝔬𝔡𝔢 astral",
				Solution:    "linha 1\rlinha 2\r\rlinha 3",
				Backlog:     "coluna\tcom\ttabs",
				Investment:  "\u00a0R$ 1.000,00 \uFFFD",
				Gains:       "日本語 · ação ✓ 👩‍💻",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := NewXLSXFormatter(0).Format(tt.records)
			require.NoError(t, err)

			rows := readBack(t, data)
			require.Len(t, rows, len(tt.records)+1)
			header := entity.ExportHeader()
			assert.Equal(t, header, rows[0])

			for i, r := range tt.records {
				assert.Equal(t, expectedRow(r), padRow(rows[i+1], len(header)), "row %d", i+1)
			}
		})
	}
}

func TestXLSXNormalizesValues(t *testing.T) {
	long := strings.Repeat("a", textnorm.MaxCellLength+50)
	records := []entity.Recommendation{{
		Direction:   "Custo",
		Opportunity: "linha 1\n\n  linha 2",
		Solution:    "controle\x07invisível",
		Backlog:     long,
		Investment:  "baixo",
		Gains:       "alto",
	}}

	data, err := NewXLSXFormatter(0).Format(records)
	require.NoError(t, err)

	rows := readBack(t, data)
	require.Len(t, rows, 2)
	assert.Equal(t, "linha 1 linha 2", rows[1][1])
	assert.Equal(t, "controleinvisível", rows[1][2])
	assert.Len(t, rows[1][3], textnorm.MaxCellLength)
}

func TestXLSXColumnWidths(t *testing.T) {
	records := []entity.Recommendation{{
		Direction:   "Qualidade",
		Opportunity: strings.Repeat("x", 300),
		Solution:    "s",
	}}

	data, err := NewXLSXFormatter(60).Format(records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	width, err := f.GetColWidth(entity.ExportSheetName, "A")
	require.NoError(t, err)
	assert.InDelta(t, float64(len("Direcionador")+columnPadding), width, 0.01)

	width, err = f.GetColWidth(entity.ExportSheetName, "B")
	require.NoError(t, err)
	assert.InDelta(t, 60, width, 0.01)
}

func TestMarkdownFormatter(t *testing.T) {
	records := []entity.Recommendation{{
		Direction:   "Custo",
		Opportunity: "Usar a|b\ncom cuidado",
		Solution:    "POP",
	}}

	data, err := NewMarkdownFormatter().Format(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# "+baseTitle, lines[0])
	assert.Equal(t, "| Direcionador | Oportunidade de Melhoria | Solução | Backlog de Atividades | Investimento | Ganhos |", lines[2])
	assert.Equal(t, "| Custo | Usar a\\|b com cuidado | POP |  |  |  |", lines[4])
}

func TestJSONFormatter(t *testing.T) {
	data, err := NewJSONFormatter().Format(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	records := sampleRecords(2)
	data, err = NewJSONFormatter().Format(records)
	require.NoError(t, err)

	var decoded []entity.Recommendation
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, records, decoded)
}

func TestPDFFormatterWithCoreFont(t *testing.T) {
	f := NewPDFFormatter("does-not-exist.ttf")
	data, err := f.Format(sampleRecords(3))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	data, err = f.Format(nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestFactory(t *testing.T) {
	factory := NewFactory(Options{})

	cases := []struct {
		format      entity.ResultFormat
		extension   string
		contentType string
	}{
		{entity.FormatXLSX, ".xlsx", xlsxContentType},
		{entity.FormatMarkdown, ".md", markdownContentType},
		{entity.FormatDOCX, ".docx", docxContentType},
		{entity.FormatPDF, ".pdf", pdfContentType},
		{entity.FormatJSON, ".json", jsonContentType},
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			f, err := factory.Create(tc.format)
			require.NoError(t, err)
			assert.Equal(t, tc.extension, f.FileExtension())
			assert.Equal(t, tc.contentType, f.ContentType())
			assert.Equal(t, entity.ExportBaseName+tc.extension, FileName(f))
		})
	}

	_, err := factory.Create("csv")
	assert.ErrorIs(t, err, entity.ErrInvalidFormat)
}
