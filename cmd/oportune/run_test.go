package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caso.yaml")
	content := `sector: Varejo
process: Compras
activity: Cotação de fornecedores
event: Atraso na entrega
cause: Fornecedor único
directions:
  - Redução de custo
  - Qualidade
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cf, err := readCaseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Varejo", cf.Sector)
	assert.Equal(t, "Fornecedor único", cf.Cause)
	assert.Equal(t, []string{"Redução de custo", "Qualidade"}, cf.Directions)
	assert.NoError(t, cf.CaseTemplate.Validate())
}

func TestReadCaseFileErrors(t *testing.T) {
	_, err := readCaseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sector: [unterminated"), 0o600))
	_, err = readCaseFile(path)
	assert.Error(t, err)
}

func TestReadInputFromStdin(t *testing.T) {
	cmd := extractCmd()
	cmd.SetIn(strings.NewReader("resposta"))

	data, err := readInput(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "resposta", string(data))

	data, err = readInput(cmd, []string{"-"})
	require.NoError(t, err)
	assert.Empty(t, data)
}
