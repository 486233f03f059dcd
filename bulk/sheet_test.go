package bulk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	rows, err := ReadRows(bytes.NewReader(buf.Bytes()), TemplateFileName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "john.doe@example.com", first.Get(ColEmail))
	assert.Equal(t, "SO-2024-001", first.Get(ColJobName))
	assert.Equal(t, "", rows[2].Get(ColLinks))
}

func TestTemplateLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{templateSheet}, f.GetSheetList())
	width, err := f.GetColWidth(templateSheet, "E")
	require.NoError(t, err)
	assert.Equal(t, float64(50), width)
}

func TestReadRowsSkipsBlankLines(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{" Email ", "Customer"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"a@example.com", "Acme"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"b@example.com", " Beta "}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := ReadRows(&buf, "jobs.XLSX")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "Beta", rows[1].Get(ColCustomer))
	assert.Equal(t, "b@example.com", rows[1].Get(ColEmail))
}

func TestReadRowsUnsupportedExtension(t *testing.T) {
	_, err := ReadRows(strings.NewReader("a,b"), "jobs.csv")
	assert.ErrorContains(t, err, "unsupported spreadsheet type")
}

func TestReadRowsCorruptXLS(t *testing.T) {
	_, err := ReadRows(strings.NewReader("not a workbook"), "jobs.xls")
	assert.Error(t, err)
}
