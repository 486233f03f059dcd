package bulk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const (
	ColEmail       = "Email"
	ColCustomer    = "Customer"
	ColJobName     = "Job Name"
	ColLocation    = "Location"
	ColDescription = "Description"
	ColLinks       = "Links"

	// TemplateFileName is the name the template is conventionally saved as.
	TemplateFileName = "job-upload-template.xlsx"
	templateSheet    = "Jobs"
	maxXLSRows       = 100000
)

var ErrEmptySheet = errors.New("worksheet is empty")

var templateColumns = []struct {
	name  string
	width float64
}{
	{ColEmail, 25},
	{ColCustomer, 20},
	{ColJobName, 15},
	{ColLocation, 35},
	{ColDescription, 50},
	{ColLinks, 40},
}

var templateExamples = [][]string{
	{
		"john.doe@example.com",
		"Acme Corporation",
		"SO-2024-001",
		"123 Main St, Springfield, IL 62701",
		"Installation of electrical systems in new building wing",
		"https://example.com/manual1.pdf, https://example.com/manual2.pdf",
	},
	{
		"jane.smith@example.com",
		"Tech Industries",
		"SO-2024-002",
		"456 Oak Avenue, Chicago, IL 60601",
		"Maintenance and repair of HVAC systems",
		"https://example.com/hvac-manual.pdf",
	},
	{
		"bob.jones@example.com",
		"Manufacturing Co",
		"SO-2024-003",
		"789 Industrial Parkway, Aurora, IL 60505",
		"Equipment installation and testing for production line",
		"",
	},
}

// Row is one data row keyed by its header cell.
type Row struct {
	// Line is the 1-based spreadsheet row number.
	Line   int
	Fields map[string]string
}

func (r Row) Get(col string) string {
	return strings.TrimSpace(r.Fields[col])
}

// WriteTemplate writes an .xlsx upload template with example rows.
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return err
	}

	header := make([]any, len(templateColumns))
	for i, c := range templateColumns {
		header[i] = c.name
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(templateSheet, col, col, c.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return err
	}

	for i, example := range templateExamples {
		row := make([]any, len(example))
		for j, v := range example {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(templateSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// ReadRows reads the first worksheet of an .xlsx or .xls file. The format
// is chosen by the extension of filename. Blank rows are skipped.
func ReadRows(r io.Reader, filename string) ([]Row, error) {
	cells, err := readCells(r, filename)
	if err != nil {
		return nil, err
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for i, line := range cells[1:] {
		row := Row{Line: i + 2, Fields: make(map[string]string, len(header))}
		blank := true
		for j, name := range header {
			if name == "" || j >= len(line) {
				continue
			}
			v := strings.TrimSpace(line[j])
			if v != "" {
				blank = false
			}
			row.Fields[name] = v
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func readCells(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.New("no worksheet found")
		}
		cells := workbook.ReadAllCells(maxXLSRows)
		if len(cells) == 0 {
			return nil, ErrEmptySheet
		}
		return cells, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, errors.New("no worksheet found")
		}
		cells, err := file.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(cells) == 0 {
			return nil, ErrEmptySheet
		}
		return cells, nil
	default:
		return nil, fmt.Errorf("unsupported spreadsheet type %q", ext)
	}
}
