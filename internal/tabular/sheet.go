package tabular

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// SheetOptions describes how a back-office extract is laid out.
type SheetOptions struct {
	// Sheet defaults to the first sheet when empty or missing from the workbook.
	Sheet string
	// HeaderRow is 1-based.
	HeaderRow int
	// Rows with a blank KeyColumn are dropped.
	KeyColumn string
	// NumericColumns are coerced; rows that fail are dropped.
	NumericColumns []string
	AuditPath      string
	Audit          AuditSink
}

// SheetResult is the normalized extract plus load statistics.
type SheetResult struct {
	Table      Table
	BlankKeys  int
	NonNumeric int
}

// LoadSheet reads a back-office extract (.xlsx or legacy .xls).
func LoadSheet(path string, opts SheetOptions) (*SheetResult, error) {
	rows, err := readRows(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	result, err := FromRows(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if opts.AuditPath != "" && opts.Audit != nil {
		sheet := opts.Sheet
		if sheet == "" {
			sheet = "Sheet1"
		}
		if err := opts.Audit.WriteTable(opts.AuditPath, sheet, result.Table, opts.NumericColumns); err != nil {
			return nil, fmt.Errorf("failed to write work file: %w", err)
		}
	}
	return result, nil
}

// FromRows builds a table from raw sheet rows.
func FromRows(rows [][]string, opts SheetOptions) (*SheetResult, error) {
	headerRow := opts.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}
	if len(rows) < headerRow {
		return nil, fmt.Errorf("header row %d not present, sheet has %d rows", headerRow, len(rows))
	}

	// repeated names become "X", "X.1", "X.2" so no column shadows another
	header := make([]string, len(rows[headerRow-1]))
	seen := make(map[string]int, len(header))
	for i, h := range rows[headerRow-1] {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		header[i] = name
	}
	if opts.KeyColumn != "" && !contains(header, opts.KeyColumn) {
		return nil, fmt.Errorf("key column %q not found in header", opts.KeyColumn)
	}

	result := &SheetResult{Table: Table{Columns: header}}
	for _, row := range rows[headerRow:] {
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = strings.TrimSpace(row[i])
			}
		}
		if opts.KeyColumn != "" && rec[opts.KeyColumn] == "" {
			result.BlankKeys++
			continue
		}
		result.Table.Records = append(result.Table.Records, rec)
	}

	var numeric []string
	for _, c := range opts.NumericColumns {
		if contains(header, c) {
			numeric = append(numeric, c)
		}
	}
	result.Table, result.NonNumeric = result.Table.coerce(numeric)
	result.Table = result.Table.DropEmptyColumns()
	return result, nil
}

func readRows(path, sheet string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return readXLSRows(path, sheet)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" || !contains(f.GetSheetList(), sheet) {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", path, err)
	}
	return rows, nil
}

func readXLSRows(path, sheetName string) ([][]string, error) {
	workbook, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	index := 0
	for i := 0; i < workbook.GetNumberSheets(); i++ {
		sheet, err := workbook.GetSheet(i)
		if err == nil && sheet != nil && sheet.GetName() == sheetName {
			index = i
			break
		}
	}
	sheet, err := workbook.GetSheet(index)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("failed to read sheet of %s: %v", path, err)
	}

	var rows [][]string
	for i := 0; i <= int(sheet.GetNumberRows()); i++ {
		row, err := sheet.GetRow(i)
		if err != nil || row == nil {
			rows = append(rows, nil)
			continue
		}
		var cells []string
		for _, col := range row.GetCols() {
			if col != nil {
				cells = append(cells, col.GetString())
			} else {
				cells = append(cells, "")
			}
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
