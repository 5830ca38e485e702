package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"iss-report/internal/models"
	"iss-report/internal/tabular"
)

// ConsolidatedSheetName is the sheet holding the published figures.
const ConsolidatedSheetName = "Sheet1"

// ConsolidatedSheet lays out a consolidated report: labels in the first
// column, one column per branch, the total last. Excluded cells stay blank and
// skipped cells show their reason.
func ConsolidatedSheet(c models.Consolidated) Sheet {
	header := make([]string, 0, len(c.Columns)+2)
	header = append(header, c.LabelHeader)
	for _, col := range c.Columns {
		header = append(header, col.Branch)
	}
	header = append(header, models.TotalColumn)

	s := Sheet{Name: ConsolidatedSheetName, Header: header, FixedLabel: true}
	for i, label := range c.Labels {
		row := make([]Value, 0, len(header))
		row = append(row, TextValue(label))
		for _, col := range c.Columns {
			row = append(row, cellValue(col.Cells[i]))
		}
		row = append(row, cellValue(c.Total[i]))
		s.Rows = append(s.Rows, row)
	}
	return s
}

func cellValue(c models.Cell) Value {
	switch c.State {
	case models.CellComputed:
		return AmountValue(c.Amount)
	case models.CellSkipped:
		return TextValue(c.Reason)
	}
	return BlankValue()
}

// WriteConsolidated writes the consolidated report followed by any extra sheets.
func (w *Writer) WriteConsolidated(path string, c models.Consolidated, extra ...Sheet) error {
	return w.WriteSheets(path, append([]Sheet{ConsolidatedSheet(c)}, extra...)...)
}

// SummarySheet is a two column label/amount sheet.
func SummarySheet(name, labelHeader string, lines []models.LineAmount) Sheet {
	s := Sheet{Name: name, Header: []string{labelHeader, "Total"}, FixedLabel: true}
	for _, l := range lines {
		s.Rows = append(s.Rows, []Value{TextValue(l.Label), AmountValue(l.Amount)})
	}
	return s
}

// ReadRows returns the raw cell values of a sheet.
func ReadRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, path, err)
	}
	return rows, nil
}

// ReadSummary reads back a sheet written by SummarySheet. Amounts are rounded
// to two decimals, the precision they were written with.
func ReadSummary(path, sheet string) ([]models.LineAmount, error) {
	rows, err := ReadRows(path, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s of %s is empty", sheet, path)
	}

	var lines []models.LineAmount
	for i, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		line := models.LineAmount{Label: row[0]}
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			d, ok := tabular.ParseDecimal(row[1])
			if !ok {
				return nil, fmt.Errorf("sheet %s row %d: amount %q is not numeric", sheet, i+2, row[1])
			}
			line.Amount = d.Round(2)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
