// Package workbook writes and reads the report workbooks.
package workbook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"iss-report/internal/tabular"
)

const (
	// numFmtAmount is the built-in "#,##0.00" format.
	numFmtAmount = 4
	dateFormat   = "dd-mm-yyyy;@"
	// LabelWidth is the fixed width of the line-item label column.
	LabelWidth = 55
	maxWidth   = 80
)

// Value is one cell to write. Exactly one of Text, Amount or Date is used,
// according to Kind.
type Value struct {
	Kind   Kind
	Text   string
	Amount decimal.Decimal
	Date   time.Time
}

type Kind int

const (
	Blank Kind = iota
	Text
	Amount
	Date
)

func TextValue(s string) Value { return Value{Kind: Text, Text: s} }

func AmountValue(d decimal.Decimal) Value { return Value{Kind: Amount, Amount: d} }

func DateValue(t time.Time) Value { return Value{Kind: Date, Date: t} }

func BlankValue() Value { return Value{} }

func (v Value) width() int {
	switch v.Kind {
	case Text:
		return utf8.RuneCountInString(v.Text)
	case Amount:
		// thousands separators included
		s := v.Amount.StringFixed(2)
		return len(s) + len(s)/4
	case Date:
		return 10
	}
	return 0
}

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]Value
	// FixedLabel gives the first column LabelWidth instead of an auto width.
	FixedLabel bool
}

// Writer produces report workbooks.
type Writer struct {
	Creator string
}

func NewWriter() *Writer {
	return &Writer{Creator: "ISS Report"}
}

// WriteSheets creates path with the given sheets, replacing any existing file.
func (w *Writer) WriteSheets(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("workbook needs at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{Creator: w.Creator, LastModifiedBy: w.Creator}); err != nil {
		return err
	}
	if err := f.SetSheetName("Sheet1", sheets[0].Name); err != nil {
		return err
	}
	for i, s := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(s.Name); err != nil {
				return err
			}
		}
		if err := writeSheet(f, s); err != nil {
			return fmt.Errorf("sheet %s: %w", s.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return save(f, path)
}

// AppendSheet adds (or replaces) a sheet of an existing workbook, creating the
// workbook when it does not exist.
func (w *Writer) AppendSheet(path string, s Sheet) error {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return w.WriteSheets(path, s)
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(s.Name); idx >= 0 {
		if err := f.DeleteSheet(s.Name); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(s.Name); err != nil {
		return err
	}
	if err := writeSheet(f, s); err != nil {
		return fmt.Errorf("sheet %s: %w", s.Name, err)
	}
	return f.Save()
}

// WriteTable implements tabular.AuditSink.
func (w *Writer) WriteTable(path, sheet string, t tabular.Table, numeric []string) error {
	return w.WriteSheets(path, TableSheet(sheet, t, numeric, nil))
}

// TableSheet converts a table into a sheet. Numeric columns become amounts and
// date columns dates when their values parse; all others stay text.
func TableSheet(name string, t tabular.Table, numeric, dates []string) Sheet {
	num := toSet(numeric)
	dt := toSet(dates)
	s := Sheet{Name: name, Header: t.Columns, Rows: make([][]Value, 0, t.Len())}
	for _, r := range t.Records {
		row := make([]Value, len(t.Columns))
		for i, c := range t.Columns {
			raw := r[c]
			switch {
			case raw == "":
				row[i] = BlankValue()
			case num[c]:
				if d, ok := tabular.ParseDecimal(raw); ok {
					row[i] = AmountValue(d)
				} else {
					row[i] = TextValue(raw)
				}
			case dt[c]:
				if d, ok := tabular.ParseDate(raw); ok {
					row[i] = DateValue(d)
				} else {
					row[i] = TextValue(raw)
				}
			default:
				row[i] = TextValue(raw)
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func writeSheet(f *excelize.File, s Sheet) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtAmount})
	if err != nil {
		return err
	}
	format := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return err
	}

	widths := make([]int, len(s.Header))
	for i, h := range s.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s.Name, cell, h); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	if len(s.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
		if err := f.SetCellStyle(s.Name, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range s.Rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			switch v.Kind {
			case Text:
				err = f.SetCellStr(s.Name, cell, v.Text)
			case Amount:
				if err = f.SetCellFloat(s.Name, cell, v.Amount.Round(2).InexactFloat64(), -1, 64); err == nil {
					err = f.SetCellStyle(s.Name, cell, cell, amountStyle)
				}
			case Date:
				if err = f.SetCellValue(s.Name, cell, v.Date); err == nil {
					err = f.SetCellStyle(s.Name, cell, cell, dateStyle)
				}
			}
			if err != nil {
				return err
			}
			if c < len(widths) && v.width() > widths[c] {
				widths[c] = v.width()
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w+2) * 1.11
		if i == 0 && s.FixedLabel {
			width = LabelWidth
		}
		if width > maxWidth {
			width = maxWidth
		}
		if err := f.SetColWidth(s.Name, col, col, width); err != nil {
			return err
		}
	}

	if len(s.Rows) > 0 {
		return f.SetPanes(s.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

func save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}
