// Package tabular loads ledger and back-office exports into normalized row sets.
package tabular

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Record is a single row keyed by column name.
type Record map[string]string

// Decimal returns the numeric value of a column. Blank or non-numeric values
// read as zero and ok=false.
func (r Record) Decimal(column string) (decimal.Decimal, bool) {
	return ParseDecimal(r[column])
}

// Amount is Decimal without the ok flag, for columns already coerced.
func (r Record) Amount(column string) decimal.Decimal {
	d, _ := r.Decimal(column)
	return d
}

// Table is an ordered set of records sharing one column list.
type Table struct {
	Columns []string
	Records []Record
}

func (t Table) Len() int { return len(t.Records) }

func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter returns the records for which keep returns true.
func (t Table) Filter(keep func(Record) bool) Table {
	out := Table{Columns: t.Columns}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Sum adds up a numeric column, skipping blanks.
func (t Table) Sum(column string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.Records {
		if d, ok := r.Decimal(column); ok {
			total = total.Add(d)
		}
	}
	return total
}

// InsertColumn adds a derived column at position pos, computing each value with fn.
func (t Table) InsertColumn(pos int, name string, fn func(Record) string) Table {
	if pos < 0 || pos > len(t.Columns) {
		pos = len(t.Columns)
	}
	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns[:pos]...)
	cols = append(cols, name)
	cols = append(cols, t.Columns[pos:]...)

	out := Table{Columns: cols, Records: make([]Record, len(t.Records))}
	for i, r := range t.Records {
		nr := make(Record, len(r)+1)
		for k, v := range r {
			nr[k] = v
		}
		nr[name] = fn(r)
		out.Records[i] = nr
	}
	return out
}

// DropEmptyColumns removes columns that are blank in every record.
func (t Table) DropEmptyColumns() Table {
	var cols []string
	for _, c := range t.Columns {
		for _, r := range t.Records {
			if strings.TrimSpace(r[c]) != "" {
				cols = append(cols, c)
				break
			}
		}
	}
	return Table{Columns: cols, Records: t.Records}
}

// coerce keeps only records whose numeric columns all parse, normalizing
// their text to plain decimal notation. It returns the number of dropped rows.
func (t Table) coerce(numeric []string) (Table, int) {
	out := Table{Columns: t.Columns}
	dropped := 0
	for _, r := range t.Records {
		ok := true
		for _, c := range numeric {
			d, valid := ParseDecimal(r[c])
			if !valid {
				ok = false
				break
			}
			r[c] = d.String()
		}
		if ok {
			out.Records = append(out.Records, r)
		} else {
			dropped++
		}
	}
	return out, dropped
}

// ParseDecimal parses exported numbers such as "1,234.50", "(12.00)" or " 7 ".
func ParseDecimal(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
