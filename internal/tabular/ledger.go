package tabular

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// LedgerColumns is the fixed column list of a general-ledger balance sheet export.
var LedgerColumns = []string{"Level", "Leaf", "GL Code", "GL Description", "FCY Balance", "LCY Balance", "Total"}

// LedgerTextColumns are the ledger columns kept as text.
var LedgerTextColumns = []string{"Leaf", "GL Description"}

// AuditSink persists a normalized table for audit. Values of the numeric
// columns are written as numbers, everything else as text.
type AuditSink interface {
	WriteTable(path, sheet string, t Table, numeric []string) error
}

// LedgerOptions controls which tables of an HTML export are kept and how they are typed.
type LedgerOptions struct {
	// Tables [From, len+To) are kept when To <= 0, [From, To) otherwise.
	From, To    int
	Columns     []string
	TextColumns []string
	AuditPath   string
	Audit       AuditSink
}

// DefaultLedgerOptions drops the first (header) and last (footer) table of the export.
func DefaultLedgerOptions() LedgerOptions {
	return LedgerOptions{From: 1, To: -1, Columns: LedgerColumns, TextColumns: LedgerTextColumns}
}

func (o LedgerOptions) numericColumns() []string {
	text := make(map[string]bool, len(o.TextColumns))
	for _, c := range o.TextColumns {
		text[c] = true
	}
	var numeric []string
	for _, c := range o.Columns {
		if !text[c] {
			numeric = append(numeric, c)
		}
	}
	return numeric
}

// LedgerResult is the normalized ledger plus load statistics.
type LedgerResult struct {
	Table   Table
	Tables  int
	Dropped int
}

// LoadLedgerHTML reads the HTML balance sheet export at path.
func LoadLedgerHTML(path string, opts LedgerOptions) (*LedgerResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger export: %w", err)
	}
	result, err := ParseLedgerHTML(bytes.NewReader(data), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger export %s: %w", path, err)
	}
	if opts.AuditPath != "" && opts.Audit != nil {
		if err := opts.Audit.WriteTable(opts.AuditPath, "Sheet1", result.Table, opts.numericColumns()); err != nil {
			return nil, fmt.Errorf("failed to write ledger work file: %w", err)
		}
	}
	return result, nil
}

// ParseLedgerHTML parses an HTML export from r.
func ParseLedgerHTML(r io.Reader, opts LedgerOptions) (*LedgerResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode export: %w", err)
		}
		data = decoded
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	tables := findTables(doc)
	from, to := opts.From, opts.To
	if to <= 0 {
		to = len(tables) + to
	}
	if from < 0 {
		from = 0
	}
	if to > len(tables) {
		to = len(tables)
	}

	raw := Table{Columns: opts.Columns}
	for i := from; i < to; i++ {
		for _, cells := range tableRows(tables[i]) {
			if len(cells) < len(opts.Columns) {
				continue
			}
			rec := make(Record, len(opts.Columns))
			for j, col := range opts.Columns {
				rec[col] = cells[j]
			}
			raw.Records = append(raw.Records, rec)
		}
	}

	typed, dropped := raw.coerce(opts.numericColumns())
	// text columns must be present too
	complete := typed.Filter(func(r Record) bool {
		for _, c := range opts.TextColumns {
			if strings.TrimSpace(r[c]) == "" {
				return false
			}
		}
		return true
	})
	dropped += typed.Len() - complete.Len()

	return &LedgerResult{Table: complete, Tables: len(tables), Dropped: dropped}, nil
}

func findTables(n *html.Node) []*html.Node {
	var tables []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			tables = append(tables, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return tables
}

// tableRows returns the cell texts of the rows owned by table, skipping rows of nested tables.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.DataAtom == atom.Td || td.DataAtom == atom.Th) {
						cells = append(cells, nodeText(td))
					}
				}
				rows = append(rows, cells)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
