package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ReportType identifies one ISS sub-report pipeline
type ReportType string

// ReportType constants
const (
	ReportImportLoan ReportType = "import-loan"
	ReportImportBill ReportType = "import-bill"
	ReportExportBill ReportType = "export-bill"
)

// AllReportTypes lists the report types in their menu order.
var AllReportTypes = []ReportType{ReportImportLoan, ReportImportBill, ReportExportBill}

// Title returns the human readable report name used in prompts and summaries.
func (t ReportType) Title() string {
	switch t {
	case ReportImportLoan:
		return "ISS Import Loans"
	case ReportImportBill:
		return "ISS Import Bills Acceptance"
	case ReportExportBill:
		return "ISS Export Local Bills"
	}
	return string(t)
}

// ParseReportType accepts either the identifier or a 1-based menu number.
func ParseReportType(s string) (ReportType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, t := range AllReportTypes {
		if s == string(t) || s == string(rune('1'+i)) {
			return t, true
		}
	}
	return "", false
}

// UniqueReportTypes drops repeated report types, keeping first occurrences in order.
func UniqueReportTypes(reports []ReportType) []ReportType {
	seen := make(map[ReportType]bool, len(reports))
	out := make([]ReportType, 0, len(reports))
	for _, t := range reports {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// CellState constants
const (
	CellComputed = "computed"
	CellExcluded = "excluded"
	CellSkipped  = "skipped"
)

// Cell is one value of a consolidated report. Excluded and skipped cells carry
// no amount and never take part in totals.
type Cell struct {
	State  string          `json:"state"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

func Computed(amount decimal.Decimal) Cell {
	return Cell{State: CellComputed, Amount: amount}
}

func Excluded() Cell {
	return Cell{State: CellExcluded}
}

func Skipped(reason string) Cell {
	return Cell{State: CellSkipped, Reason: reason}
}

func (c Cell) IsComputed() bool { return c.State == CellComputed }

// LineAmount is one aggregated figure of a branch report
type LineAmount struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// BranchReport holds the cells of one branch, aligned by position with the
// report labels.
type BranchReport struct {
	Branch string `json:"branch"`
	Cells  []Cell `json:"cells"`
}

// BranchReportFromLines builds a fully computed branch report.
func BranchReportFromLines(branch string, lines []LineAmount) BranchReport {
	cells := make([]Cell, len(lines))
	for i, l := range lines {
		cells[i] = Computed(l.Amount)
	}
	return BranchReport{Branch: branch, Cells: cells}
}

// TotalColumn is the header of the consolidated total column
const TotalColumn = "Main Operation"

// Consolidated is the line items x branches table of one report type.
type Consolidated struct {
	LabelHeader string         `json:"label_header"`
	Labels      []string       `json:"labels"`
	Columns     []BranchReport `json:"columns"`
	Total       []Cell         `json:"total"`
}

// Row returns the cells of line i keyed by branch code, total under TotalColumn.
func (c Consolidated) Row(i int) map[string]Cell {
	row := make(map[string]Cell, len(c.Columns)+1)
	for _, col := range c.Columns {
		row[col.Branch] = col.Cells[i]
	}
	row[TotalColumn] = c.Total[i]
	return row
}

// OutcomeStatus constants
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Outcome is the typed result of one pipeline run.
type Outcome struct {
	Report     ReportType `json:"report"`
	Status     string     `json:"status"`
	OutputPath string     `json:"output_path,omitempty"`
	Warnings   []string   `json:"warnings,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func (o Outcome) Succeeded() bool { return o.Status == OutcomeSucceeded }

// RunSummary aggregates the outcomes of one invocation.
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Period    string    `json:"period"`
	Outcomes  []Outcome `json:"outcomes"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

// Failures returns the outcomes that did not produce a report.
func (s RunSummary) Failures() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}
