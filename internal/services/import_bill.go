package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"iss-report/internal/aggregate"
	"iss-report/internal/catalog"
	"iss-report/internal/classify"
	"iss-report/internal/models"
	"iss-report/internal/reconcile"
	"iss-report/internal/repositories"
	"iss-report/internal/tabular"
	"iss-report/internal/workbook"
)

const (
	billAmountColumn = "LCY Balance"
	billSheet        = "Report1"
)

// ImportBillPipeline derives the import bill acceptance report from the 508
// bills extract, once its total agrees with the consolidated ledger.
type ImportBillPipeline struct {
	src  Sources
	gate reconcile.Gate
}

func NewImportBillPipeline(src Sources, gate reconcile.Gate) *ImportBillPipeline {
	return &ImportBillPipeline{src: src, gate: gate}
}

func (p *ImportBillPipeline) Report() models.ReportType { return models.ReportImportBill }

func (p *ImportBillPipeline) Run(ctx context.Context, req RunRequest) (*PipelineResult, error) {
	logger := p.src.logger().With(slog.String("report", string(p.Report())))
	result := &PipelineResult{}

	dir, work, err := p.src.outputDirs("iss_import_bill")
	if err != nil {
		return nil, err
	}

	bills, err := p.loadBills(req, work, result, logger)
	if err != nil {
		return nil, fmt.Errorf("bills extract: %w", err)
	}
	if err := canceled(ctx); err != nil {
		return nil, err
	}

	check, err := p.reconcile(bills, work)
	if err != nil {
		return nil, err
	}
	logger.Info("bill totals compared",
		slog.String("bo_total", check.BOTotal.StringFixed(2)),
		slog.String("gl_total", check.GLTotal.StringFixed(2)),
		slog.Bool("reconciled", check.Reconciled))

	labels := catalog.DerivedLabels(catalog.ImportBillLines)
	reports := make([]models.BranchReport, 0, len(req.Branches))
	for _, br := range req.Branches {
		if !check.Reconciled {
			reports = append(reports, skippedReport(br, len(labels), reconcile.NotReconciled))
			continue
		}
		reports = append(reports, models.BranchReportFromLines(br, BillLines(classify.ByBranch(bills, br))))
	}
	if !check.Reconciled {
		result.warn(logger, "bill total %s does not agree with ledger total %s (difference %s), bill figures skipped",
			check.BOTotal.StringFixed(2), check.GLTotal.StringFixed(2), check.Difference.StringFixed(2))
	}

	out := consolidatedPath(dir, "Import-Bills", req.Period)
	if err := p.src.consolidate(out, labels, reports, req, reconciliationSheet(check)); err != nil {
		return nil, err
	}
	result.OutputPath = out
	logger.Info("report written", slog.String("path", out), slog.Int("branches", len(reports)))
	return result, nil
}

// loadBills reads the 508 extract, derives the product, branch and LC type
// codes and persists the result as bill_508.xlsx.
func (p *ImportBillPipeline) loadBills(req RunRequest, work string, result *PipelineResult, logger *slog.Logger) (tabular.Table, error) {
	table, err := p.src.loadBO(repositories.KeywordBills, filepath.Join(work, "bill508.xlsx"), tabular.SheetOptions{
		Sheet:          billSheet,
		HeaderRow:      3,
		KeyColumn:      classify.Bills508.Column,
		NumericColumns: []string{billAmountColumn},
	})
	if err != nil {
		return tabular.Table{}, err
	}

	// rows with a malformed reference belong to no branch but still count
	// towards the bill total
	bills, stats := classify.Classify(table, classify.Bills508, classify.Options{
		Deny:          catalog.BillProductDeny,
		KnownBranches: req.Branches,
		KeepMalformed: true,
	})
	reportStats(result, logger, classify.Bills508, stats)

	bills, stats = classify.Classify(bills, classify.BillsLCType, classify.Options{KeepMalformed: true})
	reportStats(result, logger, classify.BillsLCType, stats)

	if unknown := unknownCategories(bills, catalog.BillCategories, classify.BillsLCType.CategoryColumn); len(unknown) > 0 {
		result.warn(logger, "bills with LC types outside every category: %s", strings.Join(unknown, ", "))
	}

	sheet := workbook.TableSheet(billSheet, bills, []string{billAmountColumn}, dateColumns(bills.Columns))
	if err := p.src.Writer.WriteSheets(filepath.Join(work, "bill_508.xlsx"), sheet); err != nil {
		return tabular.Table{}, fmt.Errorf("failed to write bill work file: %w", err)
	}
	return bills, nil
}

// reconcile compares the contingent bill total with the acceptance ledger balances.
func (p *ImportBillPipeline) reconcile(bills tabular.Table, work string) (reconcile.Result, error) {
	contingent := bills.Filter(func(r tabular.Record) bool {
		return r[classify.CategoryColumn] != catalog.BillNonContingentProduct
	})
	boTotal := contingent.Sum(billAmountColumn)

	path, err := p.src.Ledgers.ConsolidatedLedgerPath()
	if err != nil {
		return reconcile.Result{}, err
	}
	postings, _, err := p.src.loadLedger(path, filepath.Join(work, "gl_consolidated.xlsx"))
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("consolidated ledger: %w", err)
	}
	glTotal := aggregate.SumWhere(postings, catalog.AcceptanceGLs)
	return p.gate.Check(boTotal, glTotal), nil
}

// BillLines computes the import bill lines from the classified bills of one branch.
func BillLines(bills tabular.Table) []models.LineAmount {
	postings := aggregate.Postings(bills, classify.BillsLCType.CategoryColumn, classify.Bills508.Column, billAmountColumn)
	categories := aggregate.Aggregate(catalog.BillCategories, postings)

	byCategory := make(map[string]decimal.Decimal, len(categories.Sums))
	for _, s := range categories.Sums {
		byCategory[s.Label] = s.Amount
	}
	lines := make([]models.LineAmount, len(catalog.ImportBillLines))
	for i, line := range catalog.ImportBillLines {
		sum := decimal.Zero
		for _, c := range line.Categories {
			sum = sum.Add(byCategory[c])
		}
		lines[i] = models.LineAmount{Label: line.Name, Amount: sum}
	}
	return lines
}

func skippedReport(branch string, rows int, reason string) models.BranchReport {
	cells := make([]models.Cell, rows)
	for i := range cells {
		cells[i] = models.Skipped(reason)
	}
	return models.BranchReport{Branch: branch, Cells: cells}
}

func reconciliationSheet(r reconcile.Result) workbook.Sheet {
	status := "reconciled"
	if !r.Reconciled {
		status = reconcile.NotReconciled
	}
	return workbook.Sheet{
		Name:       "Reconciliation",
		Header:     []string{"Check", "Amount"},
		FixedLabel: true,
		Rows: [][]workbook.Value{
			{workbook.TextValue("Back office bill total (excluding " + catalog.BillNonContingentProduct + ")"), workbook.AmountValue(r.BOTotal)},
			{workbook.TextValue("Ledger acceptance total"), workbook.AmountValue(r.GLTotal)},
			{workbook.TextValue("Difference"), workbook.AmountValue(r.Difference)},
			{workbook.TextValue("Tolerance"), workbook.AmountValue(r.Tolerance)},
			{workbook.TextValue("Status"), workbook.TextValue(status)},
		},
	}
}

// unknownCategories lists the distinct codes of column that belong to no line
// item of table. Blank codes are ignored.
func unknownCategories(t tabular.Table, table catalog.Table, column string) []string {
	known := make(map[string]bool)
	for _, k := range table.Keys() {
		known[k] = true
	}
	seen := make(map[string]bool)
	var unknown []string
	for _, r := range t.Records {
		code := r[column]
		if code == "" || known[code] || seen[code] {
			continue
		}
		seen[code] = true
		unknown = append(unknown, code)
	}
	return unknown
}

// dateColumns picks the columns formatted as dates in work files.
func dateColumns(columns []string) []string {
	var dates []string
	for _, c := range columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "date") || strings.HasSuffix(lower, "dt.") || strings.HasSuffix(lower, "dt") {
			dates = append(dates, c)
		}
	}
	return dates
}
