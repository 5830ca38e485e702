package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"iss-report/internal/aggregate"
	"iss-report/internal/catalog"
	"iss-report/internal/classify"
	"iss-report/internal/models"
	"iss-report/internal/repositories"
	"iss-report/internal/tabular"
	"iss-report/internal/workbook"
)

// Columns of the export bill extracts.
const (
	col603Outstanding = "Bill Outstanding LCY"
	col603AcceptDate  = "Accept Dt."
	col603OPC         = "OPC"
	col603Currency    = "CUR"
	colMaturedAmount  = "LCY_AMOUNT"
	colMaturedOp      = "OPERATION"
	colMaturedDate    = "MATURITY_DATE"
	col625Amount      = "Bill Amt"
	col625Op          = "Opn"
	col625Maturity    = "Maturity Date"
	col625Currency    = "Ccy"
	col625LCYAmount   = "LCY_AMOUNT"
)

const discountedOperation = "DIS"

// An acceptance date starting with a D word (such as "DEFERRED") is not a date.
var deferredAcceptance = regexp.MustCompile(`^[Dd]\w+`)

// ExportBillPipeline derives the export local bills report from the 603R,
// acceptance matured and 625A extracts plus branch ledgers.
type ExportBillPipeline struct {
	src Sources
}

func NewExportBillPipeline(src Sources) *ExportBillPipeline {
	return &ExportBillPipeline{src: src}
}

func (p *ExportBillPipeline) Report() models.ReportType { return models.ReportExportBill }

// exportSources are the back-office tables of one run, already filtered.
type exportSources struct {
	outstanding tabular.Table
	foreign     tabular.Table
	matured     tabular.Table
	overdue     tabular.Table
}

func (p *ExportBillPipeline) Run(ctx context.Context, req RunRequest) (*PipelineResult, error) {
	logger := p.src.logger().With(slog.String("report", string(p.Report())))
	result := &PipelineResult{}

	dir, work, err := p.src.outputDirs("iss_export_bill")
	if err != nil {
		return nil, err
	}
	files := exportWorkFiles{
		local:   filepath.Join(work, "603R.xlsx"),
		foreign: filepath.Join(work, "603F.xlsx"),
		matured: filepath.Join(work, "matured.xlsx"),
		overdue: filepath.Join(work, "625A.xlsx"),
	}
	// 603F only receives branch sheets, so a previous run's file is cleared first
	if err := os.Remove(files.foreign); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	bo, err := p.loadSources(req, files, result, logger)
	if err != nil {
		return nil, err
	}

	reports := make([]models.BranchReport, 0, len(req.Branches))
	for _, br := range req.Branches {
		if err := canceled(ctx); err != nil {
			return nil, err
		}
		lines, err := p.branch(br, work, bo, files)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", br, err)
		}
		reports = append(reports, models.BranchReportFromLines(br, lines))
	}

	out := consolidatedPath(dir, "Export-Local", req.Period)
	if err := p.src.consolidate(out, catalog.ExportBillLabels, reports, req); err != nil {
		return nil, err
	}
	result.OutputPath = out
	logger.Info("report written", slog.String("path", out), slog.Int("branches", len(reports)))
	return result, nil
}

type exportWorkFiles struct {
	local, foreign, matured, overdue string
}

func (p *ExportBillPipeline) loadSources(req RunRequest, files exportWorkFiles, result *PipelineResult, logger *slog.Logger) (exportSources, error) {
	var bo exportSources
	opts := classify.Options{KnownBranches: req.Branches}

	local, err := p.src.loadBO(repositories.Keyword603R, files.local, tabular.SheetOptions{
		Sheet:          "Report1",
		HeaderRow:      4,
		KeyColumn:      classify.LocalBills603R.Column,
		NumericColumns: []string{col603Outstanding},
	})
	if err != nil {
		return bo, fmt.Errorf("603R extract: %w", err)
	}
	local, stats := classify.Classify(local, classify.LocalBills603R, opts)
	reportStats(result, logger, classify.LocalBills603R, stats)
	bo.outstanding = OutstandingLocalBills(local)
	bo.foreign = local.Filter(func(r tabular.Record) bool {
		return !strings.EqualFold(r[col603Currency], catalog.LocalCurrency)
	})

	matured, err := p.src.loadBO(repositories.KeywordMatured, files.matured, tabular.SheetOptions{
		Sheet:          "Report1",
		HeaderRow:      4,
		KeyColumn:      classify.MaturedAcceptance.Column,
		NumericColumns: []string{colMaturedAmount},
	})
	if err != nil {
		return bo, fmt.Errorf("acceptance matured extract: %w", err)
	}
	matured, stats = classify.Classify(matured, classify.MaturedAcceptance, opts)
	reportStats(result, logger, classify.MaturedAcceptance, stats)
	var undated int
	bo.matured, undated = MaturedAcceptances(matured, req.Period)
	if undated > 0 {
		result.warn(logger, "acceptance matured: %d discounted rows without a readable %s", undated, colMaturedDate)
	}

	overdue, err := p.src.loadBO(repositories.KeywordOverdueLocal, files.overdue, tabular.SheetOptions{
		Sheet:          "Report1",
		HeaderRow:      5,
		KeyColumn:      classify.OverdueLocal625A.Column,
		NumericColumns: []string{col625Amount},
	})
	if err != nil {
		return bo, fmt.Errorf("625A extract: %w", err)
	}
	overdue, stats = classify.Classify(overdue, classify.OverdueLocal625A, opts)
	reportStats(result, logger, classify.OverdueLocal625A, stats)

	rates, err := p.src.Rates.Rates()
	if err != nil {
		return bo, fmt.Errorf("exchange rates: %w", err)
	}
	var unrated []string
	bo.overdue, unrated = OverdueBills(overdue, req.Period, rates)
	if len(unrated) > 0 {
		result.warn(logger, "625A: no exchange rate for %s, those bills are left out", strings.Join(unrated, ", "))
	}
	return bo, nil
}

// branch computes the lines of one branch and appends its non-empty back
// office rows to the work files.
func (p *ExportBillPipeline) branch(br, work string, bo exportSources, files exportWorkFiles) ([]models.LineAmount, error) {
	postings, _, err := p.src.loadBranchLedger(br, work)
	if err != nil {
		return nil, err
	}

	local := classify.ByBranch(bo.outstanding, br)
	foreign := classify.ByBranch(bo.foreign, br)
	matured := classify.ByBranch(bo.matured, br)
	overdue := classify.ByBranch(bo.overdue, br)

	localAmount := local.Sum(col603Outstanding)
	foreignAmount := foreign.Sum(col603Outstanding)
	maturedAmount := matured.Sum(colMaturedAmount)
	overdueAmount := overdue.Sum(col625LCYAmount)
	ldbp := aggregate.SumWhere(postings, catalog.LDBPGLs)
	collection := aggregate.SumWhere(postings, catalog.LocalBillsCollectionGLs)

	appends := []struct {
		path    string
		table   tabular.Table
		amount  decimal.Decimal
		numeric []string
	}{
		{files.local, local, localAmount, []string{col603Outstanding}},
		{files.matured, matured, maturedAmount, []string{colMaturedAmount}},
		{files.overdue, overdue, overdueAmount, []string{col625Amount, col625LCYAmount}},
		{files.foreign, foreign, foreignAmount, []string{col603Outstanding}},
	}
	for _, a := range appends {
		if a.amount.IsZero() {
			continue
		}
		sheet := workbook.TableSheet(br, a.table, a.numeric, dateColumns(a.table.Columns))
		if err := p.src.Writer.AppendSheet(a.path, sheet); err != nil {
			return nil, fmt.Errorf("failed to append branch sheet to %s: %w", filepath.Base(a.path), err)
		}
	}

	return []models.LineAmount{
		{Label: catalog.ExportAcceptedLocal, Amount: localAmount},
		{Label: catalog.ExportLDBPOutstanding, Amount: ldbp},
		{Label: catalog.ExportAcceptanceRecv, Amount: ldbp},
		{Label: catalog.ExportAcceptanceMatured, Amount: maturedAmount},
		{Label: catalog.ExportUnrealized, Amount: overdueAmount},
		{Label: catalog.ExportFCInTransit, Amount: foreignAmount},
		{Label: catalog.ExportFCHolding, Amount: foreignAmount},
		{Label: catalog.ExportCollection, Amount: collection},
	}, nil
}

// OutstandingLocalBills keeps accepted 603R bills that are neither on
// collection nor deferred.
func OutstandingLocalBills(t tabular.Table) tabular.Table {
	return t.Filter(func(r tabular.Record) bool {
		accepted := strings.TrimSpace(r[col603AcceptDate])
		return accepted != "" && r[col603OPC] != "COL" && !deferredAcceptance.MatchString(accepted)
	})
}

// MaturedAcceptances keeps discounted acceptances maturing between the first
// day of the period's year and the period end. It also returns the number of
// discounted rows whose maturity date could not be read.
func MaturedAcceptances(t tabular.Table, period models.Period) (tabular.Table, int) {
	from, to := dateOnly(period.YearStart()), dateOnly(period.End)
	undated := 0
	out := t.Filter(func(r tabular.Record) bool {
		if r[colMaturedOp] != discountedOperation {
			return false
		}
		d, ok := tabular.ParseDate(r[colMaturedDate])
		if !ok {
			undated++
			return false
		}
		return !d.Before(from) && !d.After(to)
	})
	return out, undated
}

// OverdueBills keeps discounted 625A bills matured by the period end and adds
// their local currency amount. Bills in a currency without a rate are dropped
// and their currencies returned.
func OverdueBills(t tabular.Table, period models.Period, rates map[string]decimal.Decimal) (tabular.Table, []string) {
	end := dateOnly(period.End)
	due := t.Filter(func(r tabular.Record) bool {
		if r[col625Op] != discountedOperation {
			return false
		}
		d, ok := tabular.ParseDate(r[col625Maturity])
		return ok && !d.After(end)
	})

	missing := make(map[string]bool)
	rated := due.Filter(func(r tabular.Record) bool {
		ccy := strings.ToUpper(strings.TrimSpace(r[col625Currency]))
		if _, ok := rates[ccy]; !ok {
			missing[ccy] = true
			return false
		}
		return true
	})
	out := rated.InsertColumn(-1, col625LCYAmount, func(r tabular.Record) string {
		rate := rates[strings.ToUpper(strings.TrimSpace(r[col625Currency]))]
		return r.Amount(col625Amount).Mul(rate).String()
	})

	unrated := make([]string, 0, len(missing))
	for ccy := range missing {
		unrated = append(unrated, ccy)
	}
	sort.Strings(unrated)
	return out, unrated
}
