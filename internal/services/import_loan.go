package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/shopspring/decimal"

	"iss-report/internal/aggregate"
	"iss-report/internal/catalog"
	"iss-report/internal/classify"
	"iss-report/internal/models"
	"iss-report/internal/repositories"
	"iss-report/internal/tabular"
	"iss-report/internal/workbook"
)

// ImportLoanPipeline derives the import loan report from branch ledgers and
// the same month adjustment extract.
type ImportLoanPipeline struct {
	src Sources
}

func NewImportLoanPipeline(src Sources) *ImportLoanPipeline {
	return &ImportLoanPipeline{src: src}
}

func (p *ImportLoanPipeline) Report() models.ReportType { return models.ReportImportLoan }

// ImportLoanLabels are the rows of the consolidated import loan report.
func ImportLoanLabels() []string {
	return append(catalog.LoanMain.Labels(), catalog.LoanOtherLoans)
}

func (p *ImportLoanPipeline) Run(ctx context.Context, req RunRequest) (*PipelineResult, error) {
	logger := p.src.logger().With(slog.String("report", string(p.Report())))
	result := &PipelineResult{}

	dir, work, err := p.src.outputDirs("iss_import_loan")
	if err != nil {
		return nil, err
	}

	sameMonth, err := p.sameMonthAdjustments(req, work, result, logger)
	if err != nil {
		return nil, fmt.Errorf("same month adjustments: %w", err)
	}

	reports := make([]models.BranchReport, 0, len(req.Branches))
	for _, br := range req.Branches {
		if err := canceled(ctx); err != nil {
			return nil, err
		}
		lines, err := p.branch(br, work, sameMonth[br], result, logger)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", br, err)
		}
		reports = append(reports, models.BranchReportFromLines(br, lines))
	}

	out := consolidatedPath(dir, "Import-Loan", req.Period)
	if err := p.src.consolidate(out, ImportLoanLabels(), reports, req); err != nil {
		return nil, err
	}
	result.OutputPath = out
	logger.Info("report written", slog.String("path", out), slog.Int("branches", len(reports)))
	return result, nil
}

// sameMonthAdjustments sums loans disbursed and settled within the month per branch.
func (p *ImportLoanPipeline) sameMonthAdjustments(req RunRequest, work string, result *PipelineResult, logger *slog.Logger) (map[string]decimal.Decimal, error) {
	table, err := p.src.loadBO(repositories.KeywordSameMonth, filepath.Join(work, "same_month.xlsx"), tabular.SheetOptions{
		Sheet:          "Report1",
		HeaderRow:      3,
		KeyColumn:      "PRODUCT_CODE",
		NumericColumns: []string{"LCY_AMOUNT"},
	})
	if err != nil {
		return nil, err
	}

	classified, stats := classify.Classify(table, classify.SameMonth, classify.Options{KnownBranches: req.Branches})
	reportStats(result, logger, classify.SameMonth, stats)

	allowed := make(map[string]bool, len(catalog.SameMonthProducts))
	for _, code := range catalog.SameMonthProducts {
		allowed[code] = true
	}
	sums := make(map[string]decimal.Decimal)
	for _, r := range classified.Records {
		if allowed[r["PRODUCT_CODE"]] {
			br := r[classify.BranchColumn]
			sums[br] = sums[br].Add(r.Amount("LCY_AMOUNT"))
		}
	}
	return sums, nil
}

// branch computes the main summary of one branch and writes its work file.
func (p *ImportLoanPipeline) branch(br, work string, sameMonth decimal.Decimal, result *PipelineResult, logger *slog.Logger) ([]models.LineAmount, error) {
	postings, rows, err := p.src.loadBranchLedger(br, work)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		result.warn(logger, "branch %s: ledger export has no balance rows", br)
	}

	other := aggregate.Aggregate(catalog.LoanOther, postings)
	otherTotal := other.Total()
	otherSums := append(other.Sums, models.LineAmount{Label: catalog.LoanOtherTotal, Amount: otherTotal})

	main := aggregate.Aggregate(catalog.LoanMain, postings)
	mainSums := make([]models.LineAmount, 0, len(main.Sums)+1)
	for _, s := range main.Sums {
		if s.Label == catalog.LoanSameMonthLabel {
			s.Amount = sameMonth
		}
		mainSums = append(mainSums, s)
	}
	mainSums = append(mainSums, models.LineAmount{Label: catalog.LoanOtherLoans, Amount: otherTotal})

	err = p.src.Writer.WriteSheets(filepath.Join(work, "iss_"+br+".xlsx"),
		workbook.SummarySheet("Main_Summary", "Particulars", mainSums),
		workbook.SummarySheet("Other_Summary", "Loan Type", otherSums),
		detailSheet("Main_Details", "Particulars", main.Details),
		detailSheet("Other_Details", "Loan Type", other.Details),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to write branch work file: %w", err)
	}
	return mainSums, nil
}

// detailSheet lists the joined ledger rows behind a summary. Codes without a
// ledger balance are kept with a blank amount.
func detailSheet(name, labelHeader string, details []aggregate.Detail) workbook.Sheet {
	s := workbook.Sheet{
		Name:   name,
		Header: []string{labelHeader, "Variant", "GL Code", "GL Description", "Total"},
	}
	for _, d := range details {
		amount := workbook.BlankValue()
		if d.Matched {
			amount = workbook.AmountValue(d.Amount)
		}
		s.Rows = append(s.Rows, []workbook.Value{
			workbook.TextValue(d.LineItem),
			workbook.TextValue(d.Variant),
			workbook.TextValue(d.Key),
			workbook.TextValue(d.Description),
			amount,
		})
	}
	return s
}
