package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"iss-report/internal/aggregate"
	"iss-report/internal/catalog"
	"iss-report/internal/classify"
	"iss-report/internal/combine"
	"iss-report/internal/config"
	"iss-report/internal/models"
	"iss-report/internal/reconcile"
	"iss-report/internal/repositories"
	"iss-report/internal/tabular"
	"iss-report/internal/workbook"
)

const workFilesDir = "work_files"

// RunRequest is the input shared by every pipeline of one run.
type RunRequest struct {
	RunID string
	// Branches are the branches to compute, excluded ones already removed.
	Branches []string
	// Excluded branches appear in the output as blank columns.
	Excluded []string
	Period   models.Period
}

// NewRunRequest removes the excluded codes from all and returns the request
// for the given period.
func NewRunRequest(all, excluded []string, period models.Period) RunRequest {
	skip := make(map[string]bool, len(excluded))
	for _, br := range excluded {
		skip[br] = true
	}
	req := RunRequest{Excluded: excluded, Period: period}
	for _, br := range all {
		if !skip[br] {
			req.Branches = append(req.Branches, br)
		}
	}
	return req
}

// PipelineResult is what a pipeline reports back on success.
type PipelineResult struct {
	OutputPath string
	Warnings   []string
}

func (r *PipelineResult) warn(logger *slog.Logger, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn(msg)
	r.Warnings = append(r.Warnings, msg)
}

// Pipeline produces one ISS sub-report.
type Pipeline interface {
	Report() models.ReportType
	Run(ctx context.Context, req RunRequest) (*PipelineResult, error)
}

// Sources bundles the inputs and output settings shared by the pipelines.
type Sources struct {
	Ledgers   repositories.LedgerRepository
	BO        repositories.BORepository
	Rates     repositories.RateRepository
	Writer    *workbook.Writer
	OutputDir string
	Logger    *slog.Logger
}

// NewSources wires the file repositories and workbook writer from configuration.
func NewSources(cfg *config.Config, logger *slog.Logger) Sources {
	return Sources{
		Ledgers:   repositories.NewLedgerRepository(cfg.Input.LedgerDir),
		BO:        repositories.NewBORepository(cfg.Input.BODir, cfg.Input.ExchangeRateFile),
		Rates:     repositories.NewRateRepository(cfg.Input.ExchangeRateFile, catalog.LocalCurrency),
		Writer:    workbook.NewWriter(),
		OutputDir: cfg.Report.OutputDir,
		Logger:    logger,
	}
}

// DefaultPipelines returns every report pipeline in menu order.
func DefaultPipelines(src Sources, gate reconcile.Gate) []Pipeline {
	return []Pipeline{
		NewImportLoanPipeline(src),
		NewImportBillPipeline(src, gate),
		NewExportBillPipeline(src),
	}
}

func (s Sources) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// outputDirs creates <OutputDir>/<name>/work_files and returns both paths.
func (s Sources) outputDirs(name string) (string, string, error) {
	dir := filepath.Join(s.OutputDir, name)
	work := filepath.Join(dir, workFilesDir)
	if err := os.MkdirAll(work, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, work, nil
}

// loadBranchLedger loads the ledger of one branch, persisting it as a work file.
func (s Sources) loadBranchLedger(branch, workDir string) ([]aggregate.Posting, int, error) {
	path, err := s.Ledgers.BranchLedgerPath(branch)
	if err != nil {
		return nil, 0, err
	}
	return s.loadLedger(path, filepath.Join(workDir, "gl_"+branch+".xlsx"))
}

func (s Sources) loadLedger(path, auditPath string) ([]aggregate.Posting, int, error) {
	opts := tabular.DefaultLedgerOptions()
	opts.AuditPath = auditPath
	opts.Audit = s.Writer
	ledger, err := tabular.LoadLedgerHTML(path, opts)
	if err != nil {
		return nil, 0, err
	}
	return aggregate.LedgerPostings(ledger.Table), ledger.Table.Len(), nil
}

// loadBO finds and loads a back-office extract, persisting the cleaned table
// to auditPath.
func (s Sources) loadBO(keywords []string, auditPath string, opts tabular.SheetOptions) (tabular.Table, error) {
	path, err := s.BO.Find(keywords...)
	if err != nil {
		return tabular.Table{}, err
	}
	opts.AuditPath = auditPath
	opts.Audit = s.Writer
	result, err := tabular.LoadSheet(path, opts)
	if err != nil {
		return tabular.Table{}, err
	}
	if result.NonNumeric > 0 {
		s.logger().Warn("rows dropped for non-numeric amounts",
			slog.String("file", filepath.Base(path)),
			slog.Int("rows", result.NonNumeric))
	}
	return result.Table, nil
}

// reportStats turns classifier statistics into run warnings.
func reportStats(result *PipelineResult, logger *slog.Logger, format classify.ReferenceFormat, stats classify.Stats) {
	if stats.Malformed > 0 {
		result.warn(logger, "%s: %d rows with malformed %q (e.g. %s)",
			format.Name, stats.Malformed, format.Column, strings.Join(stats.MalformedRefs, ", "))
	}
	if stats.UnknownBranch > 0 {
		result.warn(logger, "%s: %d rows belong to branches outside the report", format.Name, stats.UnknownBranch)
	}
}

// consolidate combines branch reports and writes the consolidated workbook.
func (s Sources) consolidate(path string, labels []string, reports []models.BranchReport, req RunRequest, extra ...workbook.Sheet) error {
	consolidated, err := combine.Combine("Particulars", labels, reports, req.Excluded)
	if err != nil {
		return err
	}
	if err := s.Writer.WriteConsolidated(path, consolidated, extra...); err != nil {
		return fmt.Errorf("failed to write consolidated report: %w", err)
	}
	return nil
}

func consolidatedPath(dir, prefix string, period models.Period) string {
	return filepath.Join(dir, fmt.Sprintf("ISS_%s_%s.xlsx", prefix, period.Name()))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run canceled: %w", err)
	}
	return nil
}
