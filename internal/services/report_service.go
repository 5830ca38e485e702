package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"iss-report/internal/models"
)

// DefaultWorkers is the number of pipelines run at once.
const DefaultWorkers = 2

// ProgressFunc is called once per finished pipeline, never concurrently.
type ProgressFunc func(o models.Outcome, done, total int)

// ReportService runs the selected pipelines and collects their outcomes.
type ReportService struct {
	pipelines map[models.ReportType]Pipeline
	workers   int
	logger    *slog.Logger
}

func NewReportService(logger *slog.Logger, workers int, pipelines ...Pipeline) *ReportService {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportService{
		pipelines: make(map[models.ReportType]Pipeline, len(pipelines)),
		workers:   workers,
		logger:    logger,
	}
	for _, p := range pipelines {
		s.pipelines[p.Report()] = p
	}
	return s
}

// Run executes the pipelines of the given report types. A failing pipeline
// never stops the others; its error is recorded in its outcome. Outcomes keep
// the order of reports. A report listed twice runs once.
func (s *ReportService) Run(ctx context.Context, req RunRequest, reports []models.ReportType, progress ProgressFunc) models.RunSummary {
	reports = models.UniqueReportTypes(reports)
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	summary := models.RunSummary{
		RunID:    req.RunID,
		Period:   req.Period.Name(),
		Outcomes: make([]models.Outcome, len(reports)),
	}
	logger := s.logger.With(slog.String("run_id", req.RunID), slog.String("period", summary.Period))
	logger.Info("run started", slog.Int("reports", len(reports)), slog.Any("excluded", req.Excluded))
	start := time.Now()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		done int
	)
	g.SetLimit(s.workers)
	for i, report := range reports {
		i, report := i, report
		g.Go(func() error {
			outcome := s.runOne(ctx, logger, report, req)
			summary.Outcomes[i] = outcome

			mu.Lock()
			defer mu.Unlock()
			done++
			if progress != nil {
				progress(outcome, done, len(reports))
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range summary.Outcomes {
		if o.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	logger.Info("run finished",
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Duration("elapsed", time.Since(start)))
	return summary
}

func (s *ReportService) runOne(ctx context.Context, logger *slog.Logger, report models.ReportType, req RunRequest) (outcome models.Outcome) {
	outcome = models.Outcome{Report: report, Status: models.OutcomeFailed}
	defer func() {
		if r := recover(); r != nil {
			outcome.Status = models.OutcomeFailed
			outcome.Error = fmt.Sprintf("panic: %v", r)
			logger.Error("pipeline panicked", slog.String("report", string(report)), slog.Any("panic", r))
		}
	}()

	p, ok := s.pipelines[report]
	if !ok {
		outcome.Error = fmt.Sprintf("no pipeline for report %q", report)
		return outcome
	}
	if err := ctx.Err(); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	result, err := p.Run(ctx, req)
	if err != nil {
		outcome.Error = err.Error()
		logger.Error("report failed", slog.String("report", string(report)), slog.Any("error", err))
		return outcome
	}
	outcome.Status = models.OutcomeSucceeded
	outcome.OutputPath = result.OutputPath
	outcome.Warnings = result.Warnings
	return outcome
}
