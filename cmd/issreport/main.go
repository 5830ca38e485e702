package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"iss-report/internal/config"
	"iss-report/internal/console"
	"iss-report/internal/handlers"
	"iss-report/internal/models"
	"iss-report/internal/reconcile"
	"iss-report/internal/services"
)

func main() {
	serve := flag.Bool("serve", false, "Start the HTTP API instead of running once")
	exclude := flag.String("exclude", "", "Comma separated branch codes to leave out")
	reportFlag := flag.String("report", "", "Comma separated reports to generate (import-loan, import-bill, export-bill or 1-3)")
	yes := flag.Bool("yes", false, "Do not prompt; use the flags as given")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	if cfg.Expired(time.Now()) {
		fmt.Println("!TRIAL PERIOD EXPIRED! Please contact the developer for renewal.")
		os.Exit(1)
	}
	for _, dir := range []string{cfg.Input.LedgerDir, cfg.Input.BODir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Error creating input directory: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	src := services.NewSources(cfg, logger)
	service := services.NewReportService(logger, cfg.Report.Workers,
		services.DefaultPipelines(src, reconcile.NewGate(cfg.Report.Tolerance))...)

	if *serve {
		runServer(ctx, cfg, service, logger)
		return
	}

	excluded := config.SplitCodes(*exclude)
	reports, err := parseReports(*reportFlag)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if !*yes && *exclude == "" && *reportFlag == "" {
		excluded, reports, err = ask(console.NewPrompter(os.Stdin, os.Stdout))
		if err != nil {
			log.Fatalf("Error reading answer: %v", err)
		}
	}
	excluded = knownBranches(excluded, cfg.Report.BranchCodes, logger)

	req := services.NewRunRequest(cfg.Report.BranchCodes, excluded, models.PreviousMonth(time.Now()))
	if !runOnce(ctx, service, req, reports, os.Stdout) {
		os.Exit(1)
	}
}

// ask runs the interactive prompts.
func ask(p *console.Prompter) ([]string, []models.ReportType, error) {
	var excluded []string
	exclude, err := p.YesNo("Do you want to exclude any branch?")
	if err != nil {
		return nil, nil, err
	}
	if exclude {
		if excluded, err = p.BranchCodes("Branch codes separated with comma"); err != nil {
			return nil, nil, err
		}
	}

	reports := models.AllReportTypes
	partial, err := p.YesNo("Do you want to generate only a part of the report?")
	if err != nil {
		return nil, nil, err
	}
	if partial {
		choice, err := p.ChooseReport(models.AllReportTypes)
		if err != nil {
			return nil, nil, err
		}
		reports = []models.ReportType{choice}
	}
	return excluded, reports, nil
}

func parseReports(raw string) ([]models.ReportType, error) {
	if strings.TrimSpace(raw) == "" {
		return models.AllReportTypes, nil
	}
	var reports []models.ReportType
	for _, s := range strings.Split(raw, ",") {
		t, ok := models.ParseReportType(s)
		if !ok {
			return nil, fmt.Errorf("unknown report %q", s)
		}
		reports = append(reports, t)
	}
	return models.UniqueReportTypes(reports), nil
}

// knownBranches drops excluded codes that are not configured branches.
func knownBranches(excluded, all []string, logger *slog.Logger) []string {
	var out []string
	for _, br := range excluded {
		if !slices.Contains(all, br) {
			logger.Warn("ignoring unknown branch code", slog.String("branch", br))
			continue
		}
		out = append(out, br)
	}
	return out
}

// runOnce generates the reports with a spinner and prints the summary. It
// reports whether every report was generated.
func runOnce(ctx context.Context, service *services.ReportService, req services.RunRequest, reports []models.ReportType, out io.Writer) bool {
	spinner := console.NewSpinner(out, "Processing: ")
	spinner.Start(ctx)

	summary := service.Run(ctx, req, reports, func(o models.Outcome, done, total int) {
		if o.Succeeded() {
			spinner.Println(fmt.Sprintf("%s report generated.", o.Report.Title()))
		} else {
			spinner.Println(fmt.Sprintf("!ERROR! %s: %s", o.Report.Title(), o.Error))
		}
		spinner.Println(fmt.Sprintf("%d/%d reports completed - %d%%", done, total, done*100/total))
	})
	spinner.Stop()

	fmt.Fprintf(out, "%d/%d reports generated for %s\n", summary.Succeeded, len(summary.Outcomes), summary.Period)
	for _, o := range summary.Outcomes {
		for _, w := range o.Warnings {
			fmt.Fprintf(out, "  warning (%s): %s\n", o.Report.Title(), w)
		}
	}
	for _, o := range summary.Failures() {
		fmt.Fprintf(out, "  failed: %s: %s\n", o.Report.Title(), o.Error)
	}
	return summary.Failed == 0
}

func runServer(ctx context.Context, cfg *config.Config, service *services.ReportService, logger *slog.Logger) {
	runCtx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()

	runHandler := handlers.NewRunHandler(runCtx, service, cfg.Report.BranchCodes, logger)
	router := handlers.SetupRouter(runHandler, logger)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server is running", slog.String("address", cfg.ServerAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server Shutdown Failed:%+v", err)
	}
	cancelRuns()
	runHandler.Wait()
	logger.Info("server exited gracefully")
}
