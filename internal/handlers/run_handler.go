package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"iss-report/internal/models"
	"iss-report/internal/services"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
)

// Runner executes report pipelines.
type Runner interface {
	Run(ctx context.Context, req services.RunRequest, reports []models.ReportType, progress services.ProgressFunc) models.RunSummary
}

type RunStatus struct {
	RunID      string              `json:"run_id"`
	Period     string              `json:"period"`
	Status     string              `json:"status"`
	Reports    []models.ReportType `json:"reports"`
	Excluded   []string            `json:"excluded,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
	Summary    *models.RunSummary  `json:"summary,omitempty"`
}

type StartRunRequest struct {
	Exclude []string `json:"exclude" validate:"dive,len=3,numeric"`
	Reports []string `json:"reports"`
}

type RunHandler struct {
	runner   Runner
	branches []string
	baseCtx  context.Context
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	processingMutex sync.Mutex
	activeProcesses map[string]bool
	runs            map[string]RunStatus
	wg              sync.WaitGroup
}

// NewRunHandler serves runs of runner over the configured branches. Runs
// started over HTTP outlive their request and stop when ctx is canceled.
func NewRunHandler(ctx context.Context, runner Runner, branches []string, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		runner:          runner,
		branches:        branches,
		baseCtx:         ctx,
		logger:          logger,
		validate:        validator.New(),
		now:             time.Now,
		activeProcesses: make(map[string]bool),
		runs:            make(map[string]RunStatus),
	}
}

func (h *RunHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	var request StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Branch codes must be three digits")
		return
	}

	reports := models.AllReportTypes
	if len(request.Reports) > 0 {
		reports = nil
		for _, raw := range request.Reports {
			t, ok := models.ParseReportType(raw)
			if !ok {
				respondWithError(w, http.StatusBadRequest, "Unknown report "+raw)
				return
			}
			reports = append(reports, t)
		}
		reports = models.UniqueReportTypes(reports)
	}

	period := models.PreviousMonth(h.now())
	processKey := period.Name()

	h.processingMutex.Lock()
	if h.activeProcesses[processKey] {
		h.processingMutex.Unlock()
		respondWithError(w, http.StatusConflict, models.ErrRunInProgress.Error())
		return
	}
	h.activeProcesses[processKey] = true

	req := services.NewRunRequest(h.branches, request.Exclude, period)
	req.RunID = uuid.NewString()
	status := RunStatus{
		RunID:     req.RunID,
		Period:    processKey,
		Status:    RunStatusRunning,
		Reports:   reports,
		Excluded:  request.Exclude,
		StartedAt: h.now(),
	}
	h.runs[req.RunID] = status
	h.processingMutex.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		summary := h.runner.Run(h.baseCtx, req, reports, nil)

		h.processingMutex.Lock()
		defer h.processingMutex.Unlock()
		finished := h.now()
		final := status
		final.Status = RunStatusCompleted
		final.FinishedAt = &finished
		final.Summary = &summary
		h.runs[req.RunID] = final
		delete(h.activeProcesses, processKey)
	}()

	h.logger.Info("run accepted", slog.String("run_id", req.RunID), slog.String("period", processKey))
	respondWithJSON(w, http.StatusAccepted, status)
}

func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["run_id"]
	if runID == "" {
		respondWithError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	h.processingMutex.Lock()
	status, ok := h.runs[runID]
	h.processingMutex.Unlock()
	if !ok {
		respondWithError(w, http.StatusNotFound, "Run not found")
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// Wait blocks until every run started by the handler has finished.
func (h *RunHandler) Wait() {
	h.wg.Wait()
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
