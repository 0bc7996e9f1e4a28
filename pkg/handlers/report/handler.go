package report

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/de-tools/cloud-optimizer/pkg/models/domain"
	"github.com/de-tools/cloud-optimizer/pkg/services/optimizer"
	"github.com/rs/zerolog"
)

type Handler struct {
	cfg    domain.Config
	driver *optimizer.Driver
}

func NewHandler(cfg domain.Config, driver *optimizer.Driver) *Handler {
	return &Handler{cfg: cfg, driver: driver}
}

func (h *Handler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	rep := h.driver.LastReport()
	if rep == nil {
		http.Error(w, "no report generated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		logger.Error().Err(err).Msg("failed to encode report")
	}
}

func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if h.driver.Busy() {
		http.Error(w, "a run is already in progress", http.StatusConflict)
		return
	}

	// The run outlives the request; detach it from the request's cancelation.
	runCtx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := h.driver.RunOnce(runCtx); err != nil {
			logger.Error().Err(err).Msg("triggered run failed")
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	status := struct {
		Busy          bool   `json:"busy"`
		LastRun       string `json:"last_run,omitempty"`
		AWSEnabled    bool   `json:"aws_enabled"`
		AzureEnabled  bool   `json:"azure_enabled"`
		GCPEnabled    bool   `json:"gcp_enabled"`
		AutoOptimize  bool   `json:"auto_optimize"`
		IntervalHours int    `json:"run_interval_hours"`
	}{
		Busy:          h.driver.Busy(),
		AWSEnabled:    h.cfg.AWSEnabled,
		AzureEnabled:  h.cfg.AzureEnabled,
		GCPEnabled:    h.cfg.GCPEnabled,
		AutoOptimize:  h.cfg.AutoOptimize,
		IntervalHours: h.cfg.RunIntervalHours,
	}
	if rep := h.driver.LastReport(); rep != nil {
		status.LastRun = rep.Timestamp
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logger.Error().Err(err).Msg("failed to encode status")
	}
}
