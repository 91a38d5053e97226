package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/courtvision/lineup-service/internal/types"
	"github.com/courtvision/lineup-service/internal/utils"
	"github.com/courtvision/lineup-service/pkg/logger"
)

// Runner is the pipeline surface the HTTP layer drives.
type Runner interface {
	Run(ctx context.Context, date time.Time) (*types.Report, error)
	RefreshUntouchables(ctx context.Context) (map[string]float64, error)
}

// ReportReader fetches the last persisted run.
type ReportReader interface {
	GetLatestReport(ctx context.Context) (*types.Report, error)
}

// Sender delivers a finished report.
type Sender interface {
	Send(r *types.Report) error
}

// LineupHandler handles run-trigger and report endpoints
type LineupHandler struct {
	pipeline Runner
	reports  ReportReader
	mailer   Sender
	logger   *logrus.Entry
}

// RunRequest is the optional body for a manual run trigger.
type RunRequest struct {
	Date  string `json:"date,omitempty"`
	Email bool   `json:"email,omitempty"`
}

// NewLineupHandler creates the lineup handler.
func NewLineupHandler(pipeline Runner, reports ReportReader, mailer Sender) *LineupHandler {
	return &LineupHandler{
		pipeline: pipeline,
		reports:  reports,
		mailer:   mailer,
		logger:   logger.WithComponent("lineup_handler"),
	}
}

// Run triggers a pipeline run for today or an explicit date and returns
// the full report. With "email": true the report is also delivered.
func (h *LineupHandler) Run(c *gin.Context) {
	var req RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.SendBadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	report, err := h.pipeline.Run(c.Request.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Manual lineup run failed")
		utils.SendServiceUnavailable(c, "lineup run failed: "+err.Error())
		return
	}

	if req.Email {
		if err := h.mailer.Send(report); err != nil {
			h.logger.WithError(err).WithField("run_id", report.RunID).Error("Report delivery failed")
			utils.SendSuccessWithMessage(c, report, "run complete, email delivery failed")
			return
		}
	}

	utils.SendSuccess(c, report)
}

// LatestReport returns the most recent persisted run.
func (h *LineupHandler) LatestReport(c *gin.Context) {
	report, err := h.reports.GetLatestReport(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, "failed to load latest report: "+err.Error())
		return
	}
	if report == nil {
		utils.SendNotFound(c, "no runs recorded yet")
		return
	}
	utils.SendSuccess(c, report)
}

// RefreshUntouchables rebuilds the protected-player list on demand.
func (h *LineupHandler) RefreshUntouchables(c *gin.Context) {
	untouchables, err := h.pipeline.RefreshUntouchables(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Manual untouchables refresh failed")
		utils.SendServiceUnavailable(c, "untouchables refresh failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, untouchables)
}
