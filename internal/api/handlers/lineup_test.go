package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtvision/lineup-service/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRunner struct {
	report  *types.Report
	runErr  error
	lastRun time.Time
}

func (f *fakeRunner) Run(_ context.Context, date time.Time) (*types.Report, error) {
	f.lastRun = date
	return f.report, f.runErr
}

func (f *fakeRunner) RefreshUntouchables(context.Context) (map[string]float64, error) {
	return map[string]float64{"nikola jokic": 88.0}, nil
}

type fakeReports struct {
	report *types.Report
	err    error
}

func (f *fakeReports) GetLatestReport(context.Context) (*types.Report, error) {
	return f.report, f.err
}

type fakeSender struct {
	sent []*types.Report
	err  error
}

func (f *fakeSender) Send(r *types.Report) error {
	f.sent = append(f.sent, r)
	return f.err
}

func doRequest(h *LineupHandler, method, path, body string, register func(*gin.Engine, *LineupHandler)) *httptest.ResponseRecorder {
	router := gin.New()
	register(router, h)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerRun(r *gin.Engine, h *LineupHandler) { r.POST("/run", h.Run) }

func TestRunEndpoint(t *testing.T) {
	runner := &fakeRunner{report: &types.Report{RunID: "run-1"}}
	h := NewLineupHandler(runner, &fakeReports{}, &fakeSender{})

	w := doRequest(h, http.MethodPost, "/run", "", registerRun)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data types.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "run-1", resp.Data.RunID)
}

func TestRunEndpointExplicitDateAndEmail(t *testing.T) {
	runner := &fakeRunner{report: &types.Report{RunID: "run-2"}}
	sender := &fakeSender{}
	h := NewLineupHandler(runner, &fakeReports{}, sender)

	w := doRequest(h, http.MethodPost, "/run", `{"date":"2026-01-15","email":true}`, registerRun)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-01-15", runner.lastRun.Format("2006-01-02"))
	require.Len(t, sender.sent, 1)
}

func TestRunEndpointBadDate(t *testing.T) {
	h := NewLineupHandler(&fakeRunner{}, &fakeReports{}, &fakeSender{})
	w := doRequest(h, http.MethodPost, "/run", `{"date":"Jan 15"}`, registerRun)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunEndpointPipelineFailure(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("roster fetch failed")}
	h := NewLineupHandler(runner, &fakeReports{}, &fakeSender{})
	w := doRequest(h, http.MethodPost, "/run", "", registerRun)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLatestReport(t *testing.T) {
	h := NewLineupHandler(&fakeRunner{}, &fakeReports{report: &types.Report{RunID: "run-3"}}, &fakeSender{})
	w := doRequest(h, http.MethodGet, "/report", "", func(r *gin.Engine, h *LineupHandler) {
		r.GET("/report", h.LatestReport)
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "run-3")
}

func TestLatestReportNotFound(t *testing.T) {
	h := NewLineupHandler(&fakeRunner{}, &fakeReports{}, &fakeSender{})
	w := doRequest(h, http.MethodGet, "/report", "", func(r *gin.Engine, h *LineupHandler) {
		r.GET("/report", h.LatestReport)
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefreshUntouchables(t *testing.T) {
	h := NewLineupHandler(&fakeRunner{}, &fakeReports{}, &fakeSender{})
	w := doRequest(h, http.MethodPost, "/refresh", "", func(r *gin.Engine, h *LineupHandler) {
		r.POST("/refresh", h.RefreshUntouchables)
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "nikola jokic")
}
