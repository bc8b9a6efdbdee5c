package filter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trustbyte/phishguard/internal/core"
	"github.com/trustbyte/phishguard/internal/engine"
	"go.uber.org/zap"
)

func newTestHTTPFilter(t *testing.T) *HTTPFilter {
	t.Helper()
	logger := zap.NewNop()
	service := core.NewAnalysisService(engine.NewHeuristic(logger), nil, nil, logger, false, 0, nil)
	return NewHTTPFilter(service, logger, "127.0.0.1:0")
}

func TestHandleAnalyzePhishing(t *testing.T) {
	f := newTestHTTPFilter(t)

	body := `{"subject":"URGENT: Verify Your Account Immediately!","body":"Your account has been SUSPENDED. Click here to verify: http://bit.ly/x or it will be PERMANENTLY CLOSED. Act now!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/email", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report core.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, core.LabelPhishing, report.OverallAssessment.Label)
	assert.Equal(t, core.RiskHigh, report.OverallAssessment.RiskLevel)
	assert.NotEmpty(t, report.RedFlags)
}

func TestHandleAnalyzeSafe(t *testing.T) {
	f := newTestHTTPFilter(t)

	body := `{"subject":"Lunch on Thursday","body":"Shall we grab lunch at noon on Thursday? The usual place works for me."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/email", strings.NewReader(body))
	rec := httptest.NewRecorder()

	f.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report core.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, core.LabelSafe, report.OverallAssessment.Label)
	assert.Empty(t, report.RedFlags)
}

func TestHandleAnalyzeInvalidJSON(t *testing.T) {
	f := newTestHTTPFilter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/email", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	f.handleAnalyze(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleAnalyzeRejectsEmptyInput(t *testing.T) {
	f := newTestHTTPFilter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/email", strings.NewReader(`{"subject":"","body":""}`))
	rec := httptest.NewRecorder()

	f.handleAnalyze(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleAnalyzeSubjectOnly(t *testing.T) {
	f := newTestHTTPFilter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/email", strings.NewReader(`{"subject":"Team offsite agenda","body":""}`))
	rec := httptest.NewRecorder()

	f.handleAnalyze(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report core.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, core.LabelSafe, report.OverallAssessment.Label)
}

func TestHandleHealth(t *testing.T) {
	f := newTestHTTPFilter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	f.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
