package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/transport/dto/response"
	"github.com/niklvrr/reviewpulse/internal/usecase/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Definitions() []domain.ReportDefinition {
	args := m.Called()
	return args.Get(0).([]domain.ReportDefinition)
}

func (m *MockReportService) Generate(ctx context.Context, name string) (*domain.Report, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func reportsRouter(h *ReportHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/reports", h.ListReports)
	r.Get("/reports/{name}", h.GetReport)
	return r
}

func sampleReport() *domain.Report {
	return &domain.Report{
		Name:        "team-review",
		Kind:        domain.ReportKindRevisionStatus,
		Title:       "Revision Status",
		Timeline:    "modified since May 01, 2024",
		GeneratedAt: time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC),
		Sections: []domain.Section{{
			Key:      domain.BucketAccepted,
			Label:    "1 Diff is accepted and ready to land",
			Order:    domain.OrderOldestFirst,
			Severity: domain.SeverityGood,
			Revisions: []domain.RevisionEntry{{
				Revision: domain.Revision{Id: 9, Title: "Ship it", Status: "accepted"},
				URL:      "https://tracker/D9",
				Author:   domain.PersonRef{PHID: "PHID-USER-a", Name: "alice"},
				RepoSlug: "api",
				Acceptors: []domain.PersonRef{
					{PHID: "PHID-USER-b", Name: "bob"},
					{PHID: "PHID-USER-c", Name: "carol"},
				},
			}},
		}},
	}
}

func TestReportHandler_ListReports(t *testing.T) {
	mockService := new(MockReportService)
	handler := NewReportHandler(mockService, zap.NewNop())
	mockService.On("Definitions").Return([]domain.ReportDefinition{
		{Name: "team-review", Kind: domain.ReportKindRevisionStatus, SinceLastRun: true},
	})

	w := httptest.NewRecorder()
	reportsRouter(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var result response.ReportsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "RevisionStatus", result.Reports[0].Type)
	assert.Equal(t, "/reports/team-review", result.Reports[0].URL)
	assert.True(t, result.Reports[0].SinceLastRun)
}

func TestReportHandler_GetReport_JSON(t *testing.T) {
	mockService := new(MockReportService)
	handler := NewReportHandler(mockService, zap.NewNop())
	mockService.On("Generate", mock.Anything, "team-review").Return(sampleReport(), nil)

	w := httptest.NewRecorder()
	reportsRouter(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/team-review?format=json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var result response.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "Revision Status", result.Title)
	require.Len(t, result.Sections, 1)
	section := result.Sections[0]
	assert.Equal(t, "accepted", section.Key)
	assert.Equal(t, 1, section.Count)
	assert.Equal(t, "oldest first", section.Order)
	require.Len(t, section.Revisions, 1)
	assert.Equal(t, "D9", section.Revisions[0].Id)
	assert.Len(t, section.Revisions[0].Acceptors, 2)
	assert.Empty(t, section.Revisions[0].Blockers)
	mockService.AssertExpectations(t)
}

func TestReportHandler_GetReport_DefaultHTML(t *testing.T) {
	mockService := new(MockReportService)
	handler := NewReportHandler(mockService, zap.NewNop())
	mockService.On("Generate", mock.Anything, "team-review").Return(sampleReport(), nil)

	w := httptest.NewRecorder()
	reportsRouter(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/team-review", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "1 Diff is accepted and ready to land")
}

func TestReportHandler_GetReport_Text(t *testing.T) {
	mockService := new(MockReportService)
	handler := NewReportHandler(mockService, zap.NewNop())
	mockService.On("Generate", mock.Anything, "team-review").Return(sampleReport(), nil)

	w := httptest.NewRecorder()
	reportsRouter(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/team-review?format=text", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "[D9](https://tracker/D9)")
}

func TestReportHandler_GetReport_NotFound(t *testing.T) {
	mockService := new(MockReportService)
	handler := NewReportHandler(mockService, zap.NewNop())
	mockService.On("Generate", mock.Anything, "ghost").Return(nil, service.ErrReportNotFound)

	w := httptest.NewRecorder()
	reportsRouter(handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var result ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, service.CodeNotFound, result.Error.Code)
	assert.Equal(t, "report not found", result.Error.Message)
}
