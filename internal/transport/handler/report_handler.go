package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/render"
	"github.com/niklvrr/reviewpulse/internal/transport/dto/response"
	"go.uber.org/zap"
)

type ReportService interface {
	Definitions() []domain.ReportDefinition
	Generate(ctx context.Context, name string) (*domain.Report, error)
}

type ReportHandler struct {
	svc ReportService
	log *zap.Logger
}

func NewReportHandler(svc ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		svc: svc,
		log: log,
	}
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	h.log.Info("listReports request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	format, err := requestFormat(r, formatJSON, formatJSON, formatHTML)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	defs := h.svc.Definitions()
	if format == formatHTML {
		writeHTML(w, h.log, func(out io.Writer) error { return render.ReportsHTML(out, defs) })
		return
	}
	writeJSON(w, response.NewReportsResponse(defs))
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.log.Info("getReport request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("report", name),
	)

	format, err := requestFormat(r, formatHTML, formatHTML, formatJSON, formatText)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Вызов сервиса
	report, err := h.svc.Generate(r.Context(), name)
	if err != nil {
		h.log.Error("failed to generate report",
			zap.String("report", name),
			zap.Error(err),
		)
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	h.log.Info("report generated successfully",
		zap.String("report", name),
		zap.Int("sections", len(report.Sections)),
	)

	switch format {
	case formatJSON:
		writeJSON(w, response.NewReportResponse(report))
	case formatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(render.Text(report)))
	default:
		writeHTML(w, h.log, func(out io.Writer) error { return render.HTML(out, report) })
	}
}
