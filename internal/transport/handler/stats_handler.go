package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/niklvrr/reviewpulse/internal/domain"
	"github.com/niklvrr/reviewpulse/internal/render"
	"github.com/niklvrr/reviewpulse/internal/transport/dto/response"
	"github.com/niklvrr/reviewpulse/internal/usecase/service"
	"go.uber.org/zap"
)

type StatsService interface {
	Kinds() []domain.MetricKind
	Retrieve(ctx context.Context, q *service.MetricsQuery) (*domain.MetricsResult, error)
}

type StatsHandler struct {
	svc   StatsService
	teams []string
	log   *zap.Logger
}

func NewStatsHandler(svc StatsService, teams []string, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		svc:   svc,
		teams: teams,
		log:   log,
	}
}

func (h *StatsHandler) ListKinds(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("listKinds request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	writeJSON(w, response.NewStatsResponse(h.svc.Kinds(), h.teams))
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.log.Info("getStats request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
	)

	format, err := requestFormat(r, formatJSON, formatJSON, formatHTML)
	if err != nil {
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	// Парсим параметры запроса в MetricsQuery
	q, err := metricsQuery(r)
	if err != nil {
		h.log.Warn("validation failed", zap.Error(err))
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	result, err := h.svc.Retrieve(r.Context(), q)
	if err != nil {
		h.log.Error("failed to retrieve metrics",
			zap.String("kind", q.Kind),
			zap.Error(err),
		)
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	h.log.Info("metrics retrieved successfully",
		zap.String("kind", q.Kind),
		zap.Int("periods", len(result.Metrics)),
	)

	if format == formatHTML {
		writeHTML(w, h.log, func(out io.Writer) error { return render.MetricsHTML(out, result) })
		return
	}
	writeJSON(w, render.MetricsToJSON(result))
}

func metricsQuery(r *http.Request) (*service.MetricsQuery, error) {
	values := r.URL.Query()
	q := &service.MetricsQuery{
		Kind:     chi.URLParam(r, "kind"),
		Interval: domain.Interval(values.Get("interval")),
		Team:     strings.TrimSpace(values.Get("team")),
		Customer: strings.TrimSpace(values.Get("customer")),
		Projects: splitList(values.Get("projects")),
	}

	if v := values.Get("period_start"); v != "" {
		start, err := service.ParseDate(v)
		if err != nil {
			return nil, err
		}
		q.PeriodStart = start
	}
	if v := values.Get("period_end"); v != "" {
		end, err := service.ParseDate(v)
		if err != nil {
			return nil, err
		}
		q.PeriodEnd = end
	}

	return q, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
