package transport

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/niklvrr/reviewpulse/internal/transport/handler"
	transportMiddleware "github.com/niklvrr/reviewpulse/internal/transport/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Отчеты собираются из нескольких запросов к трекеру
const DefaultRequestTimeout = 60 * time.Second

func NewRouter(
	reportHandler *handler.ReportHandler,
	statsHandler *handler.StatsHandler,
	healthHandler *handler.HealthHandler,
	requestTimeout time.Duration,
	log *zap.Logger,
) *chi.Mux {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	router := chi.NewRouter()

	// Recovery должен быть первым для обработки паник во всех middleware
	router.Use(transportMiddleware.Recovery(log))

	// RequestID для трейсинга запросов
	router.Use(middleware.RequestID)

	router.Use(transportMiddleware.Logging(log))

	router.Use(transportMiddleware.Timeout(requestTimeout, log))

	router.Use(transportMiddleware.Metrics)

	// Эндпоинт для Prometheus метрик
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/reports", func(r chi.Router) {
		r.Get("/", reportHandler.ListReports)
		r.Get("/{name}", reportHandler.GetReport)
	})

	router.Route("/stats", func(r chi.Router) {
		r.Get("/", statsHandler.ListKinds)
		r.Get("/{kind}", statsHandler.GetStats)
	})

	router.Get("/health", healthHandler.HealthCheck)
	return router
}
