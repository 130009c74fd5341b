package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Pinger проверка зависимости, например хранилища времени запусков
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
	log   *zap.Logger
}

// NewHealthHandler store может быть nil, если хранилище не настроено
func NewHealthHandler(store Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store: store,
		log:   log,
	}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("health check requested",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	response := map[string]string{
		"status": "ok",
		"store":  "disabled",
	}

	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			h.log.Warn("last run store is unavailable", zap.Error(err))
			response["status"] = "degraded"
			response["store"] = "unavailable"
		} else {
			response["store"] = "ok"
		}
	}

	writeJSON(w, response)
}
