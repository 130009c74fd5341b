package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/niklvrr/reviewpulse/internal/usecase/service"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleError маппит доменные ошибки на HTTP коды и ErrorResponse
func HandleError(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusOK, ErrorResponse{}
	}

	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		statusCode := mapErrorCodeToHTTPStatus(domainErr.Code)
		message := domainErr.Message
		// Для ошибок клиента отдаем причину целиком
		if statusCode < http.StatusInternalServerError {
			message = domainErr.Error()
		}
		return statusCode, ErrorResponse{
			Error: ErrorDetail{
				Code:    domainErr.Code,
				Message: message,
			},
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: ErrorDetail{
				Code:    "TIMEOUT",
				Message: "tracker did not respond in time",
			},
		}
	}

	// Неизвестная ошибка, в том числе сбой трекера - возвращаем 500
	return http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	}
}

func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound // 404
	case service.CodeInvalidInput, service.CodeInvalidRange:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteError отправляет ErrorResponse клиенту
func WriteError(w http.ResponseWriter, statusCode int, errResp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errResp)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// Поддерживаемые значения ?format=
const (
	formatHTML = "html"
	formatJSON = "json"
	formatText = "text"
)

func requestFormat(r *http.Request, fallback string, allowed ...string) (string, error) {
	format := r.URL.Query().Get("format")
	if format == "" {
		return fallback, nil
	}
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", service.WrapError(service.ErrInvalidInput, errors.New("unsupported format "+format))
}
