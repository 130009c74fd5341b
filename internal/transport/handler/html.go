package handler

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// writeHTML рендерит страницу в буфер, чтобы ошибка шаблона не оставила полуотданный ответ
func writeHTML(w http.ResponseWriter, log *zap.Logger, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		log.Error("failed to render html", zap.Error(err))
		statusCode, errResp := HandleError(err)
		WriteError(w, statusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
