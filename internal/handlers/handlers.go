package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	return SendJSONWithStatus(w, http.StatusOK, v)
}

// SendJSONWithStatus writes status and v as JSON. Headers must be set
// before WriteHeader.
func SendJSONWithStatus(w http.ResponseWriter, status int, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return w.Write(payload)
}

func SendJSONOrLog(w http.ResponseWriter,
	logger *slog.Logger,
	v any,
) {
	SendJSONWithStatusOrLog(w, logger, http.StatusOK, v)
}

func SendJSONWithStatusOrLog(
	w http.ResponseWriter,
	logger *slog.Logger,
	status int,
	v any,
) {
	_, err := SendJSONWithStatus(w, status, v)
	if err != nil {
		logger.Error(
			"failed to send data",
			slog.Any("data", v),
			slog.Any("error", err),
		)
	}
}

// SendErrorOrLog writes status and an {"error": ...} body.
func SendErrorOrLog(
	w http.ResponseWriter,
	logger *slog.Logger,
	status int,
	e error,
) {
	_, err := SendJSONWithStatus(w, status, wrapError(e))
	if err != nil {
		logger.Error(
			"failed to send error message",
			slog.Any("sent error", e),
			slog.Any("error", err),
		)
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
