package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"overcooked-pos/pos-svc/internal/domain"

	"go.uber.org/zap"
)

type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

var statusByKind = map[domain.Kind]int{
	domain.KindValidation: http.StatusBadRequest,
	domain.KindNotFound:   http.StatusNotFound,
	domain.KindConflict:   http.StatusConflict,
	domain.KindForbidden:  http.StatusForbidden,
	domain.KindInternal:   http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an engine error to its status. Internal causes are logged
// and never sent to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		de = domain.Internal(err, "internal error")
	}
	status := statusByKind[de.Kind]
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: de.Code, Message: de.Message, Details: de.Details}
	if de.Kind == domain.KindInternal {
		h.Logger.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		body = errorBody{Error: domain.CodeInternal, Message: "internal error"}
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return domain.Validation("malformed request body: %v", err)
	}
	return nil
}
