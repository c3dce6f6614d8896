package apierr

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/waffle/httputil"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// jsonLog adapts zap to httputil's encode-failure logger.
type jsonLog struct{ l *zap.SugaredLogger }

func (j jsonLog) Error(msg string, args ...any) { j.l.Errorw(msg, args...) }

// UseLogger routes httputil's JSON encoding failures to logger.
func UseLogger(logger *zap.Logger) {
	httputil.SetJSONLogger(jsonLog{l: logger.Sugar()})
}

// Body is the JSON shape of every error response.
type Body = httputil.ErrorResponse

// Responder writes JSON responses and maps handler errors to status codes.
type Responder struct {
	Log *zap.Logger
}

func NewResponder(logger *zap.Logger) *Responder {
	return &Responder{Log: logger}
}

// JSON writes v with the given status.
func (h *Responder) JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

// Write sends an error body with the given status and code.
func (h *Responder) Write(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	httputil.JSONError(w, status, code, message)
}

// HandleError logs err at a level matching its kind and writes the
// corresponding response. Store failures never leak driver detail.
func (h *Responder) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := zap.String("request_id", middleware.GetReqID(r.Context()))

	var (
		validation *ValidationError
		notFound   *NotFoundError
		database   *DatabaseError
	)
	switch {
	case errors.As(err, &validation):
		h.Log.Debug("validation failed", zap.String("error", validation.Message), reqID)
		h.Write(w, r, http.StatusBadRequest, "invalid_input", validation.Message)

	case errors.As(err, &notFound):
		h.Log.Debug("resource not found", zap.String("error", notFound.Message), reqID)
		h.Write(w, r, http.StatusNotFound, "not_found", notFound.Message)

	case errors.As(err, &database):
		h.Log.Error("database error",
			zap.String("operation", database.Operation),
			zap.Error(database.Err),
			reqID)
		h.Write(w, r, http.StatusInternalServerError, "internal_error", "A database error occurred.")

	default:
		h.Log.Error("unexpected error", zap.Error(err), reqID)
		h.Write(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred.")
	}
}

// DecodeJSON reads r's body into v. Unknown fields are ignored. Empty,
// malformed or oversized bodies are ValidationErrors.
func DecodeJSON(r *http.Request, v any) error {
	if err := httputil.BindJSONAllowUnknown(r, v); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON for bodies whose fields are all
// optional: an empty or whitespace-only body leaves v untouched.
func DecodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	b, err := ReadBody(r)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	r.Body = io.NopCloser(bytes.NewReader(b))
	r.ContentLength = int64(len(b))
	return DecodeJSON(r, v)
}

// ReadBody returns r's raw body. An oversized body is a ValidationError.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, NewValidationError("request body is required")
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, NewValidationError("request body too large")
		}
		return nil, NewValidationError("could not read request body")
	}
	return b, nil
}
