package web

import (
	"context"
	"errors"
	"net/http"

	"fjacquet/cultura-csv/internal/logging"
	"fjacquet/cultura-csv/internal/parsererror"
	"fjacquet/cultura-csv/internal/session"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error codes.
const (
	CodeUnknownSource     = "UNKNOWN_SOURCE"
	CodeUnknownRamp       = "UNKNOWN_RAMP"
	CodeWrongKind         = "WRONG_KIND"
	CodeInvalidOption     = "INVALID_OPTION"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeSuperseded        = "SUPERSEDED"
	CodeTimeout           = "TIMEOUT"
	CodeBadRequest        = "BAD_REQUEST"
	CodeNotFound          = "NOT_FOUND"
	CodeInternal          = "INTERNAL"
)

// classify maps an error to its HTTP status and code.
func classify(err error) (int, string) {
	var (
		contractErr   *parsererror.ContractError
		formatErr     *parsererror.InvalidFormatError
		extractionErr *parsererror.DataExtractionError
		sourceErr     *parsererror.SourceError
		areaErr       errAreaNotFound
	)
	switch {
	case errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict, CodeSuperseded
	case errors.Is(err, parsererror.ErrUnknownSource):
		return http.StatusNotFound, CodeUnknownSource
	case errors.Is(err, parsererror.ErrUnknownRamp):
		return http.StatusNotFound, CodeUnknownRamp
	case errors.As(err, &areaErr):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, parsererror.ErrWrongKind):
		return http.StatusBadRequest, CodeWrongKind
	case errors.As(err, &contractErr):
		return http.StatusBadRequest, CodeInvalidOption
	case errors.As(err, &formatErr), errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity, CodeInvalidFormat
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	case errors.As(err, &sourceErr):
		return http.StatusBadGateway, CodeSourceUnavailable
	}
	return http.StatusInternalServerError, CodeInternal
}

// respondError logs err and answers with its classified status.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	fields := []logging.Field{
		{Key: "path", Value: r.URL.Path},
		{Key: logging.FieldStatus, Value: status},
		{Key: "code", Value: code},
		{Key: "request_id", Value: middleware.GetReqID(r.Context())},
	}
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).Error("request error", fields...)
	} else {
		s.logger.WithError(err).Debug("request error", fields...)
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func (s *Server) badRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: CodeBadRequest})
}
