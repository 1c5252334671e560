// Package api provides the HTTP surface: handlers run inside a Boundary that forwards every
// failure to one ErrorHandler, which renders it according to the deployment mode.
package api

import (
	"net/http"

	"userapi/internal/application/common/logging"
	"userapi/internal/application/errortranslation"
	"userapi/internal/config"
	"userapi/internal/domain/errors/domain"
)

// GenericErrorMessage is the only message production clients see for a defect.
const GenericErrorMessage = "Something went wrong!"

// ErrorHandler renders a failure as the single response to a request.
type ErrorHandler interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultErrorHandler implements ErrorHandler.
type DefaultErrorHandler struct {
	environment config.Environment
	logger      logging.ApplicationLogger
	metrics     *ErrorMetrics
}

// NewDefaultErrorHandler creates a DefaultErrorHandler. The environment is fixed for the
// handler's lifetime. metrics may be nil.
func NewDefaultErrorHandler(
	environment config.Environment,
	logger logging.ApplicationLogger,
	metrics *ErrorMetrics,
) *DefaultErrorHandler {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &DefaultErrorHandler{
		environment: environment,
		logger:      logger.WithComponent("error-handler"),
		metrics:     metrics,
	}
}

// Normalize classifies any error as an AppError. AppErrors pass through, storage failures
// are translated, everything else becomes a non-operational 500.
func Normalize(err error) *domain.AppError {
	if appErr, ok := domain.AsAppError(err); ok {
		return appErr
	}
	if appErr, ok := errortranslation.TranslateError(err); ok {
		return appErr
	}
	return domain.Internal(err)
}

type errorDetail struct {
	Message       string `json:"message"`
	StatusCode    int    `json:"statusCode"`
	Status        string `json:"status"`
	IsOperational bool   `json:"isOperational"`
	Cause         string `json:"cause,omitempty"`
}

type developmentErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   errorDetail `json:"error"`
	Stack   string      `json:"stack"`
}

type productionErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleError writes the failure response and logs the failure once.
func (h *DefaultErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := Normalize(err)

	if requestID := logging.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}

	var (
		statusCode int
		body       interface{}
	)
	if h.environment.IsDevelopment() {
		statusCode, body = appErr.StatusCode(), h.developmentResponse(appErr, err)
	} else {
		statusCode, body = productionResponse(appErr)
	}

	h.logError(r, appErr, err, statusCode)
	h.metrics.RecordErrorResponse(r.Context(), appErr, statusCode, string(h.environment))

	if writeErr := WriteJSON(w, statusCode, body); writeErr != nil {
		h.logger.ErrorWithError(r.Context(), writeErr, "Failed to encode error response", nil)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error"))
	}
}

func (h *DefaultErrorHandler) developmentResponse(appErr *domain.AppError, original error) developmentErrorResponse {
	detail := errorDetail{
		Message:       appErr.Message(),
		StatusCode:    appErr.StatusCode(),
		Status:        appErr.Status(),
		IsOperational: appErr.IsOperational(),
	}
	if cause := appErr.Cause(); cause != nil {
		detail.Cause = cause.Error()
	}

	stack := appErr.StackTrace()
	if panicErr, ok := AsPanicError(original); ok {
		stack = panicErr.Error() + "\n" + string(panicErr.Stack)
	}

	return developmentErrorResponse{
		Status:  appErr.Status(),
		Message: appErr.Message(),
		Error:   detail,
		Stack:   stack,
	}
}

func productionResponse(appErr *domain.AppError) (int, productionErrorResponse) {
	if appErr.IsOperational() {
		return appErr.StatusCode(), productionErrorResponse{Status: appErr.Status(), Message: appErr.Message()}
	}
	return http.StatusInternalServerError, productionErrorResponse{
		Status:  domain.StatusError,
		Message: GenericErrorMessage,
	}
}

func (h *DefaultErrorHandler) logError(r *http.Request, appErr *domain.AppError, original error, statusCode int) {
	fields := logging.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"operational": appErr.IsOperational(),
	}

	switch {
	case !appErr.IsOperational():
		if panicErr, ok := AsPanicError(original); ok {
			fields["stack"] = string(panicErr.Stack)
		}
		h.logger.ErrorWithError(r.Context(), original, "Unexpected failure", fields)
	case appErr.StatusCode() >= http.StatusInternalServerError:
		h.logger.Warn(r.Context(), appErr.Error(), fields)
	default:
		h.logger.Info(r.Context(), appErr.Message(), fields)
	}
}
