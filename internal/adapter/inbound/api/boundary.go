package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"userapi/internal/application/common/logging"

	"golang.org/x/sync/errgroup"
)

// HandlerFunc is a request handler that reports failure by returning it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// PanicError carries a value recovered from a panicking handler or task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Boundary adapts HandlerFuncs to http.Handler. Every failure, returned or panicked, is
// forwarded to the single ErrorHandler exactly once.
type Boundary struct {
	errorHandler ErrorHandler
	logger       logging.ApplicationLogger
}

// NewBoundary creates a Boundary forwarding to errorHandler.
func NewBoundary(errorHandler ErrorHandler, logger logging.ApplicationLogger) *Boundary {
	if errorHandler == nil {
		panic("errorHandler cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Boundary{errorHandler: errorHandler, logger: logger.WithComponent("api-boundary")}
}

// Wrap returns an http.Handler running h.
func (b *Boundary) Wrap(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &trackingResponseWriter{ResponseWriter: w}

		err := runRecovering(func() error { return h(tw, r) })
		if err == nil {
			return
		}

		if tw.committed {
			b.logger.ErrorWithError(r.Context(), err, "Handler failed after the response was committed", logging.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": tw.status,
			})
			return
		}

		b.errorHandler.HandleError(w, r, err)
	})
}

// Group returns a task group whose failures, including panics, are joined by Wait.
// The derived context is cancelled on the first failure.
func (b *Boundary) Group(ctx context.Context) (*TaskGroup, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	return &TaskGroup{group: g}, gctx
}

// TaskGroup runs concurrent work for one request.
type TaskGroup struct {
	group *errgroup.Group
}

// Go runs fn in a new goroutine.
func (t *TaskGroup) Go(fn func() error) {
	t.group.Go(func() error { return runRecovering(fn) })
}

// Wait blocks until every task finished and returns the first failure.
func (t *TaskGroup) Wait() error {
	return t.group.Wait()
}

func runRecovering(fn func() error) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
				panic(v)
			}
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// AsPanicError finds a PanicError in err's chain.
func AsPanicError(err error) (*PanicError, bool) {
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return panicErr, true
	}
	return nil, false
}

// trackingResponseWriter records whether the handler already started a response.
type trackingResponseWriter struct {
	http.ResponseWriter
	committed bool
	status    int
}

func (tw *trackingResponseWriter) WriteHeader(code int) {
	if !tw.committed {
		tw.committed = true
		tw.status = code
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackingResponseWriter) Write(p []byte) (int, error) {
	if !tw.committed {
		tw.committed = true
		tw.status = http.StatusOK
	}
	return tw.ResponseWriter.Write(p)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (tw *trackingResponseWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
