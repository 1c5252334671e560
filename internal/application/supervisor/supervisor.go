// Package supervisor owns the process lifecycle: it connects storage before the listener opens,
// stops on termination signals and exits on failures nothing else handled.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"userapi/internal/application/common/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Log messages for each lifecycle event.
const (
	MsgUncaught      = "UNCAUGHT EXCEPTION! Shutting down..."
	MsgRejection     = "UNHANDLED REJECTION! Shutting down..."
	MsgSigterm       = "SIGTERM received. Shutting down gracefully..."
	MsgTerminated    = "Process terminated"
	MsgStartupFailed = "Failed to start server"
)

const defaultDrainTimeout = 30 * time.Second

// Store is the storage connection the process owns.
type Store interface {
	Connect(ctx context.Context) error
	Close() error
}

// Server is the listening socket.
type Server interface {
	Start(ctx context.Context) error
	// Err delivers a failure of the serve loop after Start returned.
	Err() <-chan error
	Shutdown(ctx context.Context) error
	Close() error
}

// ServerFactory builds the server once storage is connected.
type ServerFactory func(ctx context.Context) (Server, error)

// Config holds the collaborators of a Supervisor.
type Config struct {
	Store     Store
	NewServer ServerFactory
	Logger    logging.ApplicationLogger
	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
	// Signals replaces the SIGTERM/SIGINT subscription when set.
	Signals       <-chan os.Signal
	DrainTimeout  time.Duration
	MeterProvider metric.MeterProvider
}

type rejection struct {
	task string
	err  error
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// Supervisor reacts to fatal conditions at the process level.
type Supervisor struct {
	store        Store
	newServer    ServerFactory
	logger       logging.ApplicationLogger
	exit         func(int)
	signals      <-chan os.Signal
	drainTimeout time.Duration
	metrics      *fatalMetrics

	ctx        context.Context
	cancel     context.CancelFunc
	rejections chan rejection

	mu      sync.Mutex
	closers []namedCloser
}

// New creates a Supervisor.
func New(config Config) (*Supervisor, error) {
	if config.Store == nil {
		return nil, errors.New("store is required")
	}
	if config.NewServer == nil {
		return nil, errors.New("server factory is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	exit := config.Exit
	if exit == nil {
		exit = os.Exit
	}
	drainTimeout := config.DrainTimeout
	if drainTimeout <= 0 {
		drainTimeout = defaultDrainTimeout
	}
	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	metrics, err := newFatalMetrics(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create supervisor metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		store:        config.Store,
		newServer:    config.NewServer,
		logger:       logger.WithComponent("supervisor"),
		exit:         exit,
		signals:      config.Signals,
		drainTimeout: drainTimeout,
		metrics:      metrics,
		ctx:          ctx,
		cancel:       cancel,
		rejections:   make(chan rejection, 1),
	}, nil
}

// RegisterCloser adds a resource released together with the store on graceful termination.
func (s *Supervisor) RegisterCloser(name string, closer io.Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, namedCloser{name: name, closer: closer})
}

// CatchUncaught must be deferred directly. A recovered panic is logged and the process
// exits with ExitFailure at once, without releasing anything.
func (s *Supervisor) CatchUncaught() {
	v := recover()
	if v == nil {
		return
	}
	s.Fatal(v)
}

// Fatal handles a panic value recovered on a goroutine the supervisor did not start, such
// as a client library callback. It logs the value and exits with ExitFailure at once.
func (s *Supervisor) Fatal(v any) {
	s.logger.Error(context.Background(), MsgUncaught, logging.Fields{
		"panic": fmt.Sprint(v),
		"stack": string(debug.Stack()),
	})
	s.metrics.recordFatal(context.Background(), reasonUncaught)
	s.exit(ExitFailure)
}

// Go runs fn in the background. An error fn returns is unhandled by definition and
// shuts the process down with ExitFailure.
func (s *Supervisor) Go(name string, fn func(ctx context.Context) error) {
	go func() {
		defer s.CatchUncaught()
		if err := fn(s.ctx); err != nil {
			s.reject(name, err)
		}
	}()
}

func (s *Supervisor) reject(task string, err error) {
	select {
	case s.rejections <- rejection{task: task, err: err}:
	default:
		// Shutdown already triggered by an earlier rejection.
		s.logger.ErrorWithError(context.Background(), err, "Background task failed during shutdown",
			logging.Fields{"task": task})
	}
}

// Main runs the process and exits with the resulting code.
func (s *Supervisor) Main(ctx context.Context) {
	s.exit(s.Run(ctx))
}

// Run connects storage, starts the server and blocks until a termination signal, a
// rejection or ctx cancellation. It returns the process exit code.
func (s *Supervisor) Run(ctx context.Context) int {
	defer s.cancel()

	signals := s.signals
	if signals == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(ch)
		signals = ch
	}

	server, err := s.start(ctx)
	if err != nil {
		s.logger.ErrorWithError(ctx, err, MsgStartupFailed, nil)
		s.metrics.recordFatal(ctx, reasonStartup)
		s.releaseResources(ctx)
		return ExitFailure
	}

	s.Go("http-server", func(taskCtx context.Context) error {
		select {
		case err := <-server.Err():
			return fmt.Errorf("http server stopped: %w", err)
		case <-taskCtx.Done():
			return nil
		}
	})

	select {
	case sig := <-signals:
		s.logger.Info(ctx, MsgSigterm, logging.Fields{"signal": sig.String()})
		return s.terminate(ctx, server)
	case <-ctx.Done():
		s.logger.Info(context.Background(), "Shutdown requested, shutting down gracefully...", nil)
		return s.terminate(context.Background(), server)
	case rej := <-s.rejections:
		s.logger.ErrorWithError(ctx, rej.err, MsgRejection, logging.Fields{"task": rej.task})
		s.metrics.recordFatal(ctx, reasonRejection)
		s.drain(ctx, server)
		return ExitFailure
	}
}

// start connects the store before the listener is ever opened.
func (s *Supervisor) start(ctx context.Context) (Server, error) {
	if err := s.store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect storage: %w", err)
	}
	server, err := s.newServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("build server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("start server: %w", err)
	}
	s.logger.Info(ctx, "Server started", nil)
	return server, nil
}

func (s *Supervisor) terminate(ctx context.Context, server Server) int {
	s.drain(ctx, server)
	s.releaseResources(ctx)
	s.logger.Info(ctx, MsgTerminated, nil)
	return ExitOK
}

// drain stops accepting connections and waits for in-flight requests. Requests still
// running after the drain timeout are cut off.
func (s *Supervisor) drain(ctx context.Context, server Server) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.drainTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		s.logger.ErrorWithError(ctx, err, "Graceful shutdown failed, closing connections", nil)
		if closeErr := server.Close(); closeErr != nil {
			s.logger.ErrorWithError(ctx, closeErr, "Failed to close server", nil)
		}
	}
}

// releaseResources closes registered closers in reverse order, then the store.
func (s *Supervisor) releaseResources(ctx context.Context) {
	s.mu.Lock()
	closers := append([]namedCloser(nil), s.closers...)
	s.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].closer.Close(); err != nil {
			s.logger.ErrorWithError(ctx, err, "Failed to release resource", logging.Fields{"resource": closers[i].name})
		}
	}
	if err := s.store.Close(); err != nil {
		s.logger.ErrorWithError(ctx, err, "Failed to release storage connection", nil)
	}
}
