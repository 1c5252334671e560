package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"userapi/internal/adapter/inbound/api"
	inboundservice "userapi/internal/adapter/inbound/service"
	"userapi/internal/adapter/outbound/messaging"
	"userapi/internal/adapter/outbound/repository"
	"userapi/internal/application/common/logging"
	"userapi/internal/application/service"
	"userapi/internal/application/supervisor"
	"userapi/internal/config"
	"userapi/internal/port/outbound"
	"userapi/internal/version"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterShutdownTimeout = 5 * time.Second

// ServiceFactory creates and wires service instances.
type ServiceFactory struct {
	config        *config.Config
	logger        logging.ApplicationLogger
	database      *repository.Database
	meterProvider metric.MeterProvider
	registerClose func(name string, closer io.Closer)
	onPanic       func(any)
}

// NewServiceFactory creates a new ServiceFactory. registerClose receives every resource
// opened while building the server.
func NewServiceFactory(
	cfg *config.Config,
	logger logging.ApplicationLogger,
	meterProvider metric.MeterProvider,
	registerClose func(name string, closer io.Closer),
) *ServiceFactory {
	if registerClose == nil {
		registerClose = func(string, io.Closer) {}
	}
	return &ServiceFactory{
		config:        cfg,
		logger:        logger,
		database:      repository.NewDatabase(databaseConfig(cfg)),
		meterProvider: meterProvider,
		registerClose: registerClose,
	}
}

// SetPanicHandler receives panics raised on goroutines owned by client libraries.
func (sf *ServiceFactory) SetPanicHandler(fn func(any)) {
	sf.onPanic = fn
}

// Database returns the storage connection owned by the process.
func (sf *ServiceFactory) Database() *repository.Database {
	return sf.database
}

// CreateEventPublisher returns the NATS publisher when enabled, the log publisher otherwise.
// The health view is nil when NATS is disabled.
func (sf *ServiceFactory) CreateEventPublisher() (outbound.EventPublisher, outbound.EventPublisherHealth, error) {
	if !sf.config.NATS.Enabled {
		return messaging.LogEventPublisher{}, nil, nil
	}

	publisher, err := messaging.NewNATSEventPublisher(sf.config.NATS)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid NATS configuration: %w", err)
	}
	publisher.SetPanicHandler(sf.onPanic)
	if err := publisher.Connect(); err != nil {
		return nil, nil, err
	}
	sf.registerClose("nats", publisher)
	return publisher, publisher, nil
}

// CreateServer builds the API server. The database must already be connected.
func (sf *ServiceFactory) CreateServer(_ context.Context) (supervisor.Server, error) {
	pool, err := sf.database.Pool()
	if err != nil {
		return nil, err
	}

	publisher, eventsHealth, err := sf.CreateEventPublisher()
	if err != nil {
		return nil, err
	}

	userService := service.NewUserService(
		repository.NewPostgreSQLUserRepository(pool),
		repository.NewPostgreSQLPostRepository(pool),
		publisher,
	)
	healthService := inboundservice.NewHealthServiceAdapter(sf.database, eventsHealth, version.Get().Version)

	errorMetrics, err := api.NewErrorMetricsWithProvider(sf.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create error metrics: %w", err)
	}

	server, err := api.NewServerBuilder(sf.config.API).
		WithHealthService(healthService).
		WithUserService(userService).
		WithErrorHandler(api.NewDefaultErrorHandler(sf.config.Environment(), sf.logger, errorMetrics)).
		WithLogger(sf.logger).
		WithDefaultMiddleware().
		Build()
	if err != nil {
		return nil, err
	}
	return server, nil
}

func databaseConfig(c *config.Config) repository.DatabaseConfig {
	return repository.DatabaseConfig{
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		Database:       c.Database.Name,
		Username:       c.Database.User,
		Password:       c.Database.Password,
		Schema:         c.Database.Schema,
		MaxConnections: c.Database.MaxConnections,
		MinConnections: c.Database.MinConnections,
		ConnectTimeout: c.Database.ConnectTimeout,
		SSLMode:        c.Database.SSLMode,
	}
}

// newMeterProvider creates the process meter provider and installs it globally.
func newMeterProvider(c *config.Config) (*sdkmetric.MeterProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", c.App.Name),
			attribute.String("service.version", version.Get().Version),
			attribute.String("deployment.environment", string(c.Environment())),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewManualReader()),
	)
	otel.SetMeterProvider(provider)
	return provider, nil
}

// closerFunc adapts a function to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newAPISupervisor wires the supervisor around the storage connection and the server.
func newAPISupervisor(c *config.Config, logger logging.ApplicationLogger) (*supervisor.Supervisor, error) {
	provider, err := newMeterProvider(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}

	var sup *supervisor.Supervisor
	factory := NewServiceFactory(c, logger, provider, func(name string, closer io.Closer) {
		sup.RegisterCloser(name, closer)
	})

	sup, err = supervisor.New(supervisor.Config{
		Store:         factory.Database(),
		NewServer:     factory.CreateServer,
		Logger:        logger,
		DrainTimeout:  c.API.ShutdownTimeout,
		MeterProvider: provider,
	})
	if err != nil {
		return nil, err
	}
	factory.SetPanicHandler(sup.Fatal)

	sup.RegisterCloser("metrics", closerFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), meterShutdownTimeout)
		defer cancel()
		return provider.Shutdown(ctx)
	}))
	return sup, nil
}

// newAPICmd creates the api command.
func newAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Start the API server",
		Long: `Start the HTTP API server.

The database connection is established before the listener opens. SIGTERM or SIGINT
drains in-flight requests, then releases the database and NATS connections.
The process exits with status 1 on any failure nothing else handled.`,
		Run: func(cmd *cobra.Command, _ []string) {
			runAPI(cmd.Context())
		},
	}
}

func runAPI(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	c := GetConfig()
	logger, err := newLogger(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(supervisor.ExitFailure)
	}

	sup, err := newAPISupervisor(c, logger)
	if err != nil {
		logger.ErrorWithError(ctx, err, supervisor.MsgStartupFailed, nil)
		os.Exit(supervisor.ExitFailure)
	}
	defer sup.CatchUncaught()

	logger.Info(ctx, "Starting API server", logging.Fields{
		"address":     c.API.Address(),
		"environment": string(c.Environment()),
		"config":      c.Redacted().API,
	})
	sup.Main(ctx)
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	rootCmd.AddCommand(newAPICmd())
}
