// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/order-guard/internal/config"
	"github.com/allisson/order-guard/internal/database"
	"github.com/allisson/order-guard/internal/fulfillment"
	guardhttp "github.com/allisson/order-guard/internal/guard/http"
	"github.com/allisson/order-guard/internal/guard/repository"
	"github.com/allisson/order-guard/internal/guard/service"
	"github.com/allisson/order-guard/internal/guard/usecase"
	"github.com/allisson/order-guard/internal/http"
	"github.com/allisson/order-guard/internal/metrics"
	"github.com/allisson/order-guard/internal/notification"
	"github.com/allisson/order-guard/internal/worker"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config  *config.Config
	version string

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Repositories
	eventRepo usecase.OrderEventRepository

	// Clients
	fulfillmentGateway usecase.FulfillmentGateway
	notifier           usecase.Notifier

	// Use Cases
	orderProcessor     usecase.UseCase
	maintenanceUseCase usecase.MaintenanceUseCase

	// Servers and Workers
	dispatcher    *worker.Dispatcher
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	eventRepoInit       sync.Once
	gatewayInit         sync.Once
	notifierInit        sync.Once
	orderProcessorInit  sync.Once
	maintenanceInit     sync.Once
	dispatcherInit      sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config, version string) *Container {
	return &Container{
		config:     cfg,
		version:    version,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. When metrics are
// disabled a no-op implementation is returned.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// OrderEventRepository returns the order event repository instance.
func (c *Container) OrderEventRepository() (usecase.OrderEventRepository, error) {
	c.eventRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["eventRepo"] = fmt.Errorf("failed to get database for event repository: %w", err)
			return
		}

		// Select the appropriate repository based on the database driver
		switch c.config.DBDriver {
		case "mysql":
			c.eventRepo = repository.NewMySQLOrderEventRepository(db)
		case "postgres":
			c.eventRepo = repository.NewPostgreSQLOrderEventRepository(db)
		default:
			c.initErrors["eventRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["eventRepo"]; exists {
		return nil, storedErr
	}
	return c.eventRepo, nil
}

// FulfillmentGateway returns the Printful API client.
func (c *Container) FulfillmentGateway() (usecase.FulfillmentGateway, error) {
	c.gatewayInit.Do(func() {
		c.fulfillmentGateway = fulfillment.NewClient(fulfillment.Config{
			APIURL:         c.config.PrintfulAPIURL,
			APIKey:         c.config.PrintfulAPIKey,
			Timeout:        c.config.PrintfulTimeout,
			RequestsPerSec: c.config.PrintfulRequestsPerSec,
			Burst:          c.config.PrintfulBurst,
		}, c.Logger())
	})
	return c.fulfillmentGateway, nil
}

// Notifier returns the Telegram notification client.
func (c *Container) Notifier() (usecase.Notifier, error) {
	c.notifierInit.Do(func() {
		c.notifier = notification.NewTelegramClient(notification.Config{
			APIURL:   c.config.TelegramAPIURL,
			BotToken: c.config.TelegramBotToken,
			ChatID:   c.config.TelegramChatID,
			Timeout:  c.config.TelegramTimeout,
		}, c.Logger())
	})
	return c.notifier, nil
}

// OrderProcessor returns the order processing use case, wrapped with metrics.
func (c *Container) OrderProcessor() (usecase.UseCase, error) {
	c.orderProcessorInit.Do(func() {
		eventRepo, err := c.OrderEventRepository()
		if err != nil {
			c.initErrors["orderProcessor"] = fmt.Errorf("failed to get event repository for order processor: %w", err)
			return
		}

		gateway, err := c.FulfillmentGateway()
		if err != nil {
			c.initErrors["orderProcessor"] = fmt.Errorf("failed to get fulfillment gateway for order processor: %w", err)
			return
		}

		notifier, err := c.Notifier()
		if err != nil {
			c.initErrors["orderProcessor"] = fmt.Errorf("failed to get notifier for order processor: %w", err)
			return
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["orderProcessor"] = fmt.Errorf("failed to get business metrics for order processor: %w", err)
			return
		}

		processor := usecase.NewOrderProcessor(
			usecase.Config{
				Limits: service.Limits{
					MaxProductionCost: c.config.OrderMaxProductionCost,
					MaxItemQty:        c.config.OrderMaxItemQty,
					MaxHourlyVelocity: c.config.OrderMaxHourlyVelocity,
				},
				VelocityWindow: c.config.VelocityWindow,
			},
			service.NewRuleEngine(),
			eventRepo,
			gateway,
			notifier,
			c.Logger(),
		)

		c.orderProcessor = usecase.NewMetricsDecorator(processor, businessMetrics)
	})
	if storedErr, exists := c.initErrors["orderProcessor"]; exists {
		return nil, storedErr
	}
	return c.orderProcessor, nil
}

// MaintenanceUseCase returns the order event maintenance use case.
func (c *Container) MaintenanceUseCase() (usecase.MaintenanceUseCase, error) {
	c.maintenanceInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["maintenance"] = fmt.Errorf("failed to get tx manager for maintenance: %w", err)
			return
		}
		eventRepo, err := c.OrderEventRepository()
		if err != nil {
			c.initErrors["maintenance"] = fmt.Errorf("failed to get event repository for maintenance: %w", err)
			return
		}
		c.maintenanceUseCase = usecase.NewOrderEventMaintenance(txManager, eventRepo, c.Logger())
	})
	if storedErr, exists := c.initErrors["maintenance"]; exists {
		return nil, storedErr
	}
	return c.maintenanceUseCase, nil
}

// Dispatcher returns the background worker dispatcher.
func (c *Container) Dispatcher() *worker.Dispatcher {
	c.dispatcherInit.Do(func() {
		c.dispatcher = worker.NewDispatcher(int64(c.config.WorkerPoolSize), c.Logger())
	})
	return c.dispatcher
}

// HTTPServer returns the HTTP server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["httpServer"] = fmt.Errorf("failed to get database for http server: %w", err)
			return
		}

		processor, err := c.OrderProcessor()
		if err != nil {
			c.initErrors["httpServer"] = fmt.Errorf("failed to get order processor for http server: %w", err)
			return
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["httpServer"] = fmt.Errorf("failed to get metrics provider for http server: %w", err)
			return
		}

		handler := guardhttp.NewWebhookHandler(processor, c.Dispatcher(), c.Logger())

		opts := http.Options{
			Host:             c.config.ServerHost,
			Port:             c.config.ServerPort,
			Version:          c.version,
			WebhookSecret:    c.config.WebhookSecret,
			RateLimitWindow:  c.config.RateLimitWindow,
			RateLimitMax:     c.config.RateLimitMax,
			CORSEnabled:      c.config.CORSEnabled,
			CORSAllowOrigins: c.config.CORSAllowOrigins,
			MetricsNamespace: c.config.MetricsNamespace,
		}
		if provider != nil {
			opts.MeterProvider = provider.MeterProvider()
		}

		c.httpServer = http.NewServer(opts, db, handler, c.Logger())
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Drain in-flight webhook processing before closing the database
	if c.dispatcher != nil {
		if err := c.dispatcher.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("dispatcher shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close database connection if initialized
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
