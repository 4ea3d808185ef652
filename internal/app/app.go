package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/handlers"
	"newsletter-go/internal/logging"
	"newsletter-go/internal/repository"
	"newsletter-go/internal/service"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	// Address is host:port; port 0 picks a free port.
	Address        string
	Logger         *logging.ContextLogger
	TracerProvider trace.TracerProvider
	GinMode        string
	Repository     repository.SubscriptionRepository
}

type Application struct {
	server   *http.Server
	listener net.Listener
	config   *Config
	router   *gin.Engine
	service  *service.SubscriptionService
	handler  *handlers.SubscriptionHandler
}

// Build wires the routes around the shared repository. It does not bind a
// socket; call Listen and then Serve.
func Build(config *Config) *Application {
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	subscriptionService := service.NewSubscriptionService(config.Repository, config.Logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, config.Logger)

	router := gin.New()
	router.Use(gin.Recovery())

	var otelOpts []otelgin.Option
	if config.TracerProvider != nil {
		otelOpts = append(otelOpts, otelgin.WithTracerProvider(config.TracerProvider))
	}
	router.Use(otelgin.Middleware(config.ServiceName, otelOpts...))

	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		config.Logger.WithTracing(c.Request.Context()).WithFields(map[string]interface{}{
			"method":     method,
			"path":       path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}).Info("HTTP request completed")
	})

	router.GET("/health_check", handlers.HealthCheck)
	router.POST("/subscriptions", subscriptionHandler.Subscribe)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		server:  server,
		config:  config,
		router:  router,
		service: subscriptionService,
		handler: subscriptionHandler,
	}
}

// Listen binds the TCP listener. A bind failure is a startup error.
func (app *Application) Listen() error {
	listener, err := net.Listen("tcp", app.config.Address)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", app.config.Address, err)
	}
	app.listener = listener
	return nil
}

// Address returns the bound address, which differs from the configured one
// when port 0 was requested.
func (app *Application) Address() string {
	if app.listener == nil {
		return app.config.Address
	}
	return app.listener.Addr().String()
}

// Serve blocks until the server is shut down. It binds first if Listen was not
// called.
func (app *Application) Serve() error {
	if app.listener == nil {
		if err := app.Listen(); err != nil {
			return err
		}
	}

	app.config.Logger.Info("Starting server on " + app.Address())
	if err := app.server.Serve(app.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.config.Logger.Info("Shutting down server...")
	return app.server.Shutdown(ctx)
}

func (app *Application) GetService() *service.SubscriptionService {
	return app.service
}

func (app *Application) GetHandler() *handlers.SubscriptionHandler {
	return app.handler
}

func (app *Application) GetRouter() *gin.Engine {
	return app.router
}
