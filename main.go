package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ticketline/ticketline/internal/di"
	"github.com/ticketline/ticketline/internal/handler"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/registry"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/internal/worker"
	"github.com/ticketline/ticketline/pkg/config"
	"github.com/ticketline/ticketline/pkg/database"
	"github.com/ticketline/ticketline/pkg/logger"
	pkgredis "github.com/ticketline/ticketline/pkg/redis"
	"github.com/ticketline/ticketline/pkg/telemetry"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Ticketline...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
		ServiceName:     cfg.OTel.ServiceName,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.TicketTopic,
		ServiceName: cfg.App.Name,
		ClientID:    cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		appLog.Info("Kafka event publisher connected")
	}
	defer eventPublisher.Close()

	// Initialize repositories
	vendorRepo := repository.NewPostgresVendorRepository(db.Pool())
	customerRepo := repository.NewPostgresCustomerRepository(db.Pool())
	ticketRepo := repository.NewPostgresTicketRepository(db.Pool())
	configRepo := repository.NewPostgresConfigRepository(db.Pool())
	statusRepo := repository.NewRedisStatusRepository(redisClient)

	// Build the pool controller and the participant registry
	ctrl := pool.NewController(vendorRepo, customerRepo, ticketRepo, configRepo)
	reg := registry.NewRegistry(ctrl, vendorRepo, customerRepo, cfg.Simulator.RunnerErrorBackoff)

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		VendorRepo:     vendorRepo,
		CustomerRepo:   customerRepo,
		TicketRepo:     ticketRepo,
		ConfigRepo:     configRepo,
		StatusRepo:     statusRepo,
		PoolController: ctrl,
		Registry:       reg,
		EventPublisher: eventPublisher,
		AuthConfig: &service.AuthServiceConfig{
			JWTSecret:         cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.AccessTokenTTL,
			AdminEmail:        cfg.Simulator.AdminEmail,
			AdminPassword:     cfg.Simulator.AdminPassword,
		},
	})

	// Restore the event configuration persisted by a previous run
	if persisted, err := configRepo.GetActive(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to load persisted configuration: %v", err))
	} else if persisted != nil {
		if _, err := ctrl.Configure(ctx, persisted); err != nil {
			appLog.Error(fmt.Sprintf("Failed to restore configuration %q: %v", persisted.EventName, err))
		} else {
			appLog.Info(fmt.Sprintf("Restored event configuration %q", persisted.EventName))
		}
	}

	// Resume loops for participants that were active when we last stopped
	if vendors, err := vendorRepo.GetActive(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to load active vendors: %v", err))
	} else {
		for _, v := range vendors {
			if err := reg.StartVendor(ctx, v); err != nil {
				appLog.Error(fmt.Sprintf("Failed to start vendor %s: %v", v.ID, err))
			}
		}
		appLog.Info(fmt.Sprintf("Resumed %d vendor loops", len(vendors)))
	}
	if customers, err := customerRepo.GetActive(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to load active customers: %v", err))
	} else {
		for _, c := range customers {
			if err := reg.StartCustomer(ctx, c); err != nil {
				appLog.Error(fmt.Sprintf("Failed to start customer %s: %v", c.ID, err))
			}
		}
		appLog.Info(fmt.Sprintf("Resumed %d customer loops", len(customers)))
	}

	// Start the periodic snapshot worker
	snapshotWorker := worker.NewSnapshotWorker(ctrl, statusRepo, cfg.Simulator.SnapshotInterval)
	snapshotWorker.Start(ctx)

	// Setup Gin
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(gin.Recovery())

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// API routes
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register/vendor", container.AuthHandler.RegisterVendor)
			auth.POST("/register/customer", container.AuthHandler.RegisterCustomer)
			auth.POST("/login", container.AuthHandler.Login)
		}

		adminOnly := handler.AuthRequired(container.AuthService, service.RoleAdmin)
		authed := handler.AuthRequired(container.AuthService)

		vendors := v1.Group("/vendors")
		{
			vendors.GET("/active", container.VendorHandler.GetActive)
			vendors.GET("/:id", container.VendorHandler.GetByID)
			vendors.DELETE("/:id", adminOnly, container.VendorHandler.Deactivate)
			vendors.POST("/:id/reactivate", adminOnly, container.VendorHandler.Reactivate)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("/active", container.CustomerHandler.GetActive)
			customers.GET("/:id", container.CustomerHandler.GetByID)
			customers.DELETE("/:id", adminOnly, container.CustomerHandler.Deactivate)
			customers.POST("/:id/reactivate", adminOnly, container.CustomerHandler.Reactivate)
		}

		poolRoutes := v1.Group("/pool")
		{
			poolRoutes.GET("/status", container.PoolHandler.Status)
			poolRoutes.POST("/configure", adminOnly, container.PoolHandler.Configure)
			poolRoutes.POST("/reload", adminOnly, container.PoolHandler.Reload)
			poolRoutes.POST("/release", authed, container.PoolHandler.Release)
			poolRoutes.POST("/purchase", authed, container.PoolHandler.Purchase)
		}

		tickets := v1.Group("/tickets")
		{
			tickets.GET("", container.TicketHandler.List)
			tickets.GET("/:id", container.TicketHandler.GetByID)
			tickets.DELETE("/:id", adminOnly, container.TicketHandler.Delete)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Ticketline listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting requests first, then wind down the simulation
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	reg.StopAll()
	snapshotWorker.Stop()

	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		appLog.Error(fmt.Sprintf("Pool shutdown failed: %v", err))
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
	}

	appLog.Info("Ticketline exited gracefully")
}
