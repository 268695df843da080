package di

import (
	"github.com/ticketline/ticketline/internal/handler"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/internal/registry"
	"github.com/ticketline/ticketline/internal/repository"
	"github.com/ticketline/ticketline/internal/service"
	"github.com/ticketline/ticketline/pkg/database"
	"github.com/ticketline/ticketline/pkg/redis"
)

// Container holds all dependencies for the ticketline service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	VendorRepo   repository.VendorRepository
	CustomerRepo repository.CustomerRepository
	TicketRepo   repository.TicketRepository
	ConfigRepo   repository.EventConfigRepository
	StatusRepo   repository.StatusRepository

	// Core
	PoolController *pool.Controller
	Registry       *registry.Registry

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	AuthService     service.AuthService
	VendorService   service.VendorService
	CustomerService service.CustomerService
	PoolService     service.PoolService
	TicketService   service.TicketService

	// Handlers
	HealthHandler   *handler.HealthHandler
	AuthHandler     *handler.AuthHandler
	VendorHandler   *handler.VendorHandler
	CustomerHandler *handler.CustomerHandler
	PoolHandler     *handler.PoolHandler
	TicketHandler   *handler.TicketHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	VendorRepo     repository.VendorRepository
	CustomerRepo   repository.CustomerRepository
	TicketRepo     repository.TicketRepository
	ConfigRepo     repository.EventConfigRepository
	StatusRepo     repository.StatusRepository
	PoolController *pool.Controller
	Registry       *registry.Registry
	EventPublisher service.EventPublisher
	AuthConfig     *service.AuthServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		VendorRepo:     cfg.VendorRepo,
		CustomerRepo:   cfg.CustomerRepo,
		TicketRepo:     cfg.TicketRepo,
		ConfigRepo:     cfg.ConfigRepo,
		StatusRepo:     cfg.StatusRepo,
		PoolController: cfg.PoolController,
		Registry:       cfg.Registry,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize services
	c.AuthService = service.NewAuthService(c.VendorRepo, c.CustomerRepo, cfg.AuthConfig)
	c.VendorService = service.NewVendorService(c.VendorRepo, c.Registry, c.EventPublisher)
	c.CustomerService = service.NewCustomerService(c.CustomerRepo, c.Registry)
	c.PoolService = service.NewPoolService(c.PoolController, c.VendorRepo, c.StatusRepo, c.EventPublisher)
	c.TicketService = service.NewTicketService(c.TicketRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, c.VendorService, c.CustomerService)
	c.VendorHandler = handler.NewVendorHandler(c.VendorService)
	c.CustomerHandler = handler.NewCustomerHandler(c.CustomerService)
	c.PoolHandler = handler.NewPoolHandler(c.PoolService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)

	return c
}
