// Package di wires the data-access layer together: one connection manager,
// per-entity services with their own caches, and the session manager.
package di

import (
	"context"

	"github.com/goliatone/go-commerce-store/cache"
	"github.com/goliatone/go-commerce-store/commerce"
	"github.com/goliatone/go-commerce-store/session"
	"github.com/goliatone/go-commerce-store/store"
	"go.uber.org/zap"
)

// Config aggregates the per-component configurations.
type Config struct {
	Store   store.Config
	Cache   cache.Config
	Session session.Config
}

// DefaultConfig returns component defaults. Store driver and DSN must still
// be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Store:   store.DefaultConfig(),
		Cache:   cache.DefaultConfig(),
		Session: session.DefaultConfig(),
	}
}

// Container manages singleton instances of the connection manager, the
// entity services, and the session manager.
type Container struct {
	store    *store.Manager
	users    *commerce.UserService
	products *commerce.ProductService
	orders   *commerce.OrderService
	payments *commerce.PaymentService
	sessions *session.Manager
}

// New builds the full dependency graph. The charger is the external payment
// collaborator; the logger is injected into every component and may be nil.
func New(cfg Config, charger commerce.Charger, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	manager, err := store.NewManager(cfg.Store, logger.Named("store"))
	if err != nil {
		return nil, err
	}

	users, err := commerce.NewUserService(manager, cfg.Cache, logger.Named("users"))
	if err != nil {
		return nil, err
	}
	products, err := commerce.NewProductService(manager, cfg.Cache, logger.Named("products"))
	if err != nil {
		return nil, err
	}
	orders, err := commerce.NewOrderService(manager, products, cfg.Cache, logger.Named("orders"))
	if err != nil {
		return nil, err
	}
	payments := commerce.NewPaymentService(orders, charger, logger.Named("payments"))

	sessions, err := session.NewManager(cfg.Session, users, session.BcryptVerifier{}, logger.Named("session"))
	if err != nil {
		return nil, err
	}

	return &Container{
		store:    manager,
		users:    users,
		products: products,
		orders:   orders,
		payments: payments,
		sessions: sessions,
	}, nil
}

// Connect establishes the store connection.
func (c *Container) Connect(ctx context.Context) error {
	return c.store.Connect(ctx)
}

// Close releases statement handles and the store connection.
func (c *Container) Close() error {
	return c.store.Disconnect()
}

// Store returns the connection manager.
func (c *Container) Store() *store.Manager { return c.store }

// Users returns the user service.
func (c *Container) Users() *commerce.UserService { return c.users }

// Products returns the product service.
func (c *Container) Products() *commerce.ProductService { return c.products }

// Orders returns the order service.
func (c *Container) Orders() *commerce.OrderService { return c.orders }

// Payments returns the payment service.
func (c *Container) Payments() *commerce.PaymentService { return c.payments }

// Sessions returns the session manager.
func (c *Container) Sessions() *session.Manager { return c.sessions }
