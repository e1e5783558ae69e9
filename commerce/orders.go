package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-commerce-store/cache"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/goliatone/go-commerce-store/store"
	"go.uber.org/zap"
)

const (
	orderByIDSQL       = "SELECT id, user_id, total, status, created_at FROM orders WHERE id = ?"
	insertOrderSQL     = "INSERT INTO orders (user_id, total, status, created_at) VALUES (?, ?, ?, ?)"
	updateStatusSQL    = "UPDATE orders SET status = ? WHERE id = ?"
	deleteOrderSQL     = "DELETE FROM orders WHERE id = ?"
	orderItemsSQL      = "SELECT order_id, product_id, quantity, unit_price FROM order_items WHERE order_id = ?"
	insertOrderItemSQL = "INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)"
	deleteOrderItemSQL = "DELETE FROM order_items WHERE order_id = ?"
)

// OrderLine is one requested line in a new order. The unit price is never
// taken from the caller; it is re-derived from the live product at creation
// time.
type OrderLine struct {
	ProductID int64
	Quantity  int
}

// OrderService composes the product catalog with order persistence. Orders
// are cached whole, items included.
type OrderService struct {
	db       *store.Manager
	products *ProductService
	orders   *cache.Cache[Order]
	keys     cache.KeySerializer
	logger   *zap.Logger
}

// NewOrderService constructs the service with its own cache instance.
func NewOrderService(db *store.Manager, products *ProductService, cacheCfg cache.Config, logger *zap.Logger) (*OrderService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	orders, err := cache.New[Order](cacheCfg, logger)
	if err != nil {
		return nil, err
	}
	return &OrderService{
		db:       db,
		products: products,
		orders:   orders,
		keys:     cache.NewDefaultKeySerializer(),
		logger:   logger,
	}, nil
}

// Create builds an order from the requested lines. Each line's unit price
// comes from a live product lookup; any missing product fails the whole
// order before anything is written. Returns the new order id.
func (s *OrderService) Create(ctx context.Context, userID int64, lines []OrderLine) (int64, error) {
	if len(lines) == 0 {
		return 0, &errs.ValidationError{Field: "items", Reason: "order requires at least one item"}
	}

	items := make([]OrderItem, 0, len(lines))
	total := 0.0
	for i, line := range lines {
		if line.Quantity <= 0 {
			return 0, &errs.ValidationError{
				Field:  fmt.Sprintf("items[%d].quantity", i),
				Reason: "must be greater than 0",
			}
		}

		product, ok, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, errs.NotFound("product", line.ProductID)
		}

		item := OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		}
		items = append(items, item)
		total += item.Subtotal()
	}

	res, err := s.db.Exec(ctx, insertOrderSQL, userID, total, StatusPending, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	orderID := res.LastInsertID

	for _, item := range items {
		if _, err := s.db.Exec(ctx, insertOrderItemSQL, orderID, item.ProductID, item.Quantity, item.UnitPrice); err != nil {
			return 0, err
		}
	}

	s.orders.InvalidateAll()
	s.logger.Info("order created",
		zap.Int64("id", orderID),
		zap.Int64("user_id", userID),
		zap.Float64("total", total),
		zap.Int("items", len(items)))
	return orderID, nil
}

// GetByID returns the order with its line items and whether it exists.
func (s *OrderService) GetByID(ctx context.Context, id int64) (Order, bool, error) {
	key := s.keys.SerializeKey("GetByID", id)
	gen := s.orders.Generation()
	if o, ok := s.orders.Get(key); ok {
		return o, true, nil
	}

	rows, err := s.db.Query(ctx, orderByIDSQL, id)
	if err != nil {
		return Order{}, false, err
	}
	if len(rows) == 0 {
		return Order{}, false, nil
	}
	order := mapOrder(rows[0])

	itemRows, err := s.db.Query(ctx, orderItemsSQL, id)
	if err != nil {
		return Order{}, false, err
	}
	order.Items = make([]OrderItem, 0, len(itemRows))
	for _, row := range itemRows {
		order.Items = append(order.Items, mapOrderItem(row))
	}

	s.orders.Populate(key, order, gen)
	return order, true, nil
}

// UpdateStatus transitions the order's status.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("order", id)
	}

	if _, err := s.db.Exec(ctx, updateStatusSQL, status, id); err != nil {
		return err
	}

	s.orders.InvalidateAll()
	s.logger.Info("order status updated", zap.Int64("id", id), zap.String("status", status))
	return nil
}

// Delete removes the order and its items, failing when the id does not
// exist.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	_, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("order", id)
	}

	if _, err := s.db.Exec(ctx, deleteOrderItemSQL, id); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, deleteOrderSQL, id); err != nil {
		return err
	}

	s.orders.InvalidateAll()
	s.logger.Info("order deleted", zap.Int64("id", id))
	return nil
}
