package commerce

import (
	"time"

	"github.com/goliatone/go-commerce-store/store"
)

// Order status lifecycle. Orders are created pending and transition to paid
// after a successful charge.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// User is one account record mapped 1:1 from a store row.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	Active       bool
}

// Product is one catalog record mapped 1:1 from a store row.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
}

// OrderItem is one order line. UnitPrice is the product price captured at
// order-creation time; it is not re-validated later.
type OrderItem struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

// Subtotal returns the line total.
func (i OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order is one order record with its line items.
type Order struct {
	ID        int64
	UserID    int64
	Total     float64
	Status    string
	CreatedAt time.Time
	Items     []OrderItem
}

// Row mapping lives here, one function per entity, so store-shape
// assumptions stay in a single place.

func mapUser(row store.Row) User {
	return User{
		ID:           row.Int64("id"),
		Username:     row.String("username"),
		Email:        row.String("email"),
		PasswordHash: row.String("password_hash"),
		CreatedAt:    row.Time("created_at"),
		Active:       row.Bool("is_active"),
	}
}

func mapProduct(row store.Row) Product {
	return Product{
		ID:          row.Int64("id"),
		Name:        row.String("name"),
		Description: row.String("description"),
		Price:       row.Float64("price"),
		Category:    row.String("category"),
		Stock:       row.Int("stock"),
	}
}

func mapOrder(row store.Row) Order {
	return Order{
		ID:        row.Int64("id"),
		UserID:    row.Int64("user_id"),
		Total:     row.Float64("total"),
		Status:    row.String("status"),
		CreatedAt: row.Time("created_at"),
	}
}

func mapOrderItem(row store.Row) OrderItem {
	return OrderItem{
		ProductID: row.Int64("product_id"),
		Quantity:  row.Int("quantity"),
		UnitPrice: row.Float64("unit_price"),
	}
}
