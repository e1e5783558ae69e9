package commerce

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-commerce-store/cache"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/goliatone/go-commerce-store/store"
	"go.uber.org/zap"
)

const (
	selectProductSQL        = "SELECT id, name, description, price, category, stock FROM products"
	productByIDSQL          = selectProductSQL + " WHERE id = ?"
	insertProductSQL        = "INSERT INTO products (name, description, price, category, stock) VALUES (?, ?, ?, ?, ?)"
	updateProductSQL        = "UPDATE products SET name = ?, description = ?, price = ?, category = ?, stock = ? WHERE id = ?"
	deleteProductSQL        = "DELETE FROM products WHERE id = ?"
	adjustStockSQL          = "UPDATE products SET stock = stock + ? WHERE id = ?"
	defaultProductListLimit = 100
)

// sortColumns is the allow-list for ORDER BY identifiers. Column names
// cannot be bound as parameters, so anything not in this map is silently
// dropped rather than interpolated.
var sortColumns = map[string]string{
	"price":    "price",
	"name":     "name",
	"category": "category",
}

// NewProduct carries the fields required to create a catalog entry.
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
}

// Validate applies the field-level rules before any store access.
func (n NewProduct) Validate() error {
	return asValidationError(validation.ValidateStruct(&n,
		validation.Field(&n.Name, validation.Required),
		validation.Field(&n.Category, validation.Required),
		validation.Field(&n.Price, validation.Min(0.0)),
		validation.Field(&n.Stock, validation.Min(0)),
	))
}

// ProductPatch is an explicit partial update; nil fields keep their prior
// value. A *float64 price of 0 is a real update, not "unset".
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	Stock       *int
}

func (p ProductPatch) applyTo(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	return prod
}

// ProductFilter narrows List results. Zero values mean "no constraint".
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	InStock  bool
	SortBy   string
	SortDesc bool
}

// ProductService implements read-through cached access to the catalog.
type ProductService struct {
	db     *store.Manager
	byID   *cache.Cache[Product]
	lists  *cache.Cache[[]Product]
	keys   cache.KeySerializer
	logger *zap.Logger
}

// NewProductService constructs the service with its own cache instances.
func NewProductService(db *store.Manager, cacheCfg cache.Config, logger *zap.Logger) (*ProductService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	byID, err := cache.New[Product](cacheCfg, logger)
	if err != nil {
		return nil, err
	}
	lists, err := cache.New[[]Product](cacheCfg, logger)
	if err != nil {
		return nil, err
	}
	return &ProductService{
		db:     db,
		byID:   byID,
		lists:  lists,
		keys:   cache.NewDefaultKeySerializer(),
		logger: logger,
	}, nil
}

// GetByID returns the product and whether it exists.
func (s *ProductService) GetByID(ctx context.Context, id int64) (Product, bool, error) {
	key := s.keys.SerializeKey("GetByID", id)
	gen := s.byID.Generation()
	if p, ok := s.byID.Get(key); ok {
		return p, true, nil
	}

	rows, err := s.db.Query(ctx, productByIDSQL, id)
	if err != nil {
		return Product{}, false, err
	}
	if len(rows) == 0 {
		return Product{}, false, nil
	}

	p := mapProduct(rows[0])
	s.byID.Populate(key, p, gen)
	return p, true, nil
}

// Create validates the payload, inserts the record, and returns the new
// identifier.
func (s *ProductService) Create(ctx context.Context, n NewProduct) (int64, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}

	res, err := s.db.Exec(ctx, insertProductSQL, n.Name, n.Description, n.Price, n.Category, n.Stock)
	if err != nil {
		return 0, err
	}

	s.invalidate()
	s.logger.Info("product created", zap.Int64("id", res.LastInsertID), zap.String("name", n.Name))
	return res.LastInsertID, nil
}

// Update merges the patch over the existing record and persists the result.
func (s *ProductService) Update(ctx context.Context, id int64, patch ProductPatch) (Product, error) {
	existing, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, errs.NotFound("product", id)
	}

	merged := patch.applyTo(existing)
	if err := validation.ValidateStruct(&merged,
		validation.Field(&merged.Name, validation.Required),
		validation.Field(&merged.Category, validation.Required),
		validation.Field(&merged.Price, validation.Min(0.0)),
		validation.Field(&merged.Stock, validation.Min(0)),
	); err != nil {
		return Product{}, asValidationError(err)
	}

	if _, err := s.db.Exec(ctx, updateProductSQL,
		merged.Name, merged.Description, merged.Price, merged.Category, merged.Stock, id); err != nil {
		return Product{}, err
	}

	s.invalidate()
	s.logger.Info("product updated", zap.Int64("id", id))
	return merged, nil
}

// Delete removes the record, failing when the id does not exist.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	_, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("product", id)
	}

	if _, err := s.db.Exec(ctx, deleteProductSQL, id); err != nil {
		return err
	}

	s.invalidate()
	s.logger.Info("product deleted", zap.Int64("id", id))
	return nil
}

// AdjustStock applies a relative stock change (negative delta decrements).
func (s *ProductService) AdjustStock(ctx context.Context, id int64, delta int) error {
	_, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("product", id)
	}

	if _, err := s.db.Exec(ctx, adjustStockSQL, delta, id); err != nil {
		return err
	}

	s.invalidate()
	s.logger.Info("product stock adjusted", zap.Int64("id", id), zap.Int("delta", delta))
	return nil
}

// List returns a filtered, optionally sorted page of products. Filter
// predicates, limit, and offset are bound as parameters; only the sort
// clause comes from the identifier allow-list.
func (s *ProductService) List(ctx context.Context, filter ProductFilter, limit, offset int) ([]Product, error) {
	if limit <= 0 {
		limit = defaultProductListLimit
	}
	if offset < 0 {
		return nil, &errs.ValidationError{Field: "offset", Reason: "must be non-negative"}
	}

	sqlText, args := buildProductListSQL(filter, limit, offset)

	key := s.keys.SerializeKey("List", sqlText, args)
	gen := s.lists.Generation()
	if products, ok := s.lists.Get(key); ok {
		return products, nil
	}

	rows, err := s.db.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, mapProduct(row))
	}
	s.lists.Populate(key, products, gen)
	return products, nil
}

// buildProductListSQL assembles the dynamic predicate. Every value is a
// positional parameter; the ORDER BY identifier and direction come only
// from the allow-list, and unrecognized sort columns drop the clause.
func buildProductListSQL(filter ProductFilter, limit, offset int) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectProductSQL)

	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}
	if filter.InStock {
		conds = append(conds, "stock > 0")
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if col, ok := sortColumns[filter.SortBy]; ok {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(col)
		if filter.SortDesc {
			sb.WriteString(" DESC")
		} else {
			sb.WriteString(" ASC")
		}
	}

	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, offset)
	return sb.String(), args
}

func (s *ProductService) invalidate() {
	s.byID.InvalidateAll()
	s.lists.InvalidateAll()
}
