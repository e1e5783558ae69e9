package commerce

import (
	"context"

	"github.com/goliatone/go-commerce-store/errs"
	"go.uber.org/zap"
)

// ChargeResult is the outcome reported by the external payment collaborator.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Reason        string
}

// Charger is the external payment collaborator. A declined charge is a
// result, not an error; errors are reserved for the charge never happening.
type Charger interface {
	Charge(ctx context.Context, method string, amount float64) ChargeResult
}

// PaymentResult is the structured outcome of ProcessPayment. Business
// declines travel here rather than through the error channel.
type PaymentResult struct {
	Success       bool
	OrderID       int64
	TransactionID string
	Reason        string
}

// PaymentService processes charges against existing orders.
type PaymentService struct {
	orders  *OrderService
	charger Charger
	logger  *zap.Logger
}

// NewPaymentService constructs the service around the charge collaborator.
func NewPaymentService(orders *OrderService, charger Charger, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{orders: orders, charger: charger, logger: logger}
}

// ProcessPayment charges the order total. A missing order is an error; a
// declined charge is a failed PaymentResult carrying the collaborator's
// detail. On success the order transitions to paid.
func (s *PaymentService) ProcessPayment(ctx context.Context, orderID int64, method string) (PaymentResult, error) {
	order, ok, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return PaymentResult{}, err
	}
	if !ok {
		return PaymentResult{}, errs.NotFound("order", orderID)
	}

	res := s.charger.Charge(ctx, method, order.Total)
	if !res.Success {
		s.logger.Warn("charge declined",
			zap.Int64("order_id", orderID),
			zap.String("reason", res.Reason))
		return PaymentResult{Success: false, OrderID: orderID, Reason: res.Reason}, nil
	}

	if err := s.orders.UpdateStatus(ctx, orderID, StatusPaid); err != nil {
		return PaymentResult{}, err
	}

	s.logger.Info("payment processed",
		zap.Int64("order_id", orderID),
		zap.String("transaction_id", res.TransactionID))
	return PaymentResult{
		Success:       true,
		OrderID:       orderID,
		TransactionID: res.TransactionID,
	}, nil
}
