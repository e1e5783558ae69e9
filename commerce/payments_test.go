package commerce_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-commerce-store/cache"
	"github.com/goliatone/go-commerce-store/commerce"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/goliatone/go-commerce-store/pkg/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCharger records the charge it saw and returns a canned outcome.
type fakeCharger struct {
	result commerce.ChargeResult

	method string
	amount float64
	calls  int
}

func (f *fakeCharger) Charge(_ context.Context, method string, amount float64) commerce.ChargeResult {
	f.method = method
	f.amount = amount
	f.calls++
	return f.result
}

func newPaymentFixture(t *testing.T, charger commerce.Charger) (*commerce.PaymentService, *commerce.OrderService, int64) {
	t.Helper()
	m := testsupport.NewStore(t)

	products, err := commerce.NewProductService(m, cache.DefaultConfig(), nil)
	require.NoError(t, err)
	orders, err := commerce.NewOrderService(m, products, cache.DefaultConfig(), nil)
	require.NoError(t, err)
	payments := commerce.NewPaymentService(orders, charger, nil)

	hammer := testsupport.SeedProduct(t, m, "Hammer", 12.5, "tools", 4)
	orderID, err := orders.Create(context.Background(), 1, []commerce.OrderLine{{ProductID: hammer, Quantity: 2}})
	require.NoError(t, err)

	return payments, orders, orderID
}

func TestPaymentService_SuccessTransitionsToPaid(t *testing.T) {
	charger := &fakeCharger{result: commerce.ChargeResult{Success: true, TransactionID: "txn-1"}}
	payments, orders, orderID := newPaymentFixture(t, charger)
	ctx := context.Background()

	res, err := payments.ProcessPayment(ctx, orderID, "card")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "txn-1", res.TransactionID)
	assert.Equal(t, orderID, res.OrderID)

	assert.Equal(t, "card", charger.method)
	assert.InDelta(t, 25.0, charger.amount, 1e-9, "the order total is charged, not a caller-supplied amount")

	order, ok, err := orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, commerce.StatusPaid, order.Status)
}

func TestPaymentService_DeclineIsAResultNotAnError(t *testing.T) {
	charger := &fakeCharger{result: commerce.ChargeResult{Success: false, Reason: "insufficient funds"}}
	payments, orders, orderID := newPaymentFixture(t, charger)
	ctx := context.Background()

	res, err := payments.ProcessPayment(ctx, orderID, "card")
	require.NoError(t, err, "a business decline travels in the result, not the error channel")
	assert.False(t, res.Success)
	assert.Equal(t, "insufficient funds", res.Reason)

	order, ok, err := orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, commerce.StatusPending, order.Status, "declined charges leave the order untouched")
}

func TestPaymentService_MissingOrder(t *testing.T) {
	charger := &fakeCharger{result: commerce.ChargeResult{Success: true}}
	payments, _, _ := newPaymentFixture(t, charger)

	_, err := payments.ProcessPayment(context.Background(), 9999, "card")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Zero(t, charger.calls, "no charge is attempted for a missing order")
}
