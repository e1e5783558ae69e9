package di_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-commerce-store/commerce"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/goliatone/go-commerce-store/pkg/di"
	"github.com/goliatone/go-commerce-store/pkg/testsupport"
	"github.com/goliatone/go-commerce-store/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type approvingCharger struct{}

func (approvingCharger) Charge(context.Context, string, float64) commerce.ChargeResult {
	return commerce.ChargeResult{Success: true, TransactionID: "txn-test"}
}

func newContainer(t *testing.T) *di.Container {
	t.Helper()

	cfg := di.DefaultConfig()
	cfg.Store = testsupport.StoreConfig()

	c, err := di.New(cfg, approvingCharger{}, nil)
	require.NoError(t, err)

	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	testsupport.ApplySchema(t, c.Store())
	return c
}

func TestContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := di.DefaultConfig()
	cfg.Store.Driver = ""

	_, err := di.New(cfg, approvingCharger{}, nil)
	require.Error(t, err)
}

func TestContainer_ServicesShareOneManager(t *testing.T) {
	c := newContainer(t)

	require.NotNil(t, c.Users())
	require.NotNil(t, c.Products())
	require.NotNil(t, c.Orders())
	require.NotNil(t, c.Payments())
	require.NotNil(t, c.Sessions())

	// Every service query flows through the single shared manager.
	before := c.Store().Stats().TotalQueries
	_, _, err := c.Users().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Greater(t, c.Store().Stats().TotalQueries, before)
}

func TestContainer_FullPurchaseFlow(t *testing.T) {
	c := newContainer(t)
	ctx := context.Background()

	hash, err := session.HashPassword("s3cret")
	require.NoError(t, err)
	userID, err := c.Users().Create(ctx, commerce.NewUser{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
	})
	require.NoError(t, err)

	// Authentication uses the real bcrypt verifier wired by the container.
	token, err := c.Sessions().Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
	require.True(t, c.Sessions().Validate(token))

	_, err = c.Sessions().Login(ctx, "alice@example.com", "wrong")
	assert.True(t, errs.IsAuth(err))

	productID, err := c.Products().Create(ctx, commerce.NewProduct{
		Name: "Keyboard", Price: 59.99, Category: "electronics", Stock: 10,
	})
	require.NoError(t, err)

	orderID, err := c.Orders().Create(ctx, userID, []commerce.OrderLine{
		{ProductID: productID, Quantity: 2},
	})
	require.NoError(t, err)

	res, err := c.Payments().ProcessPayment(ctx, orderID, "card")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "txn-test", res.TransactionID)

	order, ok, err := c.Orders().GetByID(ctx, orderID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, commerce.StatusPaid, order.Status)
	assert.InDelta(t, 119.98, order.Total, 1e-9)

	require.True(t, c.Sessions().Logout(token))
	assert.False(t, c.Sessions().Validate(token))
}
