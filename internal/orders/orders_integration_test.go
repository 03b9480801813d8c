package orders_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/internal/stores/postgres/postgrestest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db *sql.DB
	c  *customers.Conf
	p  *products.Conf
	o  *orders.Conf
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := postgrestest.NewDB(t)

	c, err := customers.NewConf(db)
	require.NoError(t, err)
	p, err := products.NewConf(db)
	require.NoError(t, err)
	o, err := orders.NewConf(db)
	require.NoError(t, err)

	return fixture{db: db, c: c, p: p, o: o}
}

func (f fixture) seedCustomer(t *testing.T, email string) customers.Customer {
	t.Helper()
	customer, err := f.c.InsertCustomer(context.Background(), customers.NewCustomer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Phone:     "5551234",
	})
	require.NoError(t, err)
	return customer
}

func (f fixture) seedProduct(t *testing.T, name string, price int64, stock int) products.Product {
	t.Helper()
	product, err := f.p.InsertProduct(context.Background(), products.NewProduct{
		Name:          name,
		Price:         price,
		StockQuantity: stock,
	})
	require.NoError(t, err)
	return product
}

func (f fixture) currentStock(t *testing.T, productID string) int {
	t.Helper()
	product, err := f.p.GetProductByID(context.Background(), productID)
	require.NoError(t, err)
	return product.StockQuantity
}

func TestCreateOrderReservesStockAndComputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	product := f.seedProduct(t, "Widget", 5000, 10)

	order, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, customer.ID, order.CustomerID)
	assert.Equal(t, int64(10000), order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(5000), order.Items[0].Price)
	assert.Equal(t, int64(10000), order.Items[0].TotalPrice)
	assert.Equal(t, 8, f.currentStock(t, product.ID))

	// The persisted order reads back equal.
	stored, err := f.o.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	assert.Equal(t, order.TotalAmount, stored.TotalAmount)
	assert.WithinDuration(t, order.CreatedAt, stored.CreatedAt, time.Second)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, order.Items[0], stored.Items[0])
}

func TestCreateOrderTotalEqualsSumOfItemTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	productA := f.seedProduct(t, "Widget", 1999, 10)
	productB := f.seedProduct(t, "Gadget", 350, 10)

	order, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items: []orders.NewOrderItem{
			{ProductID: productA.ID, Quantity: 3},
			{ProductID: productB.ID, Quantity: 7},
		},
	})
	require.NoError(t, err)

	var sum int64
	for _, item := range order.Items {
		assert.Equal(t, item.Price*int64(item.Quantity), item.TotalPrice)
		sum += item.TotalPrice
	}
	assert.Equal(t, sum, order.TotalAmount)
	assert.Equal(t, int64(3*1999+7*350), order.TotalAmount)
}

func TestCreateOrderItemsKeepCallerOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	productA := f.seedProduct(t, "Widget", 100, 5)
	productB := f.seedProduct(t, "Gadget", 200, 5)

	order, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items: []orders.NewOrderItem{
			{ProductID: productB.ID, Quantity: 1},
			{ProductID: productA.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, productB.ID, order.Items[0].ProductID)
	assert.Equal(t, productA.ID, order.Items[1].ProductID)
}

func TestCreateOrderInsufficientStockLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	product := f.seedProduct(t, "Widget", 5000, 10)

	_, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 15}},
	})

	var stockErr products.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Widget", stockErr.Name)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 15, stockErr.Requested)

	assert.Equal(t, 10, f.currentStock(t, product.ID))

	ordersList, err := f.o.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, ordersList)
}

func TestCreateOrderRollsBackEarlierDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	productA := f.seedProduct(t, "Widget", 100, 5)
	productB := f.seedProduct(t, "Gadget", 200, 1)

	// The second line fails after the first already decremented; the whole
	// call must leave both stocks untouched.
	_, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items: []orders.NewOrderItem{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 3},
		},
	})

	var stockErr products.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, f.currentStock(t, productA.ID))
	assert.Equal(t, 1, f.currentStock(t, productB.ID))
}

func TestCreateOrderValidatesCustomerAndItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Widget", 100, 5)

	_, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: "0e9a4df3-33bc-47b0-9171-5d9c6c33ab11",
		Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, orders.ErrCustomerNotFound)

	customer := f.seedCustomer(t, "ada@example.com")

	_, err = f.o.CreateOrder(ctx, orders.NewOrder{CustomerID: customer.ID})
	assert.ErrorIs(t, err, orders.ErrNoItems)

	_, err = f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items:      []orders.NewOrderItem{{ProductID: "e7a9adf1-7c14-49d0-baf4-6f43ff0e4c11", Quantity: 1}},
	})
	assert.ErrorIs(t, err, products.ErrNotFound)
	assert.Equal(t, 5, f.currentStock(t, product.ID))
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	productA := f.seedProduct(t, "Widget", 100, 5)
	productB := f.seedProduct(t, "Gadget", 200, 8)

	order, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items: []orders.NewOrderItem{
			{ProductID: productA.ID, Quantity: 2},
			{ProductID: productB.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, f.currentStock(t, productA.ID))
	assert.Equal(t, 5, f.currentStock(t, productB.ID))

	require.NoError(t, f.o.DeleteOrderByID(ctx, order.ID))

	// Every touched product is back at its pre-creation value.
	assert.Equal(t, 5, f.currentStock(t, productA.ID))
	assert.Equal(t, 8, f.currentStock(t, productB.ID))

	_, err = f.o.GetOrderByID(ctx, order.ID)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestDeleteOrderNotFoundHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Widget", 100, 5)

	err := f.o.DeleteOrderByID(ctx, "b7c1e53f-13b4-4e0e-8cb5-f1a42ad2ff00")
	assert.ErrorIs(t, err, orders.ErrNotFound)
	assert.Equal(t, 5, f.currentStock(t, product.ID))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	product := f.seedProduct(t, "Widget", 100, 10)

	const requests = 20
	var wg sync.WaitGroup
	errs := make([]error, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.o.CreateOrder(ctx, orders.NewOrder{
				CustomerID: customer.ID,
				Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 1}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr products.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, f.currentStock(t, product.ID))
}

func TestConcurrentMultiItemOrdersDoNotDeadlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	productA := f.seedProduct(t, "Widget", 100, 100)
	productB := f.seedProduct(t, "Gadget", 200, 100)

	// Opposite caller orders over the same two products; the deterministic
	// lock order keeps these from deadlocking.
	const pairs = 25
	var wg sync.WaitGroup
	errs := make([]error, pairs*2)

	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, errs[2*i] = f.o.CreateOrder(ctx, orders.NewOrder{
				CustomerID: customer.ID,
				Items: []orders.NewOrderItem{
					{ProductID: productA.ID, Quantity: 1},
					{ProductID: productB.ID, Quantity: 1},
				},
			})
		}(i)
		go func(i int) {
			defer wg.Done()
			_, errs[2*i+1] = f.o.CreateOrder(ctx, orders.NewOrder{
				CustomerID: customer.ID,
				Items: []orders.NewOrderItem{
					{ProductID: productB.ID, Quantity: 1},
					{ProductID: productA.ID, Quantity: 1},
				},
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 50, f.currentStock(t, productA.ID))
	assert.Equal(t, 50, f.currentStock(t, productB.ID))
}

func TestSearchOrdersCustomerNameTakesPriority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := f.seedCustomer(t, "ada@example.com")
	grace, err := f.c.InsertCustomer(ctx, customers.NewCustomer{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	})
	require.NoError(t, err)

	product := f.seedProduct(t, "Widget", 100, 50)

	adaOrder, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: ada.ID,
		Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: grace.ID,
		Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// A name filter ignores the conflicting customer-id filter entirely.
	result, err := f.o.SearchOrders(ctx, orders.SearchFilter{
		CustomerName: "lovelace",
		CustomerID:   grace.ID,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, adaOrder.ID, result[0].ID)
}

func TestSearchOrdersGenericFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.seedCustomer(t, "ada@example.com")
	cheap := f.seedProduct(t, "Widget", 100, 50)
	dear := f.seedProduct(t, "Gadget", 10000, 50)

	small, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items:      []orders.NewOrderItem{{ProductID: cheap.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	large, err := f.o.CreateOrder(ctx, orders.NewOrder{
		CustomerID: customer.ID,
		Items:      []orders.NewOrderItem{{ProductID: dear.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	minAmount := int64(1000)
	result, err := f.o.SearchOrders(ctx, orders.SearchFilter{CustomerID: customer.ID, MinAmount: &minAmount})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, large.ID, result[0].ID)

	maxAmount := int64(1000)
	result, err = f.o.SearchOrders(ctx, orders.SearchFilter{MaxAmount: &maxAmount})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, small.ID, result[0].ID)

	future := time.Now().UTC().Add(time.Hour)
	result, err = f.o.SearchOrders(ctx, orders.SearchFilter{StartDate: &future})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestListOrdersByCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ada := f.seedCustomer(t, "ada@example.com")
	grace, err := f.c.InsertCustomer(ctx, customers.NewCustomer{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	})
	require.NoError(t, err)

	product := f.seedProduct(t, "Widget", 100, 50)

	for i := 0; i < 3; i++ {
		_, err := f.o.CreateOrder(ctx, orders.NewOrder{
			CustomerID: ada.ID,
			Items:      []orders.NewOrderItem{{ProductID: product.ID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	adaOrders, err := f.o.ListOrdersByCustomerID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Len(t, adaOrders, 3)

	graceOrders, err := f.o.ListOrdersByCustomerID(ctx, grace.ID)
	require.NoError(t, err)
	assert.Empty(t, graceOrders)
}
