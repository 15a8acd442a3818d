package usecase

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]model.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]model.Order{}}
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Order{}
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Create(ctx context.Context, order model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return repo.ErrNotFound
	}
	o.Status = status
	f.orders[orderID] = o
	return nil
}

func (f *fakeOrderRepo) ListAdmin(ctx context.Context, filter repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Order{}
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Stats(ctx context.Context) (repo.OrderStats, error) {
	return repo.OrderStats{}, nil
}

func newOrderUsecaseForTest(products ...model.Product) (*OrderUsecase, *CartUsecase, *fakeOrderRepo) {
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	orderRepo := newFakeOrderRepo()
	locks := NewKeyedMutex()

	cartUC := NewCartUsecase(cartRepo, productRepo, nil, locks)
	orderUC := NewOrderUsecase(orderRepo, cartRepo, productRepo, nil, locks)
	return orderUC, cartUC, orderRepo
}

func TestPlaceOrder_SnapshotsProductsAndEmptiesCart(t *testing.T) {
	orderUC, cartUC, _ := newOrderUsecaseForTest(
		activeProduct("p1", "artisan-1", 1000),
		activeProduct("p2", "artisan-2", 300),
	)

	_, err := cartUC.AddOrMerge(context.Background(), "c1", []AddItemInput{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	order, err := orderUC.PlaceOrder(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, float64(2300), order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "product p1", order.Items[0].NameSnapshot)
	assert.Equal(t, float64(1000), order.Items[0].UnitPriceSnapshot)
	assert.Equal(t, "artisan-1", order.Items[0].ArtisanID)

	// 注文後はカートが空で合計0
	view, err := cartUC.GetCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, float64(0), view.TotalAmount)
}

func TestPlaceOrder_EmptyCartIsBadRequest(t *testing.T) {
	orderUC, cartUC, _ := newOrderUsecaseForTest(activeProduct("p1", "a1", 1000))

	view, err := cartUC.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	_, err = cartUC.RemoveItem(context.Background(), view.ID, "p1")
	require.NoError(t, err)

	_, err = orderUC.PlaceOrder(context.Background(), "c1")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestPlaceOrder_NoCartIsBadRequest(t *testing.T) {
	orderUC, _, _ := newOrderUsecaseForTest()

	_, err := orderUC.PlaceOrder(context.Background(), "nobody")
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestGetOrderDetail_OtherCustomerLooksAbsent(t *testing.T) {
	orderUC, cartUC, _ := newOrderUsecaseForTest(activeProduct("p1", "a1", 1000))

	_, err := cartUC.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	order, err := orderUC.PlaceOrder(context.Background(), "c1")
	require.NoError(t, err)

	// 本人は見える
	_, err = orderUC.GetOrderDetail(context.Background(), "c1", model.RoleCustomer, order.ID)
	require.NoError(t, err)

	// 他人は404、管理者は見える
	_, err = orderUC.GetOrderDetail(context.Background(), "c2", model.RoleCustomer, order.ID)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	_, err = orderUC.GetOrderDetail(context.Background(), "admin", model.RoleAdmin, order.ID)
	require.NoError(t, err)
}

func TestAdminUpdateStatus_Transitions(t *testing.T) {
	orderUC, cartUC, _ := newOrderUsecaseForTest(activeProduct("p1", "a1", 1000))

	_, err := cartUC.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	order, err := orderUC.PlaceOrder(context.Background(), "c1")
	require.NoError(t, err)

	// PENDINGからSHIPPEDへは飛べない
	_, err = orderUC.AdminUpdateStatus(context.Background(), order.ID, model.OrderStatusShipped)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))

	// PENDING→PAID→SHIPPED
	updated, err := orderUC.AdminUpdateStatus(context.Background(), order.ID, model.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, updated.Status)

	updated, err = orderUC.AdminUpdateStatus(context.Background(), order.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)

	// SHIPPEDは終端
	_, err = orderUC.AdminUpdateStatus(context.Background(), order.ID, model.OrderStatusCanceled)
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestAdminUpdateStatus_MissingOrderIsNotFound(t *testing.T) {
	orderUC, _, _ := newOrderUsecaseForTest()

	_, err := orderUC.AdminUpdateStatus(context.Background(), "missing", model.OrderStatusPaid)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}
