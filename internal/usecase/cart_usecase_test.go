package usecase

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// =====================
// in-memory fakes
// =====================

// 保存状態を持つカートrepoのフェイク。並行テストでも使うのでロックする。
type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[string]model.Cart // key: cart ID
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[string]model.Cart{}}
}

func (f *fakeCartRepo) FindByCustomerID(ctx context.Context, customerID string) (model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.CustomerID == customerID {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (f *fakeCartRepo) FindByID(ctx context.Context, cartID string) (model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[cartID]
	if !ok {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (f *fakeCartRepo) ListAll(ctx context.Context) ([]model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Cart, 0, len(f.carts))
	for _, c := range f.carts {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCartRepo) Save(ctx context.Context, cart model.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[cart.ID] = cart
	return nil
}

// 商品repoのフェイク。登録した商品だけ返す。
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]model.Product
}

func newFakeProductRepo(products ...model.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: map[string]model.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id string) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) setPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Price = price
	f.products[id] = p
}

func (f *fakeProductRepo) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
}

func (f *fakeProductRepo) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeProductRepo) ListByArtisan(ctx context.Context, artisanID string) ([]model.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, p model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p model.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) SetImagePath(ctx context.Context, id string, path string) error {
	return nil
}

func (f *fakeProductRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func activeProduct(id string, artisanID string, price float64) model.Product {
	return model.Product{
		ID:        id,
		ArtisanID: artisanID,
		Name:      "product " + id,
		Price:     price,
		IsActive:  true,
	}
}

func newCartUsecaseForTest(products ...model.Product) (*CartUsecase, *fakeCartRepo, *fakeProductRepo) {
	cartRepo := newFakeCartRepo()
	productRepo := newFakeProductRepo(products...)
	uc := NewCartUsecase(cartRepo, productRepo, nil, NewKeyedMutex())
	return uc, cartRepo, productRepo
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	he, ok := AsHTTPError(err)
	require.True(t, ok, "HTTPErrorであるべき: %v", err)
	return he.Status
}

// =====================
// AddOrMerge
// =====================

func TestAddOrMerge_CreatesCartWithComputedTotal(t *testing.T) {
	uc, cartRepo, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 1000))

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{
		{ProductID: "p1", Quantity: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, "c1", view.CustomerID)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].Quantity)
	assert.Equal(t, float64(1000), view.Items[0].UnitPriceAtAdd)

	// 合計はクライアント申告ではなくサーバー計算
	assert.Equal(t, float64(2000), view.TotalAmount)

	// 永続化されている
	saved, err := cartRepo.FindByCustomerID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, float64(2000), saved.TotalAmount)
}

func TestAddOrMerge_MergesSameProductIntoOneLine(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 1000))

	_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 3}})
	require.NoError(t, err)

	// 2行にならず数量加算
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(5), view.Items[0].Quantity)
	assert.Equal(t, float64(5000), view.TotalAmount)
}

func TestAddOrMerge_QuantityZeroDefaultsToOne(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 500))

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1"}})

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].Quantity)
	assert.Equal(t, float64(500), view.TotalAmount)
}

func TestAddOrMerge_RejectsNegativeQuantity(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 500))

	_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: -1}})

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestAddOrMerge_RejectsEmptyItems(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest()

	_, err := uc.AddOrMerge(context.Background(), "c1", nil)

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestAddOrMerge_RejectsUnknownProduct(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest()

	_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "missing", Quantity: 1}})

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestAddOrMerge_RejectsInactiveProduct(t *testing.T) {
	p := activeProduct("p1", "a1", 500)
	p.IsActive = false
	uc, _, _ := newCartUsecaseForTest(p)

	_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

// 同じ顧客への同時POSTで更新が消えないこと
func TestAddOrMerge_ConcurrentAddsNoLostUpdate(t *testing.T) {
	const n = 20

	products := make([]model.Product, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, activeProduct(fmt.Sprintf("p%d", i), "a1", 100))
	}
	uc, _, _ := newCartUsecaseForTest(products...)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		g.Go(func() error {
			_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: id, Quantity: 1}})
			return err
		})
	}
	require.NoError(t, g.Wait())

	view, err := uc.GetCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, view.Items, n)
	assert.Equal(t, float64(n*100), view.TotalAmount)
}

// =====================
// SetQuantity / RemoveItem
// =====================

func TestSetQuantity_RecomputesTotalWithLivePrice(t *testing.T) {
	uc, _, productRepo := newCartUsecaseForTest(activeProduct("p1", "a1", 1000))

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	// 追加後に価格が変わる
	productRepo.setPrice("p1", 1200)

	updated, err := uc.SetQuantity(context.Background(), view.ID, "p1", 3)
	require.NoError(t, err)

	// スナップショットではなく現在価格で再計算
	assert.Equal(t, int64(3), updated.Items[0].Quantity)
	assert.Equal(t, float64(3600), updated.TotalAmount)
	assert.Equal(t, float64(1000), updated.Items[0].UnitPriceAtAdd)
}

func TestSetQuantity_NonPositiveRemovesItem(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(
		activeProduct("p1", "a1", 1000),
		activeProduct("p2", "a1", 300),
	)

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	updated, err := uc.SetQuantity(context.Background(), view.ID, "p1", 0)
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, "p2", updated.Items[0].ProductID)
	assert.Equal(t, float64(300), updated.TotalAmount)
}

func TestSetQuantity_MissingItemIsNotFound(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 1000))

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	_, err = uc.SetQuantity(context.Background(), view.ID, "unknown", 2)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestSetQuantity_MissingCartIsNotFound(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest()

	_, err := uc.SetQuantity(context.Background(), "no-cart", "p1", 2)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestRemoveItem_LastItemLeavesEmptyCartWithZeroTotal(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 1000))

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	updated, err := uc.RemoveItem(context.Background(), view.ID, "p1")
	require.NoError(t, err)

	assert.Empty(t, updated.Items)
	assert.Equal(t, float64(0), updated.TotalAmount)
}

// カタログから消えた商品は価格0として合計に入る
func TestRecompute_MissingProductCountsAsZeroPrice(t *testing.T) {
	uc, _, productRepo := newCartUsecaseForTest(
		activeProduct("p1", "a1", 1000),
		activeProduct("p2", "a1", 300),
	)

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	require.NoError(t, err)

	productRepo.remove("p1")

	updated, err := uc.SetQuantity(context.Background(), view.ID, "p2", 2)
	require.NoError(t, err)

	// p1は0円扱い、p2は300×2
	assert.Equal(t, float64(600), updated.TotalAmount)
	require.Len(t, updated.Items, 2)
}

// =====================
// ReplaceCart
// =====================

func TestReplaceCart_ReplacesItemsWholesale(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(
		activeProduct("p1", "a1", 1000),
		activeProduct("p2", "a1", 300),
	)

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 5}})
	require.NoError(t, err)

	replaced, err := uc.ReplaceCart(context.Background(), view.ID, []AddItemInput{
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p2", Quantity: 1}, // 重複は1行にまとまる
	})
	require.NoError(t, err)

	require.Len(t, replaced.Items, 1)
	assert.Equal(t, "p2", replaced.Items[0].ProductID)
	assert.Equal(t, int64(3), replaced.Items[0].Quantity)
	assert.Equal(t, float64(900), replaced.TotalAmount)
}

func TestReplaceCart_RejectsInactiveProduct(t *testing.T) {
	p2 := activeProduct("p2", "a1", 300)
	p2.IsActive = false
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "a1", 1000), p2)

	view, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	// 追加と同じく販売停止中の商品は入れ替えでも弾く
	_, err = uc.ReplaceCart(context.Background(), view.ID, []AddItemInput{{ProductID: "p2", Quantity: 1}})
	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestReplaceCart_MissingCartIsNotFound(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest()

	_, err := uc.ReplaceCart(context.Background(), "no-cart", nil)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

// =====================
// GetCart / CountItems
// =====================

func TestGetCart_AbsentIsNotFound(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest()

	_, err := uc.GetCart(context.Background(), "nobody")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestGetCart_ResolvesProductDetails(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(activeProduct("p1", "artisan-9", 1000))

	_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	view, err := uc.GetCart(context.Background(), "c1")
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, "product p1", view.Items[0].Name)
	assert.Equal(t, "artisan-9", view.Items[0].ArtisanID)
	assert.Equal(t, float64(1000), view.Items[0].Price)
}

// 行数を返す。数量の合計ではない。
func TestCountItems_CountsDistinctLines(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest(
		activeProduct("p1", "a1", 1000),
		activeProduct("p2", "a1", 300),
	)

	_, err := uc.AddOrMerge(context.Background(), "c1", []AddItemInput{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 7},
	})
	require.NoError(t, err)

	count, err := uc.CountItems(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCountItems_NoCartReturnsZero(t *testing.T) {
	uc, _, _ := newCartUsecaseForTest()

	count, err := uc.CountItems(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
