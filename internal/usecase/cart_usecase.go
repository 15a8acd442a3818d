package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// CartUsecaseは顧客1人につき1つのカートを管理する。
// 合計金額は常に sum(数量 × 現在の商品価格) をサーバー側で再計算する。
// 同じ顧客への変更は顧客IDごとのロックで直列化する（同時POSTで更新が消えないように）。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	cartCache   cache.CartCache // nilならキャッシュ無し
	locks       *KeyedMutex
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	cartCache cache.CartCache,
	locks *KeyedMutex,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cartCache:   cartCache,
		locks:       locks,
	}
}

// 明細に商品の現在情報を足した形
type CartItemView struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	ArtisanID      string  `json:"artisan_id"`
	Quantity       int64   `json:"quantity"`
	UnitPriceAtAdd float64 `json:"unit_price_at_add"`
	Price          float64 `json:"price"` // 現在価格（商品が消えていたら0）
}

type CartView struct {
	ID          string         `json:"id"`
	CustomerID  string         `json:"customer_id"`
	Items       []CartItemView `json:"items"`
	TotalAmount float64        `json:"total_amount"`
}

// POST /cart の1明細
type AddItemInput struct {
	ProductID string
	Quantity  int64 // 0なら1扱い
}

// GetCartは顧客のカートを商品情報つきで返す。
func (u *CartUsecase) GetCart(ctx context.Context, customerID string) (CartView, error) {
	if customerID == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	cart, err := u.loadByCustomer(ctx, customerID)
	if err == repo.ErrNotFound {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartView(ctx, cart)
}

// GetCartByIDはカートIDで1件返す。
func (u *CartUsecase) GetCartByID(ctx context.Context, cartID string) (CartView, error) {
	if cartID == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartView(ctx, cart)
}

// ListCartsは全カートを返す（管理者用）。
func (u *CartUsecase) ListCarts(ctx context.Context) ([]CartView, error) {
	carts, err := u.cartRepo.ListAll(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	views := make([]CartView, 0, len(carts))
	for _, c := range carts {
		v, err := u.buildCartView(ctx, c)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// AddOrMergeはカートに明細を追加する。無ければ作り、同じ商品は数量を加算する。
// 合計はクライアントの申告値ではなく現在価格から計算し直す。
func (u *CartUsecase) AddOrMerge(ctx context.Context, customerID string, items []AddItemInput) (CartView, error) {
	if customerID == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	if len(items) == 0 {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
		}
		if it.Quantity < 0 {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	//同じ顧客のread-modify-writeを直列化
	if err := u.locks.Lock(ctx, customerID); err != nil {
		return CartView{}, lockError(err)
	}
	defer u.locks.Unlock(customerID)

	cart, err := u.cartRepo.FindByCustomerID(ctx, customerID)
	if err == repo.ErrNotFound {
		cart = model.Cart{
			ID:         uuid.NewString(),
			CustomerID: customerID,
			Items:      []model.LineItem{},
		}
	} else if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	for _, in := range items {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}

		//追加時点の価格をスナップショット（存在しない商品は追加できない）
		p, err := u.productRepo.FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}
		if err != nil {
			return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}

		//同じ商品は1明細にまとめる
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == in.ProductID {
				cart.Items[i].Quantity += qty
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, model.LineItem{
				ProductID:      in.ProductID,
				Quantity:       qty,
				UnitPriceAtAdd: p.Price,
				AddedAt:        now,
			})
		}
	}

	if err := u.recomputeTotal(ctx, &cart); err != nil {
		return CartView{}, err
	}
	if err := u.saveAndInvalidate(ctx, cart); err != nil {
		return CartView{}, err
	}

	return u.buildCartView(ctx, cart)
}

// SetQuantityは明細の数量を指定値にする。0以下は削除として扱う。
func (u *CartUsecase) SetQuantity(ctx context.Context, cartID string, productID string, quantity int64) (CartView, error) {
	if quantity <= 0 {
		return u.RemoveItem(ctx, cartID, productID)
	}

	return u.mutateItem(ctx, cartID, productID, func(cart *model.Cart, idx int) {
		cart.Items[idx].Quantity = quantity
	})
}

// RemoveItemは明細を削除する。
func (u *CartUsecase) RemoveItem(ctx context.Context, cartID string, productID string) (CartView, error) {
	return u.mutateItem(ctx, cartID, productID, func(cart *model.Cart, idx int) {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	})
}

// ReplaceCartは明細を丸ごと入れ替える（PUT）。同じ商品は1明細にまとめる。
func (u *CartUsecase) ReplaceCart(ctx context.Context, cartID string, items []AddItemInput) (CartView, error) {
	if cartID == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}
	for _, it := range items {
		if it.ProductID == "" {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
		}
		if it.Quantity < 0 {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.locks.Lock(ctx, cart.CustomerID); err != nil {
		return CartView{}, lockError(err)
	}
	defer u.locks.Unlock(cart.CustomerID)

	//ロック取得後に読み直す
	cart, err = u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	newItems := []model.LineItem{}
	for _, in := range items {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}

		p, err := u.productRepo.FindByID(ctx, in.ProductID)
		if err == repo.ErrNotFound {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}
		if err != nil {
			return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}

		merged := false
		for i := range newItems {
			if newItems[i].ProductID == in.ProductID {
				newItems[i].Quantity += qty
				merged = true
				break
			}
		}
		if !merged {
			newItems = append(newItems, model.LineItem{
				ProductID:      in.ProductID,
				Quantity:       qty,
				UnitPriceAtAdd: p.Price,
				AddedAt:        now,
			})
		}
	}
	cart.Items = newItems

	if err := u.recomputeTotal(ctx, &cart); err != nil {
		return CartView{}, err
	}
	if err := u.saveAndInvalidate(ctx, cart); err != nil {
		return CartView{}, err
	}

	return u.buildCartView(ctx, cart)
}

// CountItemsは明細の行数を返す（数量の合計ではない）。カートが無ければ0。
func (u *CartUsecase) CountItems(ctx context.Context, customerID string) (int, error) {
	if customerID == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}

	cart, err := u.loadByCustomer(ctx, customerID)
	if err == repo.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return len(cart.Items), nil
}

// 明細1つの変更（PATCH/DELETE）の共通処理。
// カートを引いて顧客ロックを取り、読み直してから変更・再計算・保存する。
func (u *CartUsecase) mutateItem(ctx context.Context, cartID string, productID string, apply func(cart *model.Cart, idx int)) (CartView, error) {
	if cartID == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid cart id")
	}
	if productID == "" {
		return CartView{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	cart, err := u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.locks.Lock(ctx, cart.CustomerID); err != nil {
		return CartView{}, lockError(err)
	}
	defer u.locks.Unlock(cart.CustomerID)

	//ロック取得後に読み直す
	cart, err = u.cartRepo.FindByID(ctx, cartID)
	if err == repo.ErrNotFound {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return CartView{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	apply(&cart, idx)

	if err := u.recomputeTotal(ctx, &cart); err != nil {
		return CartView{}, err
	}
	if err := u.saveAndInvalidate(ctx, cart); err != nil {
		return CartView{}, err
	}

	return u.buildCartView(ctx, cart)
}

// 合計を現在価格から計算し直す。消えた商品は価格0として扱う。
func (u *CartUsecase) recomputeTotal(ctx context.Context, cart *model.Cart) error {
	var total float64

	for _, it := range cart.Items {
		price, err := u.livePrice(ctx, it.ProductID)
		if err != nil {
			return err
		}
		total += float64(it.Quantity) * price
	}

	cart.TotalAmount = total
	return nil
}

func (u *CartUsecase) livePrice(ctx context.Context, productID string) (float64, error) {
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p.Price, nil
}

// キャッシュ経由でカートを読む。外れたらDBから読んで埋める。
func (u *CartUsecase) loadByCustomer(ctx context.Context, customerID string) (model.Cart, error) {
	if u.cartCache != nil {
		if cached, err := u.cartCache.Get(ctx, customerID); err == nil {
			return *cached, nil
		}
	}

	cart, err := u.cartRepo.FindByCustomerID(ctx, customerID)
	if err != nil {
		return model.Cart{}, err
	}

	if u.cartCache != nil {
		//キャッシュ書き込み失敗は無視してよい
		_ = u.cartCache.Set(ctx, customerID, &cart)
	}

	return cart, nil
}

func (u *CartUsecase) saveAndInvalidate(ctx context.Context, cart model.Cart) error {
	if err := u.cartRepo.Save(ctx, cart); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if u.cartCache != nil {
		_ = u.cartCache.Delete(ctx, cart.CustomerID)
	}
	return nil
}

// 明細に商品の現在情報を足してビューを作る。
func (u *CartUsecase) buildCartView(ctx context.Context, cart model.Cart) (CartView, error) {
	items := make([]CartItemView, 0, len(cart.Items))

	for _, it := range cart.Items {
		view := CartItemView{
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitPriceAtAdd: it.UnitPriceAtAdd,
		}

		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err == nil {
			view.Name = p.Name
			view.ArtisanID = p.ArtisanID
			view.Price = p.Price
		} else if err != repo.ErrNotFound {
			return CartView{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items = append(items, view)
	}

	return CartView{
		ID:          cart.ID,
		CustomerID:  cart.CustomerID,
		Items:       items,
		TotalAmount: cart.TotalAmount,
	}, nil
}

// ロック待ちがcontextで打ち切られたときの変換
func lockError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewHTTPError(http.StatusGatewayTimeout, "timeout")
	}
	return NewHTTPError(http.StatusInternalServerError, "canceled")
}
