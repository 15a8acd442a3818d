package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/cache"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type OrderUsecase struct {
	orderRepo   repo.OrderRepository
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	cartCache   cache.CartCache // nil可
	locks       *KeyedMutex     // カートと共有
}

func NewOrderUsecase(
	orderRepo repo.OrderRepository,
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	cartCache cache.CartCache,
	locks *KeyedMutex,
) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cartCache:   cartCache,
		locks:       locks,
	}
}

type OrderListOutput struct {
	Items []model.Order `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// PlaceOrderはカートの中身から注文を作る。
// 商品名・価格はこの時点の値をスナップショットし、カートは空にする。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, customerID string) (model.Order, error) {
	if customerID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//注文中のカート変更を締め出す
	if err := u.locks.Lock(ctx, customerID); err != nil {
		return model.Order{}, lockError(err)
	}
	defer u.locks.Unlock(customerID)

	cart, err := u.cartRepo.FindByCustomerID(ctx, customerID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(cart.Items) == 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	//現在価格でスナップショットを作る
	orderItems := make([]model.OrderItem, 0, len(cart.Items))
	var total float64

	for _, it := range cart.Items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}
		if err != nil {
			return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !p.IsActive {
			return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid product")
		}

		orderItems = append(orderItems, model.OrderItem{
			ProductID:         it.ProductID,
			ArtisanID:         p.ArtisanID,
			NameSnapshot:      p.Name,
			UnitPriceSnapshot: p.Price,
			Quantity:          it.Quantity,
		})
		total += float64(it.Quantity) * p.Price
	}

	now := time.Now()
	order := model.Order{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		Status:      model.OrderStatusPending,
		TotalAmount: total,
		Items:       orderItems,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.orderRepo.Create(ctx, order); err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//カートを空にする（失敗してもここまでの注文は有効）
	cart.Items = []model.LineItem{}
	cart.TotalAmount = 0
	if err := u.cartRepo.Save(ctx, cart); err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if u.cartCache != nil {
		_ = u.cartCache.Delete(ctx, customerID)
	}

	return order, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, customerID string, page int, limit int) (OrderListOutput, error) {
	if customerID == "" {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	orders, total, err := u.orderRepo.ListByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderListOutput{Items: orders, Total: total, Page: page, Limit: limit}, nil
}

// 本人か管理者だけが見られる。他人の注文は存在しない扱い。
func (u *OrderUsecase) GetOrderDetail(ctx context.Context, actorID string, actorRole model.Role, orderID string) (model.Order, error) {
	if actorID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if actorRole != model.RoleAdmin && o.CustomerID != actorID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return o, nil
}

type AdminListOrdersInput struct {
	Page       int
	Limit      int
	Status     string
	CustomerID string
	From       *time.Time
	To         *time.Time
}

func (u *OrderUsecase) AdminListOrders(ctx context.Context, in AdminListOrdersInput) (OrderListOutput, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > 100 {
		in.Limit = 50
	}
	switch in.Status {
	case "", string(model.OrderStatusPending), string(model.OrderStatusPaid),
		string(model.OrderStatusShipped), string(model.OrderStatusCanceled):
	default:
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, total, err := u.orderRepo.ListAdmin(ctx, repo.AdminOrderListFilter{
		Page:       in.Page,
		Limit:      in.Limit,
		Status:     in.Status,
		CustomerID: in.CustomerID,
		From:       in.From,
		To:         in.To,
	})
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderListOutput{Items: orders, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// ステータス遷移: PENDING→PAID→SHIPPED。CANCELEDはPENDING/PAIDから。
func (u *OrderUsecase) AdminUpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (model.Order, error) {
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orderRepo.FindByID(ctx, orderID)
	if err == repo.ErrNotFound {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !canTransition(o.Status, status) {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status transition")
	}

	if err := u.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if err == repo.ErrNotFound {
			return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o.Status = status
	return o, nil
}

func (u *OrderUsecase) AdminStats(ctx context.Context) (repo.OrderStats, error) {
	stats, err := u.orderRepo.Stats(ctx)
	if err != nil {
		return repo.OrderStats{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return stats, nil
}

func canTransition(from model.OrderStatus, to model.OrderStatus) bool {
	switch from {
	case model.OrderStatusPending:
		return to == model.OrderStatusPaid || to == model.OrderStatusCanceled
	case model.OrderStatusPaid:
		return to == model.OrderStatusShipped || to == model.OrderStatusCanceled
	default:
		return false
	}
}
