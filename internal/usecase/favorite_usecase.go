package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type FavoriteUsecase struct {
	favoriteRepo repo.FavoriteRepository
	productRepo  repo.ProductRepository
}

func NewFavoriteUsecase(favoriteRepo repo.FavoriteRepository, productRepo repo.ProductRepository) *FavoriteUsecase {
	return &FavoriteUsecase{favoriteRepo: favoriteRepo, productRepo: productRepo}
}

// お気に入りを商品情報つきで返す
type FavoriteView struct {
	ProductID string        `json:"product_id"`
	Product   model.Product `json:"product"`
	AddedAt   time.Time     `json:"added_at"`
}

// 追加。既にあれば何も起きない（冪等）。
func (u *FavoriteUsecase) AddFavorite(ctx context.Context, customerID string, productID string) error {
	if customerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	fav := model.Favorite{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		ProductID:  productID,
		CreatedAt:  time.Now(),
	}
	if err := u.favoriteRepo.Add(ctx, fav); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *FavoriteUsecase) RemoveFavorite(ctx context.Context, customerID string, productID string) error {
	if customerID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.favoriteRepo.Remove(ctx, customerID, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 一覧。消えた商品のお気に入りは飛ばす。
func (u *FavoriteUsecase) ListFavorites(ctx context.Context, customerID string) ([]FavoriteView, error) {
	if customerID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	favs, err := u.favoriteRepo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	views := make([]FavoriteView, 0, len(favs))
	for _, f := range favs {
		p, err := u.productRepo.FindByID(ctx, f.ProductID)
		if err == repo.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		views = append(views, FavoriteView{
			ProductID: f.ProductID,
			Product:   p,
			AddedAt:   f.CreatedAt,
		})
	}
	return views, nil
}

func (u *FavoriteUsecase) CountForProduct(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	count, err := u.favoriteRepo.CountByProductID(ctx, productID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return count, nil
}
