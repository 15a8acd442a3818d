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

type fakeFavoriteRepo struct {
	mu   sync.Mutex
	favs []model.Favorite
}

func (f *fakeFavoriteRepo) Add(ctx context.Context, fav model.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.favs {
		if x.CustomerID == fav.CustomerID && x.ProductID == fav.ProductID {
			return nil // 冪等
		}
	}
	f.favs = append(f.favs, fav)
	return nil
}

func (f *fakeFavoriteRepo) Remove(ctx context.Context, customerID string, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, x := range f.favs {
		if x.CustomerID == customerID && x.ProductID == productID {
			f.favs = append(f.favs[:i], f.favs[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeFavoriteRepo) ListByCustomerID(ctx context.Context, customerID string) ([]model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Favorite{}
	for _, x := range f.favs {
		if x.CustomerID == customerID {
			out = append(out, x)
		}
	}
	return out, nil
}

func (f *fakeFavoriteRepo) CountByProductID(ctx context.Context, productID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, x := range f.favs {
		if x.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func newFavoriteUsecaseForTest(products ...model.Product) (*FavoriteUsecase, *fakeProductRepo) {
	productRepo := newFakeProductRepo(products...)
	return NewFavoriteUsecase(&fakeFavoriteRepo{}, productRepo), productRepo
}

func TestAddFavorite_DuplicateIsIdempotent(t *testing.T) {
	uc, _ := newFavoriteUsecaseForTest(activeProduct("p1", "a1", 1000))

	require.NoError(t, uc.AddFavorite(context.Background(), "c1", "p1"))
	require.NoError(t, uc.AddFavorite(context.Background(), "c1", "p1"))

	count, err := uc.CountForProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddFavorite_UnknownProductIsNotFound(t *testing.T) {
	uc, _ := newFavoriteUsecaseForTest()

	err := uc.AddFavorite(context.Background(), "c1", "missing")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestRemoveFavorite_AbsentIsNotFound(t *testing.T) {
	uc, _ := newFavoriteUsecaseForTest(activeProduct("p1", "a1", 1000))

	err := uc.RemoveFavorite(context.Background(), "c1", "p1")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

// 商品が消えたお気に入りは一覧から落ちる
func TestListFavorites_SkipsVanishedProducts(t *testing.T) {
	uc, productRepo := newFavoriteUsecaseForTest(
		activeProduct("p1", "a1", 1000),
		activeProduct("p2", "a1", 300),
	)

	require.NoError(t, uc.AddFavorite(context.Background(), "c1", "p1"))
	require.NoError(t, uc.AddFavorite(context.Background(), "c1", "p2"))

	productRepo.remove("p1")

	views, err := uc.ListFavorites(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "p2", views[0].ProductID)
}
