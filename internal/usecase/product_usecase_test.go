package usecase

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductUsecaseForTest(products ...model.Product) (*ProductUsecase, *fakeProductRepo) {
	productRepo := newFakeProductRepo(products...)
	return NewProductUsecase(productRepo), productRepo
}

func TestListPublicProducts_RejectsBadInput(t *testing.T) {
	uc, _ := newProductUsecaseForTest()

	cases := []struct {
		name string
		in   ListProductsInput
	}{
		{"page 0", ListProductsInput{Page: 0, Limit: 20}},
		{"limit over 100", ListProductsInput{Page: 1, Limit: 101}},
		{"bad sort", ListProductsInput{Page: 1, Limit: 20, Sort: "cheapest"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ListPublicProducts(context.Background(), tc.in)
			assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
		})
	}
}

func TestListPublicProducts_RejectsInvertedPriceRange(t *testing.T) {
	uc, _ := newProductUsecaseForTest()

	min := 500.0
	max := 100.0
	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{
		Page: 1, Limit: 20, MinPrice: &min, MaxPrice: &max,
	})

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

func TestGetProductDetail_InactiveLooksAbsent(t *testing.T) {
	p := activeProduct("p1", "a1", 1000)
	p.IsActive = false
	uc, _ := newProductUsecaseForTest(p)

	_, err := uc.GetProductDetail(context.Background(), "p1")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestCreateProduct_SetsOwner(t *testing.T) {
	uc, productRepo := newProductUsecaseForTest()

	p, err := uc.CreateProduct(context.Background(), "artisan-1", CreateProductInput{
		Name:     "  湯呑み  ",
		Price:    1800,
		Stock:    3,
		IsActive: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "artisan-1", p.ArtisanID)
	assert.Equal(t, "湯呑み", p.Name)
	assert.NotEmpty(t, p.ID)

	saved, err := productRepo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1800), saved.Price)
}

func TestCreateProduct_RejectsNegativePrice(t *testing.T) {
	uc, _ := newProductUsecaseForTest()

	_, err := uc.CreateProduct(context.Background(), "artisan-1", CreateProductInput{
		Name:  "x",
		Price: -1,
	})

	assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
}

// 他人の商品は404扱い（存在を漏らさない）。管理者は触れる。
func TestUpdateProduct_Ownership(t *testing.T) {
	uc, _ := newProductUsecaseForTest(activeProduct("p1", "artisan-1", 1000))

	in := UpdateProductInput{Name: "new name", Price: 1200, Stock: 1, IsActive: true}

	_, err := uc.UpdateProduct(context.Background(), "artisan-2", model.RoleArtisan, "p1", in)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	updated, err := uc.UpdateProduct(context.Background(), "artisan-1", model.RoleArtisan, "p1", in)
	require.NoError(t, err)
	assert.Equal(t, "new name", updated.Name)

	_, err = uc.UpdateProduct(context.Background(), "someone", model.RoleAdmin, "p1", in)
	require.NoError(t, err)
}

func TestDeleteProduct_OwnerOnly(t *testing.T) {
	uc, productRepo := newProductUsecaseForTest(activeProduct("p1", "artisan-1", 1000))

	err := uc.DeleteProduct(context.Background(), "artisan-2", model.RoleArtisan, "p1")
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	require.NoError(t, uc.DeleteProduct(context.Background(), "artisan-1", model.RoleArtisan, "p1"))

	_, err = productRepo.FindByID(context.Background(), "p1")
	assert.Error(t, err)
}
