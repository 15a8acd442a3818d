package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{productRepo: productRepo}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page      int
	Limit     int
	Q         string
	Category  string
	ArtisanID string
	MinPrice  *float64
	MaxPrice  *float64
	Sort      string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && *in.MinPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && *in.MinPrice > *in.MaxPrice {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:      in.Page,
		Limit:     in.Limit,
		Q:         strings.TrimSpace(in.Q),
		Category:  strings.TrimSpace(in.Category),
		ArtisanID: in.ArtisanID,
		MinPrice:  in.MinPrice,
		MaxPrice:  in.MaxPrice,
		Sort:      in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

// 職人の商品一覧（公開中のみ）
func (u *ProductUsecase) ListByArtisan(ctx context.Context, artisanID string) ([]model.Product, error) {
	if artisanID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid artisan id")
	}

	items, err := u.productRepo.ListByArtisan(ctx, artisanID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	public := make([]model.Product, 0, len(items))
	for _, p := range items {
		if p.IsActive {
			public = append(public, p)
		}
	}
	return public, nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int64
	IsActive    bool
}

// 職人が自分の商品を登録する。
func (u *ProductUsecase) CreateProduct(ctx context.Context, artisanID string, in CreateProductInput) (model.Product, error) {
	if artisanID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	now := time.Now()
	p := model.Product{
		ID:          uuid.NewString(),
		ArtisanID:   artisanID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Stock:       in.Stock,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.productRepo.Create(ctx, p); err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type UpdateProductInput struct {
	Name        string
	Description string
	Category    string
	Price       float64
	Stock       int64
	IsActive    bool
}

// 自分の商品だけ更新できる（管理者は誰のでも）。
func (u *ProductUsecase) UpdateProduct(ctx context.Context, actorID string, actorRole model.Role, productID string, in UpdateProductInput) (model.Product, error) {
	p, err := u.findOwned(ctx, actorID, actorRole, productID)
	if err != nil {
		return model.Product{}, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Category = strings.TrimSpace(in.Category)
	p.Price = in.Price
	p.Stock = in.Stock
	p.IsActive = in.IsActive

	if err := u.productRepo.Update(ctx, p); err != nil {
		if err == repo.ErrNotFound {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// 画像保存後のパスを商品に紐づける。
func (u *ProductUsecase) SetProductImage(ctx context.Context, actorID string, actorRole model.Role, productID string, path string) error {
	if _, err := u.findOwned(ctx, actorID, actorRole, productID); err != nil {
		return err
	}

	if err := u.productRepo.SetImagePath(ctx, productID, path); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, actorID string, actorRole model.Role, productID string) error {
	if _, err := u.findOwned(ctx, actorID, actorRole, productID); err != nil {
		return err
	}

	if err := u.productRepo.SoftDelete(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 所有チェック。他人の商品は404扱い。
func (u *ProductUsecase) findOwned(ctx context.Context, actorID string, actorRole model.Role, productID string) (model.Product, error) {
	if actorID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if actorRole != model.RoleAdmin && p.ArtisanID != actorID {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}
