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

type ReviewUsecase struct {
	reviewRepo  repo.ReviewRepository
	productRepo repo.ProductRepository
}

func NewReviewUsecase(reviewRepo repo.ReviewRepository, productRepo repo.ProductRepository) *ReviewUsecase {
	return &ReviewUsecase{reviewRepo: reviewRepo, productRepo: productRepo}
}

type PostReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
}

// 商品レビュー一覧と平均評価
type ProductReviewsOutput struct {
	Items   []model.Review `json:"items"`
	Average float64        `json:"average"`
	Count   int64          `json:"count"`
}

// 投稿。同じ顧客×商品は上書きになる。
func (u *ReviewUsecase) PostReview(ctx context.Context, customerID string, in PostReviewInput) (model.Review, error) {
	if customerID == "" {
		return model.Review{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "rating must be 1..5")
	}
	if len(in.Comment) > 2000 {
		return model.Review{}, NewHTTPError(http.StatusBadRequest, "comment too long")
	}

	//存在する商品にしか書けない
	if _, err := u.productRepo.FindByID(ctx, in.ProductID); err != nil {
		if err == repo.ErrNotFound {
			return model.Review{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	review := model.Review{
		ID:         uuid.NewString(),
		ProductID:  in.ProductID,
		CustomerID: customerID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := u.reviewRepo.Upsert(ctx, review); err != nil {
		return model.Review{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return review, nil
}

func (u *ReviewUsecase) ListProductReviews(ctx context.Context, productID string) (ProductReviewsOutput, error) {
	if productID == "" {
		return ProductReviewsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	reviews, err := u.reviewRepo.ListByProductID(ctx, productID)
	if err != nil {
		return ProductReviewsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	avg, count, err := u.reviewRepo.AverageRating(ctx, productID)
	if err != nil {
		return ProductReviewsOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductReviewsOutput{Items: reviews, Average: avg, Count: count}, nil
}

// 本人か管理者だけ削除できる。
func (u *ReviewUsecase) DeleteReview(ctx context.Context, actorID string, actorRole model.Role, reviewID string) error {
	if actorID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if reviewID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	review, err := u.reviewRepo.FindByID(ctx, reviewID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if actorRole != model.RoleAdmin && review.CustomerID != actorID {
		return NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.reviewRepo.DeleteByID(ctx, reviewID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
