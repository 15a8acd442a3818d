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

// 顧客×商品で1件に上書きするフェイク
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]model.Review // key: review ID
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[string]model.Review{}}
}

func (f *fakeReviewRepo) Upsert(ctx context.Context, review model.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, r := range f.reviews {
		if r.CustomerID == review.CustomerID && r.ProductID == review.ProductID {
			review.ID = r.ID
			f.reviews[id] = review
			return nil
		}
	}
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) FindByID(ctx context.Context, reviewID string) (model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok {
		return model.Review{}, repo.ErrNotFound
	}
	return r, nil
}

func (f *fakeReviewRepo) ListByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Review{}
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) DeleteByID(ctx context.Context, reviewID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[reviewID]; !ok {
		return repo.ErrNotFound
	}
	delete(f.reviews, reviewID)
	return nil
}

func (f *fakeReviewRepo) AverageRating(ctx context.Context, productID string) (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum, count int64
	for _, r := range f.reviews {
		if r.ProductID == productID {
			sum += int64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func newReviewUsecaseForTest(products ...model.Product) (*ReviewUsecase, *fakeReviewRepo) {
	reviewRepo := newFakeReviewRepo()
	productRepo := newFakeProductRepo(products...)
	return NewReviewUsecase(reviewRepo, productRepo), reviewRepo
}

func TestPostReview_RejectsOutOfRangeRating(t *testing.T) {
	uc, _ := newReviewUsecaseForTest(activeProduct("p1", "a1", 1000))

	for _, rating := range []int{0, 6, -1} {
		_, err := uc.PostReview(context.Background(), "c1", PostReviewInput{
			ProductID: "p1",
			Rating:    rating,
		})
		assert.Equal(t, http.StatusBadRequest, httpStatus(t, err))
	}
}

func TestPostReview_UnknownProductIsNotFound(t *testing.T) {
	uc, _ := newReviewUsecaseForTest()

	_, err := uc.PostReview(context.Background(), "c1", PostReviewInput{
		ProductID: "missing",
		Rating:    4,
	})
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

// 同じ顧客×商品の再投稿は上書きで2件にならない
func TestPostReview_RepostOverwrites(t *testing.T) {
	uc, _ := newReviewUsecaseForTest(activeProduct("p1", "a1", 1000))

	_, err := uc.PostReview(context.Background(), "c1", PostReviewInput{ProductID: "p1", Rating: 2})
	require.NoError(t, err)

	_, err = uc.PostReview(context.Background(), "c1", PostReviewInput{ProductID: "p1", Rating: 5})
	require.NoError(t, err)

	out, err := uc.ListProductReviews(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, 5, out.Items[0].Rating)
	assert.Equal(t, int64(1), out.Count)
}

func TestListProductReviews_Average(t *testing.T) {
	uc, _ := newReviewUsecaseForTest(activeProduct("p1", "a1", 1000))

	_, err := uc.PostReview(context.Background(), "c1", PostReviewInput{ProductID: "p1", Rating: 2})
	require.NoError(t, err)
	_, err = uc.PostReview(context.Background(), "c2", PostReviewInput{ProductID: "p1", Rating: 4})
	require.NoError(t, err)

	out, err := uc.ListProductReviews(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, float64(3), out.Average)
	assert.Equal(t, int64(2), out.Count)
}

func TestDeleteReview_OwnerOrAdminOnly(t *testing.T) {
	uc, _ := newReviewUsecaseForTest(activeProduct("p1", "a1", 1000))

	review, err := uc.PostReview(context.Background(), "c1", PostReviewInput{ProductID: "p1", Rating: 4})
	require.NoError(t, err)

	// 他人は404扱い
	err = uc.DeleteReview(context.Background(), "c2", model.RoleCustomer, review.ID)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	// 本人は消せる
	require.NoError(t, uc.DeleteReview(context.Background(), "c1", model.RoleCustomer, review.ID))
}
