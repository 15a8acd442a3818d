package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewReviewMongoRepository(db *mongo.Database) *ReviewMongoRepository {
	return &ReviewMongoRepository{collection: db.Collection("reviews")}
}

// 同じ顧客×商品のレビューは上書き
func (r *ReviewMongoRepository) Upsert(ctx context.Context, review model.Review) error {
	now := time.Now()

	filter := bson.M{
		"customer_id": review.CustomerID,
		"product_id":  review.ProductID,
	}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":         review.ID,
			"customer_id": review.CustomerID,
			"product_id":  review.ProductID,
			"created_at":  now,
		},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert review: %w", err)
	}
	return nil
}

func (r *ReviewMongoRepository) FindByID(ctx context.Context, reviewID string) (model.Review, error) {
	var review model.Review

	err := r.collection.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Review{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Review{}, fmt.Errorf("find review: %w", err)
	}

	return review, nil
}

func (r *ReviewMongoRepository) ListByProductID(ctx context.Context, productID string) ([]model.Review, error) {
	cur, err := r.collection.Find(ctx, bson.M{"product_id": productID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer cur.Close(ctx)

	reviews := []model.Review{}
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *ReviewMongoRepository) DeleteByID(ctx context.Context, reviewID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": reviewID})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 平均評価と件数の集計
func (r *ReviewMongoRepository) AverageRating(ctx context.Context, productID string) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate reviews: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, 0, fmt.Errorf("decode rating: %w", err)
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}

	return rows[0].Avg, rows[0].Count, nil
}
