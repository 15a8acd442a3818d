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

type ProductMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewProductMongoRepository(db *mongo.Database) *ProductMongoRepository {
	return &ProductMongoRepository{collection: db.Collection("products")}
}

// 公開中の商品だけを検索・ページング
func (r *ProductMongoRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	filter := bson.M{
		"is_active":  true,
		"deleted_at": bson.M{"$exists": false},
	}

	if q.Q != "" {
		filter["name"] = bson.M{"$regex": q.Q, "$options": "i"}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.ArtisanID != "" {
		filter["artisan_id"] = q.ArtisanID
	}

	price := bson.M{}
	if q.MinPrice != nil {
		price["$gte"] = *q.MinPrice
	}
	if q.MaxPrice != nil {
		price["$lte"] = *q.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch q.Sort {
	case "price_asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "price_desc":
		sort = bson.D{{Key: "price", Value: -1}}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer cur.Close(ctx)

	items := []model.Product{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	return items, total, nil
}

// IDで1件取得（削除済みは対象外）
func (r *ProductMongoRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product

	filter := bson.M{"_id": id, "deleted_at": bson.M{"$exists": false}}
	err := r.collection.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("find product: %w", err)
	}

	return p, nil
}

// 職人の商品一覧
func (r *ProductMongoRepository) ListByArtisan(ctx context.Context, artisanID string) ([]model.Product, error) {
	filter := bson.M{
		"artisan_id": artisanID,
		"deleted_at": bson.M{"$exists": false},
	}

	cur, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list artisan products: %w", err)
	}
	defer cur.Close(ctx)

	items := []model.Product{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	return items, nil
}

func (r *ProductMongoRepository) Create(ctx context.Context, p model.Product) error {
	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductMongoRepository) Update(ctx context.Context, p model.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 画像の保存先パスだけを更新
func (r *ProductMongoRepository) SetImagePath(ctx context.Context, id string, path string) error {
	update := bson.M{"$set": bson.M{"image_path": path, "updated_at": time.Now()}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set image path: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// deleted_atを立てるだけ（物理削除しない）
func (r *ProductMongoRepository) SoftDelete(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"deleted_at": time.Now(), "is_active": false}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
