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

type CartMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewCartMongoRepository(db *mongo.Database) *CartMongoRepository {
	return &CartMongoRepository{collection: db.Collection("carts")}
}

// 顧客IDでカートを1件取得
func (r *CartMongoRepository) FindByCustomerID(ctx context.Context, customerID string) (model.Cart, error) {
	var cart model.Cart

	err := r.collection.FindOne(ctx, bson.M{"customer_id": customerID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("find cart by customer: %w", err)
	}

	return cart, nil
}

// カートIDで1件取得
func (r *CartMongoRepository) FindByID(ctx context.Context, cartID string) (model.Cart, error) {
	var cart model.Cart

	err := r.collection.FindOne(ctx, bson.M{"_id": cartID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("find cart by id: %w", err)
	}

	return cart, nil
}

// 全カートを取得（管理者用）
func (r *CartMongoRepository) ListAll(ctx context.Context) ([]model.Cart, error) {
	cur, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list carts: %w", err)
	}
	defer cur.Close(ctx)

	carts := []model.Cart{}
	if err := cur.All(ctx, &carts); err != nil {
		return nil, fmt.Errorf("decode carts: %w", err)
	}

	return carts, nil
}

// カート1ドキュメントをupsert（永続層側で原子的）
func (r *CartMongoRepository) Save(ctx context.Context, cart model.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"_id": cart.ID}

	_, err := r.collection.ReplaceOne(ctx, filter, cart, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	return nil
}
