package repository

import (
	"context"
	"fmt"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavoriteMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewFavoriteMongoRepository(db *mongo.Database) *FavoriteMongoRepository {
	return &FavoriteMongoRepository{collection: db.Collection("favorites")}
}

// 既にあれば何もしない（冪等）
func (r *FavoriteMongoRepository) Add(ctx context.Context, fav model.Favorite) error {
	filter := bson.M{
		"customer_id": fav.CustomerID,
		"product_id":  fav.ProductID,
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":         fav.ID,
			"customer_id": fav.CustomerID,
			"product_id":  fav.ProductID,
			"created_at":  fav.CreatedAt,
		},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteMongoRepository) Remove(ctx context.Context, customerID string, productID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{
		"customer_id": customerID,
		"product_id":  productID,
	})
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *FavoriteMongoRepository) ListByCustomerID(ctx context.Context, customerID string) ([]model.Favorite, error) {
	cur, err := r.collection.Find(ctx, bson.M{"customer_id": customerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer cur.Close(ctx)

	favs := []model.Favorite{}
	if err := cur.All(ctx, &favs); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}

	return favs, nil
}

func (r *FavoriteMongoRepository) CountByProductID(ctx context.Context, productID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"product_id": productID})
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}
