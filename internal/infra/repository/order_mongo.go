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

type OrderMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewOrderMongoRepository(db *mongo.Database) *OrderMongoRepository {
	return &OrderMongoRepository{collection: db.Collection("orders")}
}

func (r *OrderMongoRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var order model.Order

	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("find order: %w", err)
	}

	return order, nil
}

func (r *OrderMongoRepository) ListByCustomerID(ctx context.Context, customerID string, page int, limit int) ([]model.Order, int64, error) {
	filter := bson.M{"customer_id": customerID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := []model.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	return orders, total, nil
}

func (r *OrderMongoRepository) Create(ctx context.Context, order model.Order) error {
	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderMongoRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 管理者用の注文一覧
func (r *OrderMongoRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	filter := bson.M{}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}

	created := bson.M{}
	if f.From != nil {
		created["$gte"] = *f.From
	}
	if f.To != nil {
		created["$lt"] = *f.To
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list admin orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := []model.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}

	return orders, total, nil
}

// 件数・売上・ステータス別件数をまとめて集計
func (r *OrderMongoRepository) Stats(ctx context.Context) (repo.OrderStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total_amount"},
		}}},
	}

	cur, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return repo.OrderStats{}, fmt.Errorf("aggregate orders: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status  string  `bson:"_id"`
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return repo.OrderStats{}, fmt.Errorf("decode stats: %w", err)
	}

	stats := repo.OrderStats{ByStatus: map[string]int64{}}
	for _, row := range rows {
		stats.TotalOrders += row.Count
		stats.ByStatus[row.Status] = row.Count

		//キャンセルは売上に入れない
		if row.Status != string(model.OrderStatusCanceled) {
			stats.Revenue += row.Revenue
		}
	}

	return stats, nil
}
