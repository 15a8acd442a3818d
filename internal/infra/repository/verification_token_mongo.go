package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type VerificationTokenMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewVerificationTokenMongoRepository(db *mongo.Database) *VerificationTokenMongoRepository {
	return &VerificationTokenMongoRepository{collection: db.Collection("verification_tokens")}
}

func (r *VerificationTokenMongoRepository) Create(ctx context.Context, token model.VerificationToken) error {
	if _, err := r.collection.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("insert verification token: %w", err)
	}
	return nil
}

// 取得と削除を1回で行う（同じトークンを二度使わせない）
func (r *VerificationTokenMongoRepository) Consume(ctx context.Context, token string) (model.VerificationToken, error) {
	var out model.VerificationToken

	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.VerificationToken{}, repo.ErrTokenNotFound
	}
	if err != nil {
		return model.VerificationToken{}, fmt.Errorf("consume verification token: %w", err)
	}

	return out, nil
}
