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

type UserMongoRepository struct {
	collection *mongo.Collection
}

// DI
func NewUserMongoRepository(db *mongo.Database) *UserMongoRepository {
	return &UserMongoRepository{collection: db.Collection("users")}
}

func (r *UserMongoRepository) Create(ctx context.Context, user *model.User) error {
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		//一意インデックス競合（事前チェックをすり抜けた同時登録）
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserMongoRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User

	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repo.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}

func (r *UserMongoRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repo.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return &user, nil
}

func (r *UserMongoRepository) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrUserNotFound
	}
	return nil
}

// 管理者用の一覧（新しい順）
func (r *UserMongoRepository) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	return users, total, nil
}
