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

type MessageMongoRepository struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

// DI
func NewMessageMongoRepository(db *mongo.Database) *MessageMongoRepository {
	return &MessageMongoRepository{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
}

// 顧客×職人の会話を取得、無ければ作成
func (r *MessageMongoRepository) GetOrCreateConversation(ctx context.Context, conv model.Conversation) (model.Conversation, error) {
	now := time.Now()

	filter := bson.M{
		"customer_id": conv.CustomerID,
		"artisan_id":  conv.ArtisanID,
	}
	update := bson.M{
		"$set": bson.M{"updated_at": now},
		"$setOnInsert": bson.M{
			"_id":         conv.ID,
			"customer_id": conv.CustomerID,
			"artisan_id":  conv.ArtisanID,
			"created_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out model.Conversation
	if err := r.conversations.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return model.Conversation{}, fmt.Errorf("get or create conversation: %w", err)
	}

	return out, nil
}

func (r *MessageMongoRepository) FindConversationByID(ctx context.Context, conversationID string) (model.Conversation, error) {
	var conv model.Conversation

	err := r.conversations.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Conversation{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Conversation{}, fmt.Errorf("find conversation: %w", err)
	}

	return conv, nil
}

// 参加している会話の一覧（更新が新しい順）
func (r *MessageMongoRepository) ListConversationsByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"customer_id": userID},
			{"artisan_id": userID},
		},
	}

	cur, err := r.conversations.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer cur.Close(ctx)

	convs := []model.Conversation{}
	if err := cur.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}

	return convs, nil
}

func (r *MessageMongoRepository) AppendMessage(ctx context.Context, msg model.Message) error {
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	//会話の更新時刻も進める
	_, err := r.conversations.UpdateOne(ctx,
		bson.M{"_id": msg.ConversationID},
		bson.M{"$set": bson.M{"updated_at": msg.CreatedAt}})
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	return nil
}

// 会話のメッセージを古い順に
func (r *MessageMongoRepository) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	cur, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cur.Close(ctx)

	msgs := []model.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	return msgs, nil
}
