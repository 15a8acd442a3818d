package repository

import (
	"context"

	"app/internal/domain/model"
)

type MessageRepository interface {
	// 顧客×職人の会話を取得し、無ければ作成
	GetOrCreateConversation(ctx context.Context, conv model.Conversation) (model.Conversation, error)
	FindConversationByID(ctx context.Context, conversationID string) (model.Conversation, error)
	// 自分が参加している会話の一覧（新しい順）
	ListConversationsByUser(ctx context.Context, userID string) ([]model.Conversation, error)

	AppendMessage(ctx context.Context, msg model.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
}
