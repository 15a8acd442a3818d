package model

import "time"

// 顧客×職人の組につき会話は1つ。
type Conversation struct {
	ID         string    `bson:"_id" json:"id"`
	CustomerID string    `bson:"customer_id" json:"customer_id"`
	ArtisanID  string    `bson:"artisan_id" json:"artisan_id"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type Message struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	SenderID       string    `bson:"sender_id" json:"sender_id"`
	Body           string    `bson:"body" json:"body"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}
