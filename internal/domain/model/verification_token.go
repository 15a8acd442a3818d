package model

import "time"

// メール認証用トークン。使い捨て、期限つき。
type VerificationToken struct {
	Token     string    `bson:"_id" json:"-"`
	UserID    string    `bson:"user_id" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"-"`
}
