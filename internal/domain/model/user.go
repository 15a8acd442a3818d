package model

import "time"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleArtisan  Role = "ARTISAN"
	RoleAdmin    Role = "ADMIN"
)

type User struct {
	ID            string     `bson:"_id" json:"id"`
	Email         string     `bson:"email" json:"email"`
	PasswordHash  string     `bson:"password_hash" json:"-"`
	Name          string     `bson:"name" json:"name"`
	Role          Role       `bson:"role" json:"role"`
	Bio           string     `bson:"bio,omitempty" json:"bio,omitempty"` // 職人の自己紹介
	IsActive      bool       `bson:"is_active" json:"is_active"`
	EmailVerified bool       `bson:"email_verified" json:"email_verified"`
	LastLoginAt   *time.Time `bson:"last_login_at,omitempty" json:"-"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}
