package model

import "time"

type Product struct {
	ID          string     `bson:"_id" json:"id"`
	ArtisanID   string     `bson:"artisan_id" json:"artisan_id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description" json:"description"`
	Category    string     `bson:"category" json:"category"`
	Price       float64    `bson:"price" json:"price"`
	Stock       int64      `bson:"stock" json:"stock"`
	ImagePath   string     `bson:"image_path,omitempty" json:"image_path,omitempty"`
	IsActive    bool       `bson:"is_active" json:"is_active"`
	DeletedAt   *time.Time `bson:"deleted_at,omitempty" json:"-"` // ソフトデリート
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}
