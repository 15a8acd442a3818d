package server

import (
	"app/internal/handler"
)

// アプリの全ハンドラ
type Handlers struct {
	Auth           *handler.AuthHandler
	User           *handler.UserHandler
	Product        *handler.ProductHandler
	ArtisanProduct *handler.ArtisanProductHandler
	Cart           *handler.CartHandler
	Order          *handler.OrderHandler
	Review         *handler.ReviewHandler
	Favorite       *handler.FavoriteHandler
	Message        *handler.MessageHandler
}

// 全ルートを登録する
func (s *Server) RegisterRoutes(h Handlers) {
	h.Auth.RegisterRoutes(s.echo)
	h.User.RegisterRoutes(s.echo, s.cfg)
	h.Product.RegisterRoutes(s.echo)
	h.ArtisanProduct.RegisterRoutes(s.echo, s.cfg)
	h.Cart.RegisterRoutes(s.echo, s.cfg)
	h.Order.RegisterRoutes(s.echo, s.cfg)
	h.Review.RegisterRoutes(s.echo, s.cfg)
	h.Favorite.RegisterRoutes(s.echo, s.cfg)
	h.Message.RegisterRoutes(s.echo, s.cfg)
}
