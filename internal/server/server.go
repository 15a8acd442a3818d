package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"app/internal/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// HTTPサーバ本体。echoを包むだけ。
type Server struct {
	echo *echo.Echo
	cfg  config.Config
}

func New(cfg config.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(requestLogger())

	// フロントのオリジンだけ許可（未設定なら全許可で開発向け）
	cors := echomw.DefaultCORSConfig
	if cfg.FEURL != "" {
		cors.AllowOrigins = []string{cfg.FEURL}
	}
	e.Use(echomw.CORSWithConfig(cors))

	// アップロード画像の配信
	e.Static("/uploads", cfg.UploadDir)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{echo: e, cfg: cfg}
}

// ルート登録に使うechoを返す
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Startはブロックする。
func (s *Server) Start() error {
	return s.echo.Start(":" + s.cfg.Port)
}

// 処理中のリクエストを待ってから閉じる
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// slogでアクセスログを1行出す
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)

			return err
		}
	}
}
