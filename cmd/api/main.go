package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	"app/internal/infra/mail"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/upload"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"
	"app/internal/validator"
	"app/pkg/logger"
	"app/pkg/shutdown"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	logger.New(logger.Options{
		Service: "marketplace-api",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := shutdown.WithSignals(context.Background())
	defer stop()

	//DB接続
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoDB, err := db.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		slog.Error("mongo connect failed", "err", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoDB.Client().Disconnect(disconnectCtx)
	}()

	if err := db.EnsureIndexes(connectCtx, mongoDB); err != nil {
		slog.Error("index ensure failed", "err", err)
		os.Exit(1)
	}

	//Redisは設定があるときだけ（無ければキャッシュ無し）
	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(connectCtx).Err(); err != nil {
			slog.Warn("redis unavailable, cache disabled", "err", err)
		} else {
			cartCache = cache.NewRedisCartCache(rdb)
			defer rdb.Close()
		}
	}

	//Repository（mongo実装）生成
	userRepo := infraRepo.NewUserMongoRepository(mongoDB)
	productRepo := infraRepo.NewProductMongoRepository(mongoDB)
	cartRepo := infraRepo.NewCartMongoRepository(mongoDB)
	orderRepo := infraRepo.NewOrderMongoRepository(mongoDB)
	reviewRepo := infraRepo.NewReviewMongoRepository(mongoDB)
	favoriteRepo := infraRepo.NewFavoriteMongoRepository(mongoDB)
	messageRepo := infraRepo.NewMessageMongoRepository(mongoDB)
	tokenRepo := infraRepo.NewVerificationTokenMongoRepository(mongoDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}

	//認証メール
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	//商品画像の保存先
	images, err := upload.NewLocalImageStore(cfg.UploadDir)
	if err != nil {
		slog.Error("upload dir init failed", "err", err)
		os.Exit(1)
	}

	//顧客ごとの直列化ロック。カートと注文で共有する。
	locks := usecase.NewKeyedMutex()

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	registerUC := auth.NewRegisterUserUsecase(userRepo, tokenRepo, authValidator, hasher, mailer, idGen, clock, cfg.APIURL)
	loginUC := auth.NewLoginUsecase(userRepo, authValidator, verifier, issuer, clock)
	verifyUC := auth.NewVerifyEmailUsecase(tokenRepo, userRepo, clock)

	userUC := usecase.NewUserUsecase(userRepo)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, cartCache, locks)
	orderUC := usecase.NewOrderUsecase(orderRepo, cartRepo, productRepo, cartCache, locks)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, productRepo)
	messageUC := usecase.NewMessageUsecase(messageRepo, userRepo)

	//Server起動
	srv := server.New(cfg)
	srv.RegisterRoutes(server.Handlers{
		Auth:           handler.NewAuthHandler(registerUC, loginUC, verifyUC, cfg.FEURL),
		User:           handler.NewUserHandler(userUC),
		Product:        handler.NewProductHandler(productUC),
		ArtisanProduct: handler.NewArtisanProductHandler(productUC, images),
		Cart:           handler.NewCartHandler(cartUC),
		Order:          handler.NewOrderHandler(orderUC),
		Review:         handler.NewReviewHandler(reviewUC),
		Favorite:       handler.NewFavoriteHandler(favoriteUC),
		Message:        handler.NewMessageHandler(messageUC),
	})

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.Start(); err != nil {
			slog.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	//シグナル受信後は猶予つきで閉じる
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}

	slog.Info("server stopped cleanly")
}
