package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	MongoURI string // MongoDB接続URI
	MongoDB  string // DB名

	RedisAddr     string // Redisホスト:ポート（空ならキャッシュ無効）
	RedisPassword string

	JWTSecret string // JWT署名シークレット

	SMTPHost     string // 認証メール送信用SMTP
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string // 送信元アドレス

	UploadDir string // 商品画像の保存先

	GoEnv    string // dev/prod
	APIURL   string // 認証リンクなどで使う自分のURL
	FEURL    string // フロントURL（CORSで使う）
	LogLevel string
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getenv("MONGO_DB", "marketplace"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "no-reply@localhost"),

		UploadDir: getenv("UPLOAD_DIR", "./uploads"),

		GoEnv:    getenv("GO_ENV", "dev"),
		APIURL:   getenv("API_URL", "http://localhost:8080"),
		FEURL:    os.Getenv("FE_URL"),
		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	smtpPort, err := atoiDefault("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	cfg.SMTPPort = smtpPort

	//必須チェック
	if cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
