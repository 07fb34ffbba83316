package gateway

import (
	"errors"
	"os"
)

// Config はgatewayのプロセス全体設定。起動時に一度だけ読み込まれ、
// 以降は変更されない。各コンポーネントには参照として注入する。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// JWTSecret はセッショントークン署名用の秘密鍵。
	JWTSecret string
	// AuthServiceURL は認証サービスのベースURL。
	AuthServiceURL string
	// SecretsServiceURL はシークレットサービスのベースURL。
	SecretsServiceURL string
	// RedisAddr はセッションストア（Redis）のアドレス。
	RedisAddr string
	// FrontendURL はCORSで許可するフロントエンドのオリジン。
	FrontendURL string
}

// ErrMissingJWTSecret は署名秘密鍵が未設定であることを表す。
// 署名鍵なしでのトークン発行は成立しないため、起動時に致命的エラーとする。
var ErrMissingJWTSecret = errors.New("JWT_SECRETが設定されていない")

// LoadConfig は環境変数からgateway設定を読み込む。
// JWT_SECRETは必須で、未設定の場合はエラーを返す。
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnvOr("PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AuthServiceURL:    getEnvOr("AUTH_URL", "http://localhost:3001"),
		SecretsServiceURL: getEnvOr("SECRETS_URL", "http://localhost:3002"),
		RedisAddr:         getEnvOr("REDIS_ADDR", "localhost:6379"),
		FrontendURL:       getEnvOr("FRONTEND_URL", "http://localhost:3000"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定値の妥当性を検証する。
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
