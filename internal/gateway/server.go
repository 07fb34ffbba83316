package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/sharmarajdaksh/ckret-backend/internal/session"
	"github.com/sharmarajdaksh/ckret-backend/pkg/middleware"
)

// 既存クライアントとの互換のために維持している非標準のステータスコード割り当て。
// 認証サービス由来のソフト失敗を、入力検証エラー（422）とも
// 内部エラー（500）とも区別できるコードで返す。
const (
	// statusUsernameTaken はユーザー名重複時のステータスコード。
	statusUsernameTaken = 421
	// statusInvalidCredentials は資格情報不一致時のステータスコード。
	statusInvalidCredentials = http.StatusLocked
)

// backgroundWriteTimeout はレスポンス送信後に行うセッションストア書き込みの上限時間。
const backgroundWriteTimeout = 10 * time.Second

// Server は認証gatewayのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はプロセス全体設定。
	cfg *Config
	// store はRedisセッションストア。
	store *session.Store
	// issuer はセッショントークン発行器。
	issuer *session.Issuer
	// auth は認証サービスクライアント。
	auth *AuthClient
	// secrets はシークレットサービスクライアント。
	secrets *SecretsClient
	// httpServer はShutdown制御用のHTTPサーバー。Runで初期化される。
	httpServer *http.Server
	// bg はレスポンス送信後のストア書き込みを追跡するWaitGroup。
	// Shutdown時に未完了の書き込みを待ち合わせる。
	bg sync.WaitGroup
}

// NewServer は新しいgatewayサーバーを生成する。
func NewServer(cfg *Config) *Server {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router:  router,
		cfg:     cfg,
		store:   session.NewStore(rdb),
		issuer:  session.NewIssuer(cfg.JWTSecret),
		auth:    NewAuthClient(cfg.AuthServiceURL),
		secrets: NewSecretsClient(cfg.SecretsServiceURL),
	}
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.Port),
		Handler: s.router,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown はHTTPサーバーを停止し、未完了のバックグラウンド書き込みを
// 待ち合わせる。書き込みの完了を観測しないままプロセスが終了しないようにする。
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("バックグラウンド書き込みの完了待ちがタイムアウト: %w", ctx.Err())
	}
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証エンドポイント（トークン不要）
	s.router.POST("/signup", s.handleSignup())
	s.router.POST("/login", s.handleLogin())

	// シークレットエンドポイント（セッショントークン必須）
	secrets := s.router.Group("/secrets")
	secrets.Use(middleware.SessionAuth(s.store))
	{
		secrets.GET("/:username", s.handleGetSecrets())
		secrets.POST("/:username", s.handleAddSecret())
		secrets.PUT("/:username/:secretId", s.handleUpdateSecret())
		secrets.DELETE("/:username/:secretId", s.handleDeleteSecret())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// background はレスポンス送信後のセッションストア書き込みを
// 独立したgoroutineで実行する。失敗はログに記録するのみで、
// リクエスト処理には影響させない。
func (s *Server) background(task string, fn func(ctx context.Context) error) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundWriteTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Printf("バックグラウンド書き込みに失敗: task=%s, error=%v", task, err)
		}
	}()
}

// internalError は未分類のエラーをログに記録し、500レスポンスを返す。
func (s *Server) internalError(c *gin.Context, err error) {
	log.Printf("内部エラー: %s %s (request_id=%s): %v",
		c.Request.Method, c.Request.URL.Path, middleware.GetRequestID(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
}

// signupRequest はサインアップリクエストのボディ。
type signupRequest struct {
	// Username はアカウントのユーザー名。
	Username string `json:"username"`
	// Password はアカウントのパスワード。
	Password string `json:"password"`
	// ConfirmPassword は確認用パスワード。Passwordと一致する必要がある。
	ConfirmPassword string `json:"confirmPassword"`
}

// handleSignup はアカウント作成を認証サービスに委譲し、成功時に
// セッショントークンを発行するハンドラを返す。
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req signupRequest
		// ボディ不正は後続のフィールド検証で422として扱う
		_ = c.ShouldBindJSON(&req)

		if req.Password != req.ConfirmPassword {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Passwords do not match"})
			return
		}
		if req.Username == "" || req.Password == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "You must provide a username and password"})
			return
		}

		outcome, err := s.auth.Signup(c.Request.Context(), req.Username, req.Password, req.ConfirmPassword)
		if err != nil {
			s.internalError(c, err)
			return
		}
		if outcome == AuthUsernameTaken {
			c.JSON(statusUsernameTaken, gin.H{"message": "Username taken"})
			return
		}

		token, err := s.issuer.Issue(req.Username)
		if err != nil {
			s.internalError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "New user created", "token": token})

		// トークンの永続化はレスポンス送信を待たせない。書き込み完了前に
		// 届いた検証リクエストはセッション未登録として拒否される（fail closed）。
		username := req.Username
		s.background("token-write", func(ctx context.Context) error {
			return s.store.SaveToken(ctx, username, token)
		})
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	// Username はアカウントのユーザー名。
	Username string `json:"username"`
	// Password はアカウントのパスワード。
	Password string `json:"password"`
}

// handleLogin は資格情報の検証を認証サービスに委譲し、成功時に
// セッショントークンを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		_ = c.ShouldBindJSON(&req)

		if req.Username == "" || req.Password == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "You must provide a username and password"})
			return
		}

		outcome, err := s.auth.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			s.internalError(c, err)
			return
		}
		if outcome == AuthInvalidCredentials {
			c.JSON(statusInvalidCredentials, gin.H{"message": "Invalid username or password"})
			return
		}

		token, err := s.issuer.Issue(req.Username)
		if err != nil {
			s.internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token})

		username := req.Username
		s.background("token-write", func(ctx context.Context) error {
			return s.store.SaveToken(ctx, username, token)
		})
	}
}

// handleGetSecrets はシークレット一覧を返すハンドラを返す。
// キャッシュヒット時はシークレットサービスを呼ばずにキャッシュを返し、
// ミス時は取得結果を返した後にキャッシュへ補充する（cache-aside）。
func (s *Server) handleGetSecrets() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		cached, err := s.store.CachedSecrets(c.Request.Context(), username)
		if err == nil {
			c.Data(http.StatusOK, "application/json", cached)
			return
		}
		if !errors.Is(err, session.ErrCacheMiss) {
			// ストア障害はキャッシュミスとは区別して内部エラーとする
			s.internalError(c, err)
			return
		}

		payload, err := s.secrets.Fetch(c.Request.Context(), username)
		if err != nil {
			s.internalError(c, err)
			return
		}

		c.Data(http.StatusOK, "application/json", payload)

		s.background("secrets-cache-write", func(ctx context.Context) error {
			return s.store.StoreSecrets(ctx, username, payload)
		})
	}
}

// secretRequest はシークレットの追加・更新リクエストのボディ。
type secretRequest struct {
	// Key はシークレットのキー。
	Key string `json:"key"`
	// Value はシークレットの値。
	Value string `json:"value"`
}

// handleAddSecret はシークレット追加をシークレットサービスに転送するハンドラを返す。
func (s *Server) handleAddSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")

		var req secretRequest
		_ = c.ShouldBindJSON(&req)

		if req.Key == "" || req.Value == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "You must provide a key and value for a secret"})
			return
		}

		payload, err := s.secrets.Create(c.Request.Context(), username, req.Key, req.Value)
		if err != nil {
			s.respondSecretsError(c, err)
			return
		}

		s.respondMutation(c, username, payload)
	}
}

// handleUpdateSecret はシークレット更新をシークレットサービスに転送するハンドラを返す。
func (s *Server) handleUpdateSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		secretID := c.Param("secretId")

		var req secretRequest
		_ = c.ShouldBindJSON(&req)

		payload, err := s.secrets.Update(c.Request.Context(), username, secretID, req.Key, req.Value)
		if err != nil {
			s.respondSecretsError(c, err)
			return
		}

		s.respondMutation(c, username, payload)
	}
}

// handleDeleteSecret はシークレット削除をシークレットサービスに転送するハンドラを返す。
func (s *Server) handleDeleteSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		secretID := c.Param("secretId")

		payload, err := s.secrets.Delete(c.Request.Context(), username, secretID)
		if err != nil {
			s.respondSecretsError(c, err)
			return
		}

		s.respondMutation(c, username, payload)
	}
}

// respondMutation は変更操作の成功応答を返す。シークレットサービスでの
// 変更が確定した時点でキャッシュを同期的に無効化し、そのうえで
// バックエンドのペイロードをそのまま返す。無効化に失敗した場合は
// 古いキャッシュを残したまま成功を装わないよう、内部エラーとして報告する。
func (s *Server) respondMutation(c *gin.Context, username string, payload []byte) {
	if err := s.store.InvalidateSecrets(c.Request.Context(), username); err != nil {
		log.Printf("変更確定後のキャッシュ無効化に失敗: user=%s, error=%v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
		return
	}
	c.Data(http.StatusOK, "application/json", payload)
}

// respondSecretsError はシークレットサービスのエラー分類に応じた
// レスポンスを返す。変更が確定していないため、キャッシュには触れない。
func (s *Server) respondSecretsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSecretNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Secret for the current user with passed id not found"})
	case errors.Is(err, ErrSecretForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Unauthorized"})
	default:
		s.internalError(c, err)
	}
}
