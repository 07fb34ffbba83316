package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS は許可済みオリジンからのクロスオリジンリクエストを受け入れる
// Ginミドルウェアを返す。gatewayは設定されたフロントエンドオリジンのみを
// 許可し、セッショントークンを運ぶAuthorizationヘッダーの送信を認める。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Max-Age", "86400")
		}

		// プリフライトはここで完結させ、後続ハンドラには渡さない
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
