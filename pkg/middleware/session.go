package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharmarajdaksh/ckret-backend/internal/session"
)

// TokenStore はセッション検証が参照するトークン取得インターフェース。
// internal/session.Store が実装する。
type TokenStore interface {
	Token(ctx context.Context, username string) (string, error)
}

// SessionAuth は提示されたトークンとセッションストアの保存済みトークンを
// 照合するGinミドルウェアを返す。usernameパスパラメータのユーザーに対し、
// Authorizationヘッダーの値（Bearer接頭辞なしの生トークン）を比較する。
//
// 検証は純粋な照合のみを行う。状態を変更せず、成功してもTTLを延長しない。
// ストアとの通信エラーは認証拒否（403）ではなく内部エラー（500）として
// 扱い、両者を混同しない。
func SessionAuth(store TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.Param("username")
		presented := c.GetHeader("Authorization")

		stored, err := store.Token(c.Request.Context(), username)
		if errors.Is(err, session.ErrNoSession) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Invalid or expired auth token",
			})
			return
		}
		if err != nil {
			log.Printf("セッションストアの参照に失敗: user=%s, error=%v", username, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"message": "An error occurred",
			})
			return
		}

		if presented == "" || presented != stored {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Invalid or expired auth token",
			})
			return
		}

		c.Next()
	}
}
