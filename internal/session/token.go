package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer はセッショントークンを発行する。
// プロセス全体で共有される署名秘密鍵を保持し、鍵は起動後変更されない。
type Issuer struct {
	// secret はHMAC-SHA256署名用の秘密鍵。クライアントには渡らない。
	secret []byte
}

// NewIssuer は新しいトークン発行器を生成する。
// 秘密鍵が空でないことは起動時の設定検証で保証される。
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret)}
}

// Issue はユーザー名と発行時刻を署名付きでエンコードしたトークンを返す。
// 有効期限はトークン自体には含めない。失効はセッションストア側の
// tokenフィールドTTLで管理する。
//
// jtiにはUUIDを採番する。発行ごとにトークン文字列が必ず変わることで、
// 再ログイン時の「最新のトークンだけが通用する」という上書き無効化が
// 同一秒内の再発行でも成立する。
func (i *Issuer) Issue(username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(time.Now()),
		ID:       uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}
