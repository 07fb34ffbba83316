package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenTTL はセッショントークンの有効期間。発行時点からの絶対期限であり、
// 検証が成功しても延長されない（スライディング方式は採用しない）。
const TokenTTL = 3 * time.Hour

const (
	// fieldToken はセッショントークンを保持するハッシュフィールド名。
	fieldToken = "token"
	// fieldSecrets はシークレットのキャッシュを保持するハッシュフィールド名。
	fieldSecrets = "secrets"
)

// ErrNoSession は対象ユーザーのセッショントークンが存在しない
// （未発行またはTTL失効済み）ことを表す。
var ErrNoSession = errors.New("アクティブなセッションが存在しない")

// ErrCacheMiss は対象ユーザーのシークレットキャッシュが存在しないことを表す。
var ErrCacheMiss = errors.New("シークレットキャッシュが存在しない")

// Store はRedisをバックエンドとするセッションストア。
// ユーザー名ごとにtokenとsecretsの2フィールドを持つハッシュを管理する。
type Store struct {
	// rdb はRedisクライアント。複数goroutineから安全に共有できる。
	rdb *redis.Client
}

// NewStore は新しいセッションストアを生成する。
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// SaveToken はユーザーのセッショントークンを保存し、tokenフィールドに
// TTLを設定する。既存のトークンは無条件に上書きされる（再ログインによる
// 旧トークンの無効化はこの上書きのみで実現する）。
func (s *Store) SaveToken(ctx context.Context, username, token string) error {
	if err := s.rdb.HSet(ctx, username, fieldToken, token).Err(); err != nil {
		return fmt.Errorf("トークンの保存に失敗: %w", err)
	}
	// secretsフィールドには影響させず、tokenフィールドのみ失効させる
	if err := s.rdb.HExpire(ctx, username, TokenTTL, fieldToken).Err(); err != nil {
		return fmt.Errorf("トークンTTLの設定に失敗: %w", err)
	}
	return nil
}

// Token はユーザーの保存済みセッショントークンを取得する。
// トークンが存在しない場合はErrNoSessionを返す。Redisとの通信エラーは
// ErrNoSessionとは区別されたエラーとして返す。
func (s *Store) Token(ctx context.Context, username string) (string, error) {
	token, err := s.rdb.HGet(ctx, username, fieldToken).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("トークンの取得に失敗: %w", err)
	}
	return token, nil
}

// CachedSecrets はユーザーのシークレットキャッシュを取得する。
// キャッシュが存在しない場合はErrCacheMissを返す。
func (s *Store) CachedSecrets(ctx context.Context, username string) ([]byte, error) {
	blob, err := s.rdb.HGet(ctx, username, fieldSecrets).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("シークレットキャッシュの取得に失敗: %w", err)
	}
	return blob, nil
}

// StoreSecrets はバックエンドから取得したシークレットをキャッシュに保存する。
// secretsフィールドにTTLは設定しない。次の変更操作による無効化まで保持される。
func (s *Store) StoreSecrets(ctx context.Context, username string, blob []byte) error {
	if err := s.rdb.HSet(ctx, username, fieldSecrets, blob).Err(); err != nil {
		return fmt.Errorf("シークレットキャッシュの保存に失敗: %w", err)
	}
	return nil
}

// InvalidateSecrets はユーザーのシークレットキャッシュを削除する。
// キャッシュが存在しない場合も成功として扱う（冪等）。
func (s *Store) InvalidateSecrets(ctx context.Context, username string) error {
	if err := s.rdb.HDel(ctx, username, fieldSecrets).Err(); err != nil {
		return fmt.Errorf("シークレットキャッシュの無効化に失敗: %w", err)
	}
	return nil
}
