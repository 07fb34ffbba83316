package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sharmarajdaksh/ckret-backend/pkg/httpclient"
)

// ErrSecretNotFound はシークレットサービスが対象のシークレットを
// 見つけられなかったことを表す。
var ErrSecretNotFound = errors.New("シークレットが見つからない")

// ErrSecretForbidden はシークレットサービスが操作を拒否したことを表す。
var ErrSecretForbidden = errors.New("シークレットへの操作が許可されていない")

// SecretsClient はシークレットサービスへの呼び出しを行うクライアント。
// シークレットの永続化はシークレットサービスが所有し、gatewayは
// ペイロードをそのまま転送する。
type SecretsClient struct {
	// client はシークレットサービスとの通信用HTTPクライアント。
	client *httpclient.Client
}

// NewSecretsClient は新しいシークレットサービスクライアントを生成する。
func NewSecretsClient(baseURL string) *SecretsClient {
	return &SecretsClient{client: httpclient.New(baseURL)}
}

// Fetch はユーザーの全シークレットをシークレットサービスから取得する。
func (s *SecretsClient) Fetch(ctx context.Context, username string) ([]byte, error) {
	resp, err := s.client.Get(ctx, "/"+username)
	if err != nil {
		return nil, fmt.Errorf("シークレットの取得に失敗: %w", err)
	}
	return classify(resp)
}

// Create はユーザーにシークレットを追加する。
func (s *SecretsClient) Create(ctx context.Context, username, key, value string) ([]byte, error) {
	resp, err := s.client.PostJSON(ctx, "/"+username, map[string]string{
		"key":   key,
		"value": value,
	})
	if err != nil {
		return nil, fmt.Errorf("シークレットの追加に失敗: %w", err)
	}
	return classify(resp)
}

// Update は既存のシークレットを更新する。
func (s *SecretsClient) Update(ctx context.Context, username, secretID, key, value string) ([]byte, error) {
	resp, err := s.client.PutJSON(ctx, "/"+username+"/"+secretID, map[string]string{
		"key":   key,
		"value": value,
	})
	if err != nil {
		return nil, fmt.Errorf("シークレットの更新に失敗: %w", err)
	}
	return classify(resp)
}

// Delete は既存のシークレットを削除する。
func (s *SecretsClient) Delete(ctx context.Context, username, secretID string) ([]byte, error) {
	resp, err := s.client.Delete(ctx, "/"+username+"/"+secretID)
	if err != nil {
		return nil, fmt.Errorf("シークレットの削除に失敗: %w", err)
	}
	return classify(resp)
}

// classify はシークレットサービスの応答をgatewayのエラー分類に変換する。
// 404と403は専用のエラーへ、それ以外の失敗ステータスは未分類の
// 内部エラーとして扱う。成功時はペイロードをそのまま返す。
func classify(resp *httpclient.Response) ([]byte, error) {
	switch {
	case resp.OK():
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrSecretNotFound
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrSecretForbidden
	default:
		return nil, fmt.Errorf("シークレットサービスが予期しないステータスを返した: status=%d", resp.StatusCode)
	}
}
