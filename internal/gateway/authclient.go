package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sharmarajdaksh/ckret-backend/pkg/httpclient"
)

// AuthOutcome は認証サービスへの委譲結果の分類。
type AuthOutcome int

const (
	// AuthOK は認証成功（ログイン成功またはアカウント作成成功）を表す。
	AuthOK AuthOutcome = iota
	// AuthInvalidCredentials はユーザー名またはパスワードの不一致を表す。
	AuthInvalidCredentials
	// AuthUsernameTaken はユーザー名が既に使用されていることを表す。
	AuthUsernameTaken
)

// 認証サービスがソフト失敗を通知する本文メッセージのリテラル。
// 認証サービスはこれらの失敗を200ステータスの本文で通知するため、
// ステータスコードではなく本文の照合で分類する。
const (
	msgInvalidCredentials = "Invalid username or password"
	msgUsernameTaken      = "Username taken"
)

// authResponse は認証サービスのレスポンスボディ。
type authResponse struct {
	// Message は認証結果を表すメッセージ。
	Message string `json:"message"`
}

// AuthClient は認証サービスへの委譲を行うクライアント。
// 資格情報の検証・作成そのものは認証サービスが所有し、
// gatewayは結果の分類のみを行う。
type AuthClient struct {
	// client は認証サービスとの通信用HTTPクライアント。
	client *httpclient.Client
}

// NewAuthClient は新しい認証サービスクライアントを生成する。
func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{client: httpclient.New(baseURL)}
}

// Login は資格情報の検証を認証サービスに委譲し、結果を分類して返す。
// 分類不能な応答（200以外のステータス）はエラーとして返す。
func (a *AuthClient) Login(ctx context.Context, username, password string) (AuthOutcome, error) {
	resp, err := a.client.PostJSON(ctx, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return 0, fmt.Errorf("認証サービスへのログイン委譲に失敗: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("認証サービスが予期しないステータスを返した: status=%d", resp.StatusCode)
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, fmt.Errorf("認証サービスのレスポンスのパースに失敗: %w", err)
	}
	if body.Message == msgInvalidCredentials {
		return AuthInvalidCredentials, nil
	}
	return AuthOK, nil
}

// Signup はアカウント作成を認証サービスに委譲し、結果を分類して返す。
func (a *AuthClient) Signup(ctx context.Context, username, password, confirmPassword string) (AuthOutcome, error) {
	resp, err := a.client.PostJSON(ctx, "/signup", map[string]string{
		"username":        username,
		"password":        password,
		"confirmPassword": confirmPassword,
	})
	if err != nil {
		return 0, fmt.Errorf("認証サービスへのサインアップ委譲に失敗: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("認証サービスが予期しないステータスを返した: status=%d", resp.StatusCode)
	}

	var body authResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return 0, fmt.Errorf("認証サービスのレスポンスのパースに失敗: %w", err)
	}
	if body.Message == msgUsernameTaken {
		return AuthUsernameTaken, nil
	}
	return AuthOK, nil
}
