package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// backendTimeout はバックエンドサービス呼び出しの上限時間。
// 応答しないバックエンドがクライアント接続を無期限に塞がないようにする。
const backendTimeout = 10 * time.Second

// Response はバックエンドサービスからの応答。
// ステータスコードとボディを加工せずそのまま保持し、
// 分類（成功・404・403など）は呼び出し側に委ねる。
type Response struct {
	// StatusCode はバックエンドが返したHTTPステータスコード。
	StatusCode int
	// Body はバックエンドが返したレスポンスボディ。
	Body []byte
}

// OK はステータスコードが2xxであるかを返す。
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client はバックエンドサービスとの通信用HTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先サービスのベースURL。
	baseURL string
}

// New は新しいバックエンド通信用HTTPクライアントを生成する。
// baseURLには接続先サービスのベースURL（例: "http://auth:3001"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: backendTimeout,
		},
		baseURL: baseURL,
	}
}

// Get は指定パスにGETリクエストを送信する。
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// PutJSON は指定パスにJSONボディでPUTリクエストを送信する。
func (c *Client) PutJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete は指定パスにDELETEリクエストを送信する。
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// do はHTTPリクエストを実行する共通処理。
// 通信エラー（接続不可・タイムアウト）のみをエラーとして返し、
// バックエンドのエラーステータスはResponseとしてそのまま返す。
func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}
