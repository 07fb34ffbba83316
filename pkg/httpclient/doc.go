// Package httpclient はバックエンドサービスとのHTTP通信を行うクライアントを提供する。
//
// gatewayが認証サービス・シークレットサービスのAPIを呼び出す際に使用する。
// ステータスコードの解釈は行わず、通信エラーとバックエンド応答を
// 区別して返すことで、結果の分類を呼び出し側の責務として分離する。
package httpclient
