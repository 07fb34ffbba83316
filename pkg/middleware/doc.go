// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッショントークンの照合、リクエストID付与、パニックリカバリ、
// CORS設定など、gatewayのリクエスト処理で共通して使用するミドルウェアを含む。
package middleware
