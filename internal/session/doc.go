// Package session はセッショントークンの発行と、Redisを利用した
// セッションストアへのアクセスを提供する。
//
// セッションストアはユーザー名をキーとするRedisハッシュで、
// tokenフィールド（発行から3時間で失効）とsecretsフィールド
// （明示的な無効化まで保持されるキャッシュ）を独立して管理する。
// ストアは複数のgatewayプロセスから共有される唯一の可変状態である。
//
// tokenフィールドの失効はハッシュフィールドTTL（HEXPIRE）で実現するため、
// 接続先にはRedis 7.4以降が必要。
package session
