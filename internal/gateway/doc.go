// Package gateway は認証gatewayサービスの内部実装を提供する。
//
// セッショントークンの発行・検証と、シークレットデータのcache-aside
// キャッシュを担当する。資格情報の検証は認証サービスに、シークレットの
// 永続化はシークレットサービスに委譲し、gateway自身はRedisセッション
// ストア以外の状態を持たない。外部からアクセス可能な唯一のサービスであり、
// セキュリティの境界線として機能する。
package gateway
