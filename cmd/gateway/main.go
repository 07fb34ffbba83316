// 認証gatewayサービスのエントリポイント。
// セッショントークンの発行・検証、シークレットデータのキャッシュ、
// バックエンドサービスへのリクエスト転送を担当する。
// 外部からアクセス可能な唯一のサービスであり、セキュリティの境界線となる。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sharmarajdaksh/ckret-backend/internal/gateway"
)

// shutdownTimeout は停止処理（接続のクローズとバックグラウンド書き込みの
// 待ち合わせ）の上限時間。
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := gateway.LoadConfig()
	if err != nil {
		log.Fatalf("gateway設定の読み込みに失敗: %v", err)
	}

	server := gateway.NewServer(cfg)

	go func() {
		log.Printf("gatewayサービスを起動します: :%s", cfg.Port)
		if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("gatewayサービスの起動に失敗: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Println("gatewayサービスを停止します")
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("gatewayサービスの停止に失敗: %v", err)
	}
}
