package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"memo-notion-api/src/config"
	"memo-notion-api/src/infrastructure/repository"
	"memo-notion-api/src/interface/handler"
	"memo-notion-api/src/logger"
	"memo-notion-api/src/notion"
	"memo-notion-api/src/routes"
	"memo-notion-api/src/storage"
	"memo-notion-api/src/usecase"

	"github.com/gin-gonic/gin"
)

func main() {
	// 設定を読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("設定の読み込みに失敗: %v", err))
	}

	// ロガーを初期化
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.Directory); err != nil {
		panic(fmt.Sprintf("ロガーの初期化に失敗: %v", err))
	}
	defer logger.CloseLogger()

	logger.Log.Info("アプリケーションを開始しています")

	// 必須設定の検証（欠落は起動時の致命的エラー）
	if err := cfg.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("設定が不足しています")
	}

	// S3アップローダーを初期化（設定が有効な場合）
	var uploader *storage.LogUploader
	if cfg.Log.UploadEnabled {
		s3Config := &storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
		}

		uploader, err = storage.NewLogUploader(s3Config, logger.Log)
		if err != nil {
			logger.Log.WithError(err).Error("S3アップローダーの初期化に失敗")
		} else {
			uploader.StartPeriodicUpload(cfg.Log.Directory, cfg.Log.UploadInterval, cfg.Log.UploadMaxAge)
		}
	}

	// 外部ドキュメントサービスのクライアントは起動時に一度だけ構築し、
	// 全リクエストで共有する（以後は読み取り専用）
	notionClient := notion.NewClient(notion.ClientOptions{
		BaseURL: cfg.Notion.BaseURL,
		APIKey:  cfg.Notion.APIKey,
		Timeout: cfg.Notion.Timeout,
	})

	memoRepo := repository.NewNotionMemoRepository(
		notionClient,
		cfg.Notion.DatabaseID,
		cfg.Notion.ContentProperty,
		cfg.Notion.TagProperty,
		logger.Log,
	)
	memoUsecase := usecase.NewMemoUsecase(memoRepo)
	memoHandler := handler.NewMemoHandler(memoUsecase, logger.Log)

	// Ginルーターを初期化
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// NoRouteハンドラー（404）
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse(
			http.StatusNotFound,
			fmt.Sprintf("Can't find %s on this server", c.Request.RequestURI),
		))
	})

	routes.SetupRoutes(r, memoHandler, cfg)

	// グレースフルシャットダウンの設定
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Log.Info("シャットダウンシグナルを受信しました")

		// 最後のログアップロードを実行
		if uploader != nil {
			uploader.Stop()
			if err := uploader.UploadOldLogs(cfg.Log.Directory, 0); err != nil {
				logger.Log.WithError(err).Error("最後のログアップロードに失敗")
			}
		}

		logger.CloseLogger()
		os.Exit(0)
	}()

	// サーバーを起動
	serverAddr := ":" + cfg.Server.Port
	logger.Log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")

	if err := r.Run(serverAddr); err != nil {
		logger.Log.WithError(err).Fatal("サーバーの起動に失敗")
	}
}
