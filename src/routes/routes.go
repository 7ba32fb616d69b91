package routes

import (
	"memo-notion-api/src/config"
	"memo-notion-api/src/interface/handler"
	"memo-notion-api/src/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, memoHandler *handler.MemoHandler, cfg *config.Config) {
	api := r.Group("/api")
	api.Use(middleware.LoggerMiddleware())
	api.Use(middleware.CORSMiddleware())
	api.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimitPerMin))

	// ヘルスチェックは認証の対象外
	api.GET("/health", memoHandler.Health)

	// メモAPIルート（AUTH_TOKENが設定されている場合のみ認証）
	memos := api.Group("")
	if cfg.Auth.Token != "" {
		memos.Use(middleware.AuthMiddleware(cfg.Auth.Token))
	}
	{
		memos.POST("/memo", memoHandler.CreateMemo)
		memos.GET("/memos", memoHandler.ListMemos)
		memos.PATCH("/memo/:id", memoHandler.UpdateMemo)
		memos.DELETE("/memo/:id", memoHandler.ArchiveMemo)
	}
}
