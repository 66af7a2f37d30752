// Package routesはroutingを行います。
package routes

import (
	"io/fs"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-json-todo/internal/handlers"
	"go-json-todo/internal/services"
)

// Options はルーターの組み立てに使う設定です。
type Options struct {
	// Assets はブラウザ用クライアントの静的ファイルです。nil なら静的配信は常に 404 です。
	Assets fs.FS
	// CORSOrigins が空か "*" を含む場合はすべてのオリジンを許可します。
	CORSOrigins []string
	Logger      *log.Logger
}

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(todoService *services.TodoService, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService)
	staticHandler := handlers.NewStaticHandler(opts.Assets, logger)

	// ルーティング
	api := r.Group("/api")
	{
		api.GET("/health", todoHandler.HealthHandler)
		api.GET("/todos", todoHandler.GetTodosHandler)
		api.POST("/todos", todoHandler.CreateTodoHandler)
		api.GET("/todos/:id", todoHandler.GetTodoByIDHandler)
		api.PUT("/todos/:id", todoHandler.UpdateTodoHandler)
		api.DELETE("/todos/:id", todoHandler.DeleteTodoHandler)
	}

	// 上記以外はプリフライトなら 204、それ以外は静的ファイル
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		staticHandler.ServeHandler(c)
	})

	return r
}

// corsConfig は許可するオリジンから CORS 設定を作成します。
func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type"}
	return config
}
