package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"go-json-todo/internal/config"
	"go-json-todo/internal/database"
	"go-json-todo/internal/logging"
	"go-json-todo/internal/repositories"
	"go-json-todo/internal/routes"
	"go-json-todo/internal/services"
	"go-json-todo/web"
)

// shutdownTimeout は停止シグナル後に処理中のリクエストを待つ時間です。
const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

// run はサーバーを起動し、ctx がキャンセルされるまでブロックします。
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	repo, closeRepo, err := newRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	router, err := newRouter(cfg, repo, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr, "store", cfg.Store.Backend)
		if cfg.Store.Backend == config.BackendFile {
			logger.Info("Todos are saved to", "path", cfg.Store.DataFile)
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newRepository は設定のバックエンドに応じたリポジトリを作成します。戻り値の関数で接続を閉じます。
func newRepository(cfg *config.Config, logger *log.Logger) (repositories.TodoRepository, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMySQL, config.BackendPostgres:
		db, err := database.InitDB(cfg.Store.Backend, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repositories.NewSQLTodoRepository(db, database.DriverName(cfg.Store.Backend), logger)
		return repo, func() { closeDB(db, logger) }, nil
	default:
		repo, err := repositories.NewFileTodoRepository(cfg.Store.DataFile,
			repositories.WithStrictWrites(cfg.Store.StrictWrites),
			repositories.WithSchemaValidation(cfg.Store.ValidateSchema),
			repositories.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}
}

func closeDB(db *sql.DB, logger *log.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("Failed to close database", "err", err)
	}
}

// newRouter はサービスと静的ファイルを組み合わせてルーターを作成します。
func newRouter(cfg *config.Config, repo repositories.TodoRepository, logger *log.Logger) (*gin.Engine, error) {
	if logging.ParseLevel(cfg.Log.Level) != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	assets, err := web.Assets(cfg.Server.PublicDir)
	if err != nil {
		return nil, fmt.Errorf("public dir: %w", err)
	}

	todoService := services.NewTodoService(repo, logger)
	return routes.SetupRouter(todoService, routes.Options{
		Assets:      assets,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}), nil
}
