// Package handlers は HTTP ハンドラーを提供します。
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-json-todo/internal/models"
	"go-json-todo/internal/repositories"
	"go-json-todo/internal/services"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// parseID は :id パラメータを読みます。失敗した場合は 400 を書き込んで false を返します。
// 数字でない id は静的ファイルの検索に回さず、ここで 400 を返します。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

// writeStoreError はリポジトリのエラーをステータスコードに変換します。
func writeStoreError(c *gin.Context, err error, message string) {
	if errors.Is(err, repositories.ErrTodoNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

// GetTodosHandler はTodoリストを保存順で返します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	todos, err := h.todoService.GetTodos()
	if err != nil {
		writeStoreError(c, err, "Failed to fetch todos")
		return
	}
	c.JSON(http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	todo, err := h.todoService.GetTodoByID(id)
	if err != nil {
		writeStoreError(c, err, "Failed to fetch todo")
		return
	}
	c.JSON(http.StatusOK, todo)
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	createdTodo, err := h.todoService.CreateTodo(*req.Text)
	if err != nil {
		writeStoreError(c, err, "Failed to save todos")
		return
	}
	c.JSON(http.StatusCreated, createdTodo)
}

// UpdateTodoHandler はTodoを部分更新します。
// 存在確認をボディの解析より先に行うので、未知のIDには不正なボディでも 404 を返します。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.todoService.GetTodoByID(id); err != nil {
		writeStoreError(c, err, "Failed to fetch todo")
		return
	}

	var patch models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		// 空のボディ (io.EOF) は空のパッチとして扱う
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	updatedTodo, err := h.todoService.UpdateTodo(id, patch)
	if err != nil {
		writeStoreError(c, err, "Failed to save todos")
		return
	}
	c.JSON(http.StatusOK, updatedTodo)
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.todoService.DeleteTodo(id); err != nil {
		writeStoreError(c, err, "Failed to save todos")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HealthHandler は保存先の疎通を確認します。
func (h *TodoHandler) HealthHandler(c *gin.Context) {
	if err := h.todoService.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "store": h.todoService.StoreName(), "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.todoService.StoreName()})
}
