// Package testutil はハンドラーやルーターのテストで共通に使うヘルパーです。
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-json-todo/internal/logging"
	"go-json-todo/internal/models"
	"go-json-todo/internal/repositories"
	"go-json-todo/internal/routes"
	"go-json-todo/internal/services"
	"go-json-todo/web"
)

// SetupTestRouter はテスト用の一時ディレクトリにJSONファイルストアを作り、ルーターを組み立てます。
// 戻り値の2つ目はデータファイルのパスです。
func SetupTestRouter(t *testing.T, opts ...repositories.FileOption) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataFile := filepath.Join(t.TempDir(), "todos.json")
	opts = append([]repositories.FileOption{
		repositories.WithLogger(logging.Discard()),
		repositories.WithSchemaValidation(true),
	}, opts...)
	repo, err := repositories.NewFileTodoRepository(dataFile, opts...)
	require.NoError(t, err)

	assets, err := web.Assets("")
	require.NoError(t, err)

	todoService := services.NewTodoService(repo, logging.Discard())
	router := routes.SetupRouter(todoService, routes.Options{
		Assets:      assets,
		CORSOrigins: []string{"*"},
		Logger:      logging.Discard(),
	})
	return router, dataFile
}

// DoJSON はJSONボディ付きのリクエストを送り、レスポンスを返します。body が nil の場合はボディなしです。
func DoJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// CreateTestTodo はAPI経由でTODOを作成し、レスポンスのTODOを返します。
func CreateTestTodo(t *testing.T, router http.Handler, text string) *models.Todo {
	t.Helper()

	w := DoJSON(t, router, http.MethodPost, "/api/todos", map[string]any{"text": text})
	require.Equal(t, http.StatusCreated, w.Code, "TODO作成に失敗しました: %s", w.Body.String())

	var created models.Todo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	return &created
}

// IDString は Todo の id を URL やコマンド引数に埋め込む10進文字列にします。
func IDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
