package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// contentTypes は拡張子ごとの Content-Type です。ここに無い拡張子は text/plain になります。
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
}

// ContentType はファイル名から Content-Type を決めます。
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "text/plain"
}

// StaticHandler はブラウザ用クライアントの静的ファイルを配信します。
type StaticHandler struct {
	assets fs.FS
	logger *log.Logger
}

// NewStaticHandler は新しいStaticHandlerを作成します。
func NewStaticHandler(assets fs.FS, logger *log.Logger) *StaticHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &StaticHandler{assets: assets, logger: logger}
}

// ServeHandler はリクエストパスに対応するファイルを返します。"/" は index.html です。
func (h *StaticHandler) ServeHandler(c *gin.Context) {
	name := strings.TrimPrefix(path.Clean("/"+c.Request.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	if h.assets == nil {
		c.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte("File not found"))
		return
	}
	content, err := fs.ReadFile(h.assets, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Data(http.StatusNotFound, "text/plain; charset=utf-8", []byte("File not found"))
			return
		}
		h.logger.Error("Failed to read static file", "path", name, "err", err)
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Server error"))
		return
	}
	c.Data(http.StatusOK, ContentType(name), content)
}
