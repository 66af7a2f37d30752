// Package client はタスクストアの HTTP API を呼び出すクライアントと、
// ローカルキャッシュを持つコントローラーを提供します。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-json-todo/internal/models"
)

// APITimeout は1回のAPI呼び出しのタイムアウトです。
const APITimeout = 5 * time.Second

// ErrNotFound は API が 404 を返したことを表します。errors.Is で判定します。
var ErrNotFound = errors.New("todo not found")

// APIError は 2xx 以外のレスポンスです。
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Is は 404 を ErrNotFound として扱います。
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client はタスクストアの HTTP クライアントです。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option は Client の設定を変更します。
type Option func(*Client)

// WithHTTPClient は使用する http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New は baseURL (例: http://localhost:3000) に接続するクライアントを作成します。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: APITimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL は接続先を返します。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List は保存順ですべてのTodoを取得します。
func (c *Client) List(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	return todos, nil
}

// Get は指定IDのTodoを取得します。
func (c *Client) Get(ctx context.Context, id int64) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodGet, todoPath(id), nil, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Create は新しいTodoを作成します。
func (c *Client) Create(ctx context.Context, text string) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", models.CreateTodoRequest{Text: &text}, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update は patch で指定したフィールドを更新します。
func (c *Client) Update(ctx context.Context, id int64, patch models.UpdateTodoRequest) (*models.Todo, error) {
	var todo models.Todo
	if err := c.do(ctx, http.MethodPut, todoPath(id), patch, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete は指定IDのTodoを削除します。
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id int64) string {
	return "/api/todos/" + strconv.FormatInt(id, 10)
}

// do はリクエストを送り、2xx なら out にデコードします。
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
