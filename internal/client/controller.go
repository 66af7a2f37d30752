package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"go-json-todo/internal/models"
)

var (
	// ErrEmptyText は空白だけのテキストで追加しようとした場合のエラーです。リクエストは送りません。
	ErrEmptyText = errors.New("todo text is empty")
	// ErrUnknownTodo はローカルのキャッシュに無いIDを指定した場合のエラーです。
	ErrUnknownTodo = errors.New("todo not in local list")
)

// API は Controller が使うタスクストアの操作です。*Client が実装します。
type API interface {
	List(ctx context.Context) ([]models.Todo, error)
	Create(ctx context.Context, text string) (*models.Todo, error)
	Update(ctx context.Context, id int64, patch models.UpdateTodoRequest) (*models.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// Controller はローカルキャッシュ (State) を持ち、すべての変更をストアに転送します。
// キャッシュはストアの応答が成功した後にだけ書き換えます。
type Controller struct {
	api    API
	logger *log.Logger

	mu    sync.Mutex
	state State
}

// NewController は新しいControllerを作成します。
func NewController(api API, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		api:    api,
		logger: logger,
		state:  State{Todos: []models.Todo{}, Filter: FilterAll},
	}
}

// State は現在の状態のコピーを返します。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{Todos: slices.Clone(c.state.Todos), Filter: c.state.Filter}
}

// View は現在の状態を描画用に変換します。
func (c *Controller) View() View {
	return Render(c.State())
}

// SetFilter は表示フィルターを変更します。
func (c *Controller) SetFilter(f Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Filter = f
}

// Load はストアから一覧を取得し、キャッシュを丸ごと置き換えます。
func (c *Controller) Load(ctx context.Context) error {
	todos, err := c.api.List(ctx)
	if err != nil {
		c.logger.Error("Failed to load todos", "err", err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Todos = todos
	return nil
}

// Add は前後の空白を除いた text でTodoを作成し、キャッシュの末尾に追加します。
func (c *Controller) Add(ctx context.Context, text string) (*models.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	todo, err := c.api.Create(ctx, text)
	if err != nil {
		c.logger.Error("Failed to add todo", "err", err)
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Todos = append(c.state.Todos, *todo)
	return todo, nil
}

// Toggle は完了状態を反転します。キャッシュ上の値を元に反転するので、先に Load が必要です。
func (c *Controller) Toggle(ctx context.Context, id int64) (*models.Todo, error) {
	c.mu.Lock()
	i := indexOf(c.state.Todos, id)
	var completed bool
	if i != -1 {
		completed = c.state.Todos[i].Completed
	}
	c.mu.Unlock()
	if i == -1 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTodo, id)
	}

	todo, err := c.api.Update(ctx, id, models.SetCompleted(!completed))
	if err != nil {
		c.logger.Error("Failed to toggle todo", "id", id, "err", err)
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if j := indexOf(c.state.Todos, id); j != -1 {
		c.state.Todos[j] = *todo
	}
	return todo, nil
}

// Delete はストアから削除し、キャッシュからも取り除きます。
// ストアが 404 を返した場合も、既に無いものとしてキャッシュから取り除きます。
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		c.logger.Error("Failed to delete todo", "id", id, "err", err)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := indexOf(c.state.Todos, id); i != -1 {
		c.state.Todos = slices.Delete(c.state.Todos, i, i+1)
	}
	return nil
}

// ClearCompleted はキャッシュ上で完了済みのTodoを1件ずつ順番に削除します。
// 失敗しても残りの削除は続け、すべてのエラーをまとめて返します。
func (c *Controller) ClearCompleted(ctx context.Context) (int, error) {
	c.mu.Lock()
	var ids []int64
	for _, t := range c.state.Todos {
		if t.Completed {
			ids = append(ids, t.ID)
		}
	}
	c.mu.Unlock()

	var errs []error
	removed := 0
	for _, id := range ids {
		if err := c.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete %d: %w", id, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func indexOf(todos []models.Todo, id int64) int {
	return slices.IndexFunc(todos, func(t models.Todo) bool { return t.ID == id })
}
