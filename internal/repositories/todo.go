// Package repositories はタスクリストの永続化を行うリポジトリを提供します。
package repositories

import (
	"errors"
	"sync"
	"time"

	"go-json-todo/internal/models"
)

// ErrTodoNotFound はTODOが見つからない場合のエラーです。
var ErrTodoNotFound = errors.New("todo not found")

// TodoRepository はタスクリストの保存先を抽象化します。
// FindAll は保存順 (古いものが先) で返します。
type TodoRepository interface {
	FindAll() ([]models.Todo, error)
	FindByID(id int64) (*models.Todo, error)
	Create(text string) (*models.Todo, error)
	Update(id int64, patch models.UpdateTodoRequest) (*models.Todo, error)
	Delete(id int64) error
}

// Pinger は保存先の疎通確認ができるリポジトリが実装します。
type Pinger interface {
	Ping() error
}

// IDGenerator はミリ秒エポックを元に、重複しないIDを払い出します。
// 同じミリ秒に複数作成されても last+1 を返すので衝突しません。
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator は新しいIDGeneratorを作成します。now が nil なら time.Now を使います。
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next は floor (既存IDの最大値) と直前の払い出し値のどちらよりも大きいIDを返します。
func (g *IDGenerator) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	if id <= floor {
		id = floor + 1
	}
	g.last = id
	return id
}

func maxID(todos []models.Todo) int64 {
	var m int64
	for _, t := range todos {
		if t.ID > m {
			m = t.ID
		}
	}
	return m
}

func indexOf(todos []models.Todo, id int64) int {
	for i := range todos {
		if todos[i].ID == id {
			return i
		}
	}
	return -1
}
