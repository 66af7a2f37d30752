// Package services はタスクリストのビジネスロジックを提供します。
package services

import (
	"github.com/charmbracelet/log"

	"go-json-todo/internal/models"
	"go-json-todo/internal/repositories"
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo repositories.TodoRepository
	logger   *log.Logger
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo repositories.TodoRepository, logger *log.Logger) *TodoService {
	if logger == nil {
		logger = log.Default()
	}
	return &TodoService{todoRepo: todoRepo, logger: logger}
}

// GetTodos は保存順ですべてのTodoを取得します。
func (s *TodoService) GetTodos() ([]models.Todo, error) {
	return s.todoRepo.FindAll()
}

// GetTodoByID は指定IDのTodoを取得します。
func (s *TodoService) GetTodoByID(id int64) (*models.Todo, error) {
	return s.todoRepo.FindByID(id)
}

// CreateTodo は新しいTodoを作成します。text は空文字列でも構いません。
func (s *TodoService) CreateTodo(text string) (*models.Todo, error) {
	todo, err := s.todoRepo.Create(text)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Todo created", "id", todo.ID)
	return todo, nil
}

// UpdateTodo は patch で渡されたフィールドだけを上書きします。空の patch は保存せずに現在の値を返します。
func (s *TodoService) UpdateTodo(id int64, patch models.UpdateTodoRequest) (*models.Todo, error) {
	if patch.IsEmpty() {
		return s.todoRepo.FindByID(id)
	}
	todo, err := s.todoRepo.Update(id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Todo updated", "id", id, "completed", todo.Completed)
	return todo, nil
}

// DeleteTodo はTodoを削除します。
func (s *TodoService) DeleteTodo(id int64) error {
	if err := s.todoRepo.Delete(id); err != nil {
		return err
	}
	s.logger.Debug("Todo deleted", "id", id)
	return nil
}

// Ping は保存先の疎通を確認します。リポジトリが Pinger でなければ常に成功します。
func (s *TodoService) Ping() error {
	if p, ok := s.todoRepo.(repositories.Pinger); ok {
		return p.Ping()
	}
	return nil
}

// StoreName はヘルスチェックで返す保存先の種類です。
func (s *TodoService) StoreName() string {
	switch s.todoRepo.(type) {
	case *repositories.FileTodoRepository:
		return "file"
	case *repositories.SQLTodoRepository:
		return "sql"
	default:
		return "custom"
	}
}
