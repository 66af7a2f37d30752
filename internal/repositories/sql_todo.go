package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"go-json-todo/internal/models"
)

// SQLTodoRepository は mysql / postgres の todos テーブルを使うリポジトリです。
// 保存順は id 順 (IDGenerator が単調増加なので作成順と同じ) です。
type SQLTodoRepository struct {
	DB       *sql.DB
	postgres bool
	ids      *IDGenerator
	now      func() time.Time
	logger   *log.Logger
}

// NewSQLTodoRepository は新しいSQLTodoRepositoryインスタンスを作成します。driver は "mysql" か "postgres" です。
func NewSQLTodoRepository(db *sql.DB, driver string, logger *log.Logger) *SQLTodoRepository {
	if logger == nil {
		logger = log.Default()
	}
	return &SQLTodoRepository{
		DB:       db,
		postgres: driver == "postgres",
		ids:      NewIDGenerator(time.Now),
		now:      time.Now,
		logger:   logger,
	}
}

// Ping はデータベースの疎通確認を行います。
func (r *SQLTodoRepository) Ping() error {
	return r.DB.Ping()
}

// rebind は ? プレースホルダーを postgres 用の $1, $2... に置き換えます。
func (r *SQLTodoRepository) rebind(query string) string {
	if !r.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// FindAll はすべてのTodoを作成順で取得します。
func (r *SQLTodoRepository) FindAll() ([]models.Todo, error) {
	rows, err := r.DB.Query("SELECT id, text, completed, created_at FROM todos ORDER BY id ASC")
	if err != nil {
		r.logger.Error("Failed to query todos", "err", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			r.logger.Error("Failed to scan todo", "err", err)
			return nil, fmt.Errorf("could not scan todo: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}
	return todos, nil
}

// FindByID は指定されたIDのTodoを取得します。
func (r *SQLTodoRepository) FindByID(id int64) (*models.Todo, error) {
	var t models.Todo
	err := r.DB.QueryRow(r.rebind("SELECT id, text, completed, created_at FROM todos WHERE id = ?"), id).
		Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		r.logger.Error("Failed to query todo by ID", "id", id, "err", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// Create は新しいTodoを挿入します。
func (r *SQLTodoRepository) Create(text string) (*models.Todo, error) {
	var floor int64
	if err := r.DB.QueryRow("SELECT COALESCE(MAX(id), 0) FROM todos").Scan(&floor); err != nil {
		return nil, fmt.Errorf("could not read max id: %w", err)
	}

	t := models.Todo{
		ID:        r.ids.Next(floor),
		Text:      text,
		Completed: false,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}
	_, err := r.DB.Exec(r.rebind("INSERT INTO todos (id, text, completed, created_at) VALUES (?, ?, ?, ?)"),
		t.ID, t.Text, t.Completed, t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert todo", "err", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return &t, nil
}

// Update は指定されたIDのTodoに patch をマージして保存します。
func (r *SQLTodoRepository) Update(id int64, patch models.UpdateTodoRequest) (*models.Todo, error) {
	t, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	patch.Apply(t)

	result, err := r.DB.Exec(r.rebind("UPDATE todos SET text = ?, completed = ? WHERE id = ?"), t.Text, t.Completed, id)
	if err != nil {
		r.logger.Error("Failed to update todo", "id", id, "err", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	// mysql は値が変わらない UPDATE で 0 を返すので、ここでは存在確認に使わない
	if _, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	return t, nil
}

// Delete は指定されたIDのTodoを削除します。
func (r *SQLTodoRepository) Delete(id int64) error {
	result, err := r.DB.Exec(r.rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		r.logger.Error("Failed to delete todo", "id", id, "err", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
