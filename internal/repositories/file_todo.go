package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"go-json-todo/internal/models"
)

// FileTodoRepository はタスクリストを1つのJSONファイル (配列) に保存します。
//
// 呼び出しのたびにファイル全体を読み直すので、リクエスト間の正はファイルです。
// 更新系は「読む → メモリ上で変更 → 全体を書き戻す」を mu で直列化します。
type FileTodoRepository struct {
	path         string
	mu           sync.Mutex
	ids          *IDGenerator
	now          func() time.Time
	validate     bool
	schema       *jsonschema.Schema
	strictWrites bool
	logger       *log.Logger
}

// FileOption は FileTodoRepository の設定を変更します。
type FileOption func(*FileTodoRepository)

// WithStrictWrites が true のとき、書き込み失敗をエラーとして返します。
// false (デフォルト) ではログに残すだけで、呼び出し元には成功として返します。
func WithStrictWrites(strict bool) FileOption {
	return func(r *FileTodoRepository) {
		r.strictWrites = strict
	}
}

// WithSchemaValidation が true のとき、読み込んだファイルを JSON Schema で検証します。
func WithSchemaValidation(enabled bool) FileOption {
	return func(r *FileTodoRepository) {
		r.validate = enabled
	}
}

// WithClock は作成日時とIDの元になる時計を差し替えます。
func WithClock(now func() time.Time) FileOption {
	return func(r *FileTodoRepository) {
		r.now = now
	}
}

// WithLogger はロガーを設定します。
func WithLogger(logger *log.Logger) FileOption {
	return func(r *FileTodoRepository) {
		r.logger = logger
	}
}

// NewFileTodoRepository は新しいFileTodoRepositoryインスタンスを作成します。ファイルはまだ無くても構いません。
func NewFileTodoRepository(path string, opts ...FileOption) (*FileTodoRepository, error) {
	r := &FileTodoRepository{
		path:   path,
		now:    time.Now,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.validate {
		schema, err := CompileSchema()
		if err != nil {
			return nil, err
		}
		r.schema = schema
	}
	r.ids = NewIDGenerator(r.now)
	return r, nil
}

// Path は保存ファイルのパスを返します。
func (r *FileTodoRepository) Path() string {
	return r.path
}

// Ping は保存先ディレクトリが存在するかを確認します。
func (r *FileTodoRepository) Ping() error {
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", dir)
	}
	return nil
}

// FindAll は保存順ですべてのTodoを返します。
func (r *FileTodoRepository) FindAll() ([]models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(), nil
}

// FindByID は指定されたIDのTodoを返します。
func (r *FileTodoRepository) FindByID(id int64) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := r.load()
	i := indexOf(todos, id)
	if i == -1 {
		return nil, ErrTodoNotFound
	}
	t := todos[i]
	return &t, nil
}

// Create は新しいTodoを末尾に追加し、ファイル全体を書き直します。
func (r *FileTodoRepository) Create(text string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := r.load()
	t := models.Todo{
		ID:        r.ids.Next(maxID(todos)),
		Text:      text,
		Completed: false,
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
	}
	todos = append(todos, t)
	if err := r.persist(todos); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update は指定されたIDのTodoに patch をマージします。
func (r *FileTodoRepository) Update(id int64, patch models.UpdateTodoRequest) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := r.load()
	i := indexOf(todos, id)
	if i == -1 {
		return nil, ErrTodoNotFound
	}
	patch.Apply(&todos[i])
	if err := r.persist(todos); err != nil {
		return nil, err
	}
	t := todos[i]
	return &t, nil
}

// Delete は指定されたIDのTodoを削除します。
func (r *FileTodoRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := r.load()
	i := indexOf(todos, id)
	if i == -1 {
		return ErrTodoNotFound
	}
	todos = append(todos[:i], todos[i+1:]...)
	return r.persist(todos)
}

// load はファイルを読み込みます。ファイルが無い場合やJSONとして読めない場合は空のリストを返します。
// スキーマや重複IDの違反は警告ログに留め、読めたレコードはそのまま返します。
// 読めたレコードは次の書き込みでもそのまま残ります。
func (r *FileTodoRepository) load() []models.Todo {
	todos := make([]models.Todo, 0)

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Error("Failed to read todos file", "path", r.path, "err", err)
		}
		return todos
	}

	if r.schema != nil {
		if errs := ValidateTodos(r.schema, data); len(errs) > 0 {
			r.logger.Warn("Todos file failed validation, loading records as-is", "path", r.path, "err", errors.Join(errs...))
		}
	}

	if err := json.Unmarshal(data, &todos); err != nil {
		r.logger.Error("Failed to parse todos file", "path", r.path, "err", err)
		return make([]models.Todo, 0)
	}
	if todos == nil {
		// ファイルの中身が null の場合
		todos = make([]models.Todo, 0)
	}
	return todos
}

// persist は save を呼び、strictWrites でなければ失敗をログだけにします。
func (r *FileTodoRepository) persist(todos []models.Todo) error {
	if err := r.save(todos); err != nil {
		r.logger.Error("Failed to save todos file", "path", r.path, "err", err)
		if r.strictWrites {
			return fmt.Errorf("could not save todos: %w", err)
		}
	}
	return nil
}

// save は2スペースインデントで一時ファイルに書き出し、rename で置き換えます。
func (r *FileTodoRepository) save(todos []models.Todo) error {
	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal todos: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // rename 成功後は何もしない

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace todos file: %w", err)
	}
	return nil
}
