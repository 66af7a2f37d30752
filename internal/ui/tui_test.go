package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-json-todo/internal/client"
	"go-json-todo/internal/logging"
	"go-json-todo/internal/models"
)

type memAPI struct {
	todos  []models.Todo
	nextID int64
	err    error
}

func (a *memAPI) List(context.Context) ([]models.Todo, error) {
	if a.err != nil {
		return nil, a.err
	}
	return append([]models.Todo{}, a.todos...), nil
}

func (a *memAPI) Create(_ context.Context, text string) (*models.Todo, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.nextID++
	t := models.Todo{ID: a.nextID, Text: text}
	a.todos = append(a.todos, t)
	return &t, nil
}

func (a *memAPI) Update(_ context.Context, id int64, patch models.UpdateTodoRequest) (*models.Todo, error) {
	if a.err != nil {
		return nil, a.err
	}
	for i := range a.todos {
		if a.todos[i].ID == id {
			patch.Apply(&a.todos[i])
			t := a.todos[i]
			return &t, nil
		}
	}
	return nil, client.ErrNotFound
}

func (a *memAPI) Delete(_ context.Context, id int64) error {
	if a.err != nil {
		return a.err
	}
	for i := range a.todos {
		if a.todos[i].ID == id {
			a.todos = append(a.todos[:i], a.todos[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func newTestModel(t *testing.T, api *memAPI) *Model {
	t.Helper()
	m := NewModel(context.Background(), client.NewController(api, logging.Discard()))
	exec(t, m, m.Init())
	return m
}

// exec はコマンドを同期的に実行し、結果のメッセージをモデルに渡します。
func exec(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	_, next := m.Update(msg)
	require.Nil(t, next)
}

func press(t *testing.T, m *Model, key string) tea.Cmd {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModel_LoadAndToggle(t *testing.T) {
	api := &memAPI{todos: []models.Todo{{ID: 1, Text: "buy milk"}, {ID: 2, Text: "walk dog"}}, nextID: 2}
	m := newTestModel(t, api)

	view := m.View()
	assert.Contains(t, view, "buy milk")
	assert.Contains(t, view, "walk dog")
	assert.Contains(t, view, "2件の未完了タスク")

	assert.Nil(t, press(t, m, "j"))
	exec(t, m, press(t, m, " "))
	assert.True(t, api.todos[1].Completed)
	assert.False(t, api.todos[0].Completed)
	assert.Contains(t, m.View(), "1件の未完了タスク")
}

func TestModel_AddMode(t *testing.T) {
	api := &memAPI{}
	m := newTestModel(t, api)
	assert.Contains(t, m.View(), client.EmptyMessage)

	assert.Nil(t, press(t, m, "a"))
	for _, k := range []string{"r", "e", "a", "d", " ", "b", "o", "o", "k", "s"} {
		assert.Nil(t, press(t, m, k))
	}
	assert.Nil(t, press(t, m, "backspace"))
	assert.Contains(t, m.View(), "新しいタスク: read book_")

	exec(t, m, press(t, m, "enter"))
	require.Len(t, api.todos, 1)
	assert.Equal(t, "read book", api.todos[0].Text)
	assert.False(t, m.adding)
	assert.Contains(t, m.View(), "read book")

	// esc は何も送らない
	press(t, m, "a")
	press(t, m, "x")
	assert.Nil(t, press(t, m, "esc"))
	assert.Len(t, api.todos, 1)
}

func TestModel_FilterDeleteAndClear(t *testing.T) {
	api := &memAPI{todos: []models.Todo{
		{ID: 1, Text: "alpha", Completed: true},
		{ID: 2, Text: "beta"},
		{ID: 3, Text: "gamma", Completed: true},
	}, nextID: 3}
	m := newTestModel(t, api)

	press(t, m, "2")
	view := m.View()
	assert.Contains(t, view, "beta")
	assert.NotContains(t, view, "alpha")

	// フィルター後のカーソル位置の項目を削除する
	exec(t, m, press(t, m, "d"))
	require.Len(t, api.todos, 2)
	assert.Contains(t, m.View(), client.EmptyMessage)

	press(t, m, "1")
	exec(t, m, press(t, m, "c"))
	assert.Empty(t, api.todos)
	assert.Equal(t, 0, m.cursor)
}

func TestModel_ErrorIsShown(t *testing.T) {
	api := &memAPI{todos: []models.Todo{{ID: 1, Text: "a"}}}
	m := newTestModel(t, api)

	api.err = errors.New("connection refused")
	exec(t, m, press(t, m, "r"))
	assert.Contains(t, m.View(), "connection refused")

	// 失敗してもキャッシュは残る
	assert.True(t, strings.Contains(m.View(), "[ ] a"))
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, &memAPI{})
	cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
