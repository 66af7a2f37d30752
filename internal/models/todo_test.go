package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTodoRequest_Apply(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	base := Todo{ID: 1700000000000, Text: "buy milk", Completed: false, CreatedAt: created}

	t.Run("completed only", func(t *testing.T) {
		todo := base
		SetCompleted(true).Apply(&todo)
		assert.True(t, todo.Completed)
		assert.Equal(t, "buy milk", todo.Text)
		assert.Equal(t, base.ID, todo.ID)
		assert.Equal(t, created, todo.CreatedAt)
	})

	t.Run("text only", func(t *testing.T) {
		todo := base
		text := "buy oat milk"
		UpdateTodoRequest{Text: &text}.Apply(&todo)
		assert.Equal(t, "buy oat milk", todo.Text)
		assert.False(t, todo.Completed)
	})

	t.Run("empty patch", func(t *testing.T) {
		todo := base
		patch := UpdateTodoRequest{}
		assert.True(t, patch.IsEmpty())
		patch.Apply(&todo)
		assert.Equal(t, base, todo)
	})
}

func TestUpdateTodoRequest_IgnoresImmutableFields(t *testing.T) {
	var patch UpdateTodoRequest
	err := json.Unmarshal([]byte(`{"id": 5, "createdAt": "2000-01-01T00:00:00Z", "completed": true}`), &patch)
	require.NoError(t, err)

	todo := Todo{ID: 42, Text: "walk dog"}
	patch.Apply(&todo)
	assert.Equal(t, int64(42), todo.ID)
	assert.True(t, todo.Completed)
	assert.True(t, todo.CreatedAt.IsZero())
}

func TestTodo_JSONKeys(t *testing.T) {
	todo := Todo{ID: 7, Text: "x", Completed: true, CreatedAt: time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)}
	data, err := json.Marshal(todo)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"text":"x","completed":true,"createdAt":"2024-05-06T07:08:09.123Z"}`, string(data))
}

func TestTodo_CreatedAtAlwaysHasMilliseconds(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"whole second", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05.000Z"},
		{"trailing zero", time.Date(2024, 1, 2, 3, 4, 5, 120000000, time.UTC), "2024-01-02T03:04:05.120Z"},
		{"sub-millisecond truncated", time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC), "2024-01-02T03:04:05.123Z"},
		{"converted to UTC", time.Date(2024, 1, 2, 12, 4, 5, 0, time.FixedZone("JST", 9*60*60)), "2024-01-02T03:04:05.000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(Todo{ID: 1, CreatedAt: tt.at})
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Equal(t, tt.want, raw["createdAt"])
		})
	}
}

func TestTodo_UnmarshalLenient(t *testing.T) {
	var todos []Todo
	err := json.Unmarshal([]byte(`[
		{"id": 1, "text": 5, "completed": true, "createdAt": "2024-01-02T03:04:05Z"},
		{"id": 2, "completed": "no", "createdAt": "yesterday"}
	]`), &todos)
	require.NoError(t, err)
	require.Len(t, todos, 2)

	assert.Equal(t, int64(1), todos[0].ID)
	assert.Equal(t, "", todos[0].Text)
	assert.True(t, todos[0].Completed)
	assert.True(t, todos[0].CreatedAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))

	assert.Equal(t, int64(2), todos[1].ID)
	assert.False(t, todos[1].Completed)
	assert.True(t, todos[1].CreatedAt.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`[{"id": 1,`), &todos))
}
