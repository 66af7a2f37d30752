// Package modelsはTodoを定義します。
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// TimestampLayout は createdAt の書式です。ミリ秒は常に3桁で書き出します。
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Todo はタスクリストの1件を表します。JSONのキーはフロントエンドと保存ファイルの形式に合わせています。
type Todo struct {
	ID        int64     `json:"id"`        // ストアが採番 (ミリ秒エポック由来、単調増加)
	Text      string    `json:"text"`      // タスクの内容
	Completed bool      `json:"completed"` // 完了状態
	CreatedAt time.Time `json:"createdAt"` // 作成日時 (作成後は変更しない)
}

type todoJSON struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

// MarshalJSON は createdAt を UTC の TimestampLayout で書き出します。
func (t Todo) MarshalJSON() ([]byte, error) {
	return json.Marshal(todoJSON{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UTC().Format(TimestampLayout),
	})
}

// UnmarshalJSON は型の合わない項目や解釈できない createdAt をゼロ値のまま読み込みます。
// 壊れたJSONだけがエラーになります。
func (t *Todo) UnmarshalJSON(data []byte) error {
	var raw todoJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}

	*t = Todo{ID: raw.ID, Text: raw.Text, Completed: raw.Completed}
	if raw.CreatedAt != "" {
		if created, err := time.Parse(time.RFC3339Nano, raw.CreatedAt); err == nil {
			t.CreatedAt = created
		}
	}
	return nil
}

// CreateTodoRequest は POST /api/todos のリクエストボディです。
// text はポインタなので、空文字列は受け付け、キー自体が無い場合だけ binding エラーになります。
type CreateTodoRequest struct {
	Text *string `json:"text" binding:"required"`
}

// UpdateTodoRequest は PUT /api/todos/:id の部分更新ボディです。
// 変更できるのは text と completed だけで、id や createdAt は無視されます。
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsEmpty は更新するフィールドが1つも無い場合に true を返します。
func (r UpdateTodoRequest) IsEmpty() bool {
	return r.Text == nil && r.Completed == nil
}

// Apply は指定されたフィールドだけを t に上書きします。
func (r UpdateTodoRequest) Apply(t *Todo) {
	if r.Text != nil {
		t.Text = *r.Text
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	}
}

// SetCompleted は completed だけを更新するリクエストを作ります。
func SetCompleted(completed bool) UpdateTodoRequest {
	return UpdateTodoRequest{Completed: &completed}
}
