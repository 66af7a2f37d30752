package client

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode"
)

// EmptyMessage は表示するTodoが無いときの文言です。
const EmptyMessage = "タスクがありません"

// ActiveCountLabel は未完了件数の表示です。
func ActiveCountLabel(n int) string {
	return fmt.Sprintf("%d件の未完了タスク", n)
}

// SanitizeText は端末に表示するためにテキストを整えます。
// 改行とタブは空白にし、その他の制御文字 (ANSI エスケープなど) は取り除きます。
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RenderText は View を端末向けのテキストで書き出します。
func RenderText(w io.Writer, v View) error {
	if v.Empty {
		if _, err := fmt.Fprintln(w, EmptyMessage); err != nil {
			return err
		}
	}
	for _, t := range v.Items {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		if _, err := fmt.Fprintf(w, "[%s] %d  %s\n", mark, t.ID, SanitizeText(t.Text)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, ActiveCountLabel(v.ActiveCount))
	return err
}

// RenderJSON は表示中のTodoを2スペースインデントのJSON配列で書き出します。
func RenderJSON(w io.Writer, v View) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v.Items)
}

var htmlTemplate = template.Must(template.New("todos").Funcs(template.FuncMap{
	"countLabel": ActiveCountLabel,
}).Parse(`<ul class="todo-list">
{{- if .Empty}}
  <li class="empty-message">{{.EmptyMessage}}</li>
{{- end}}
{{- range .Items}}
  <li class="todo-item{{if .Completed}} completed{{end}}" data-id="{{.ID}}">
    {{if .Completed}}<input type="checkbox" class="todo-checkbox" checked>{{else}}<input type="checkbox" class="todo-checkbox">{{end}}
    <span class="todo-text">{{.Text}}</span>
  </li>
{{- end}}
</ul>
<p id="todo-count">{{countLabel .ActiveCount}}</p>
`))

// RenderHTML は View を HTML 断片として書き出します。テキストはエスケープされます。
func RenderHTML(w io.Writer, v View) error {
	return htmlTemplate.Execute(w, struct {
		View
		EmptyMessage string
	}{v, EmptyMessage})
}
