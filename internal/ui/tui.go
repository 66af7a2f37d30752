// Package ui はタスクリストの端末UIを提供します。
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-json-todo/internal/client"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	filterStyle = lipgloss.NewStyle().Underline(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Run はTUIを起動し、終了するまでブロックします。
func Run(ctx context.Context, ctrl *client.Controller) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Model は bubbletea のモデルです。状態は Controller が持ち、Model はカーソルと入力欄だけを持ちます。
type Model struct {
	ctx    context.Context
	ctrl   *client.Controller
	cursor int
	adding bool
	input  []rune
	status string
	err    error
	busy   bool
}

// opMsg は Controller の操作が終わったことを表します。
type opMsg struct {
	status string
	err    error
}

// NewModel は新しいModelを作成します。
func NewModel(ctx context.Context, ctrl *client.Controller) *Model {
	return &Model{ctx: ctx, ctrl: ctrl}
}

func (m *Model) Init() tea.Cmd {
	return m.run("読み込みました", m.ctrl.Load)
}

// run は Controller の操作をコマンドとして実行します。
func (m *Model) run(status string, op func(context.Context) error) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		return opMsg{status: status, err: op(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		} else {
			m.status = ""
		}
		m.clampCursor()
		return m, nil
	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.ctrl.View().Items

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		if m.cursor < len(items) {
			id := items[m.cursor].ID
			return m, m.run("更新しました", func(ctx context.Context) error {
				_, err := m.ctrl.Toggle(ctx, id)
				return err
			})
		}
	case "d":
		if m.cursor < len(items) {
			id := items[m.cursor].ID
			return m, m.run("削除しました", func(ctx context.Context) error {
				return m.ctrl.Delete(ctx, id)
			})
		}
	case "a":
		m.adding = true
		m.input = m.input[:0]
	case "c":
		return m, m.run("完了済みを削除しました", func(ctx context.Context) error {
			_, err := m.ctrl.ClearCompleted(ctx)
			return err
		})
	case "r":
		return m, m.run("読み込みました", m.ctrl.Load)
	case "1":
		m.setFilter(client.FilterAll)
	case "2":
		m.setFilter(client.FilterActive)
	case "3":
		m.setFilter(client.FilterCompleted)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.adding = false
		m.input = m.input[:0]
	case tea.KeyEnter:
		text := string(m.input)
		m.adding = false
		m.input = m.input[:0]
		return m, m.run("追加しました", func(ctx context.Context) error {
			_, err := m.ctrl.Add(ctx, text)
			return err
		})
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *Model) setFilter(f client.Filter) {
	m.ctrl.SetFilter(f)
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.View().Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) View() string {
	v := m.ctrl.View()

	var b strings.Builder
	b.WriteString(titleStyle.Render("TODO") + "\n\n")
	writeFilters(&b, v.Filter)

	if v.Empty {
		b.WriteString("  " + client.EmptyMessage + "\n")
	}
	for i, t := range v.Items {
		pointer := "  "
		if i == m.cursor && !m.adding {
			pointer = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		text := client.SanitizeText(t.Text)
		if t.Completed {
			mark = "[x]"
			text = doneStyle.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", pointer, mark, text))
	}
	b.WriteString("\n" + client.ActiveCountLabel(v.ActiveCount) + "\n\n")

	if m.adding {
		b.WriteString("新しいタスク: " + string(m.input) + "_\n")
		b.WriteString(helpStyle.Render("enter 追加 | esc キャンセル") + "\n")
		return b.String()
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.busy:
		b.WriteString("...\n")
	case m.status != "":
		b.WriteString(m.status + "\n")
	}
	b.WriteString(helpStyle.Render("space 切替 | d 削除 | a 追加 | c 完了済みを削除 | 1/2/3 フィルター | r 再読込 | q 終了") + "\n")
	return b.String()
}

func writeFilters(b *strings.Builder, current client.Filter) {
	labels := map[client.Filter]string{
		client.FilterAll:       "1 すべて",
		client.FilterActive:    "2 未完了",
		client.FilterCompleted: "3 完了済み",
	}
	parts := make([]string, 0, len(client.Filters))
	for _, f := range client.Filters {
		label := labels[f]
		if f == current {
			label = filterStyle.Render(label)
		}
		parts = append(parts, label)
	}
	b.WriteString(strings.Join(parts, "  ") + "\n\n")
}

// IsTTY は w が端末かどうかを返します。
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
