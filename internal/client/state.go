package client

import (
	"fmt"
	"strings"

	"go-json-todo/internal/models"
)

// Filter は表示するTodoの絞り込みです。
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters は表示順に並べたすべてのフィルターです。
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter は文字列をフィルターに変換します。空文字列は all です。
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
	}
}

// Match は todo がフィルターに該当するかを返します。
func (f Filter) Match(todo models.Todo) bool {
	switch f {
	case FilterActive:
		return !todo.Completed
	case FilterCompleted:
		return todo.Completed
	default:
		return true
	}
}

// State はクライアントが持つキャッシュと表示状態です。
type State struct {
	Todos  []models.Todo
	Filter Filter
}

// View は State から描画に必要な値を取り出したものです。
type View struct {
	Items       []models.Todo
	ActiveCount int
	Empty       bool
	Filter      Filter
}

// Render は State から View を作ります。ActiveCount はフィルターに関係なく全体から数えます。
func Render(s State) View {
	filter := s.Filter
	if filter == "" {
		filter = FilterAll
	}

	items := make([]models.Todo, 0, len(s.Todos))
	active := 0
	for _, t := range s.Todos {
		if !t.Completed {
			active++
		}
		if filter.Match(t) {
			items = append(items, t)
		}
	}
	return View{
		Items:       items,
		ActiveCount: active,
		Empty:       len(items) == 0,
		Filter:      filter,
	}
}
