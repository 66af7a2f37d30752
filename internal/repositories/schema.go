package repositories

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed todos.schema.json
var todosSchema []byte

const todosSchemaURL = "todos.schema.json"

// ValidationError は保存ファイルの検証エラーです。Path は "[0].text" のような位置を表します。
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap は元のエラーを返します。
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CompileSchema は埋め込みの JSON Schema をコンパイルします。
func CompileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(todosSchemaURL, bytes.NewReader(todosSchema)); err != nil {
		return nil, fmt.Errorf("add todos schema: %w", err)
	}
	schema, err := compiler.Compile(todosSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile todos schema: %w", err)
	}
	return schema, nil
}

// ValidateTodos は保存ファイルの内容をスキーマとID重複の両方で検証し、見つかったエラーをすべて返します。
func ValidateTodos(schema *jsonschema.Schema, data []byte) []error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []error{&ValidationError{Err: fmt.Errorf("parse todos: %w", err)}}
	}

	var errs []error
	if err := schema.Validate(doc); err != nil {
		errs = appendSchemaErrors(errs, err)
		return errs
	}

	// スキーマでは表現できない id の一意性
	items, _ := doc.([]interface{})
	seen := make(map[string]int, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		key := fmt.Sprint(obj["id"])
		if first, dup := seen[key]; dup {
			errs = append(errs, &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %s (first used at [%d])", key, first),
			})
			continue
		}
		seen[key] = i
	}
	return errs
}

// ValidateTodosFile はファイルを読み込んで ValidateTodos を実行します。
func ValidateTodosFile(path string) ([]error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read todos file: %w", err)
	}
	schema, err := CompileSchema()
	if err != nil {
		return nil, err
	}
	return ValidateTodos(schema, data), nil
}

func appendSchemaErrors(errs []error, err error) []error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return append(errs, err)
	}
	return collectSchemaErrors(errs, ve)
}

func collectSchemaErrors(errs []error, ve *jsonschema.ValidationError) []error {
	if len(ve.Causes) == 0 {
		return append(errs, &ValidationError{
			Path: pointerToPath(ve.InstanceLocation),
			Err:  errors.New(ve.Message),
		})
	}
	for _, cause := range ve.Causes {
		errs = collectSchemaErrors(errs, cause)
	}
	return errs
}

// pointerToPath は "/0/text" を "[0].text" に変換します。
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
