package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTodos(t *testing.T) {
	schema, err := CompileSchema()
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     string
		wantErrs bool
	}{
		{"empty list", `[]`, false},
		{"valid records", `[
			{"id": 1709294400000, "text": "buy milk", "completed": false, "createdAt": "2024-03-01T12:00:00.000Z"},
			{"id": 1709294400001, "text": "", "completed": true, "createdAt": "2024-03-01T12:00:00Z"}
		]`, false},
		{"not an array", `{"todos": []}`, true},
		{"missing createdAt", `[{"id": 1, "text": "x", "completed": false}]`, true},
		{"text not a string", `[{"id": 1, "text": 3, "completed": false, "createdAt": "2024-03-01T12:00:00Z"}]`, true},
		{"fractional id", `[{"id": 1.5, "text": "x", "completed": false, "createdAt": "2024-03-01T12:00:00Z"}]`, true},
		{"bad timestamp", `[{"id": 1, "text": "x", "completed": false, "createdAt": "yesterday"}]`, true},
		{"malformed json", `[{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateTodos(schema, []byte(tt.data))
			if tt.wantErrs {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestValidateTodos_DuplicateIDs(t *testing.T) {
	schema, err := CompileSchema()
	require.NoError(t, err)

	data := `[
		{"id": 7, "text": "a", "completed": false, "createdAt": "2024-03-01T12:00:00Z"},
		{"id": 7, "text": "b", "completed": false, "createdAt": "2024-03-01T12:00:00Z"}
	]`
	errs := ValidateTodos(schema, []byte(data))
	require.Len(t, errs, 1)

	var ve *ValidationError
	require.ErrorAs(t, errs[0], &ve)
	assert.Equal(t, "[1].id", ve.Path)
	assert.Contains(t, ve.Error(), "duplicate id 7")
}

func TestValidateTodosFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1}]`), 0o644))

	errs, err := ValidateTodosFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)

	_, err = ValidateTodosFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestPointerToPath(t *testing.T) {
	assert.Equal(t, "", pointerToPath(""))
	assert.Equal(t, "", pointerToPath("#"))
	assert.Equal(t, "[0].text", pointerToPath("/0/text"))
	assert.Equal(t, "[3].createdAt", pointerToPath("#/3/createdAt"))
	assert.Equal(t, "a/b", pointerToPath("/a~1b"))
}
