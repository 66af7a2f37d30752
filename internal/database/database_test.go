package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-json-todo/internal/config"
)

func TestGetDSN(t *testing.T) {
	db := config.DatabaseConfig{Host: "db", User: "todo", Password: "secret", Name: "todos"}

	dsn, err := GetDSN(config.BackendMySQL, db)
	require.NoError(t, err)
	assert.Equal(t, "todo:secret@tcp(db:3306)/todos?parseTime=true&loc=UTC", dsn)

	db.Port = "15432"
	dsn, err = GetDSN(config.BackendPostgres, db)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=15432 user=todo password=secret dbname=todos sslmode=disable", dsn)

	_, err = GetDSN(config.BackendFile, db)
	assert.Error(t, err)
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "mysql", DriverName(config.BackendMySQL))
	assert.Equal(t, "postgres", DriverName(config.BackendPostgres))
}

func TestCreateTableSQL(t *testing.T) {
	assert.Contains(t, CreateTableSQL(config.BackendMySQL), "DATETIME(3)")
	assert.Contains(t, CreateTableSQL(config.BackendPostgres), "TIMESTAMPTZ")
}
