// Package database は mysql / postgres への接続とテーブル作成を行います。
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"go-json-todo/internal/config"
)

// GetDSN は設定から接続文字列 (DSN) を構築します。
func GetDSN(backend string, db config.DatabaseConfig) (string, error) {
	switch backend {
	case config.BackendMySQL:
		// 例: user:pass@tcp(db:3306)/dbname?parseTime=true
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC", db.User, db.Password, db.Host, portOr(db.Port, "3306"), db.Name), nil
	case config.BackendPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			db.Host, portOr(db.Port, "5432"), db.User, db.Password, db.Name), nil
	default:
		return "", fmt.Errorf("backend %q is not a database backend", backend)
	}
}

// DriverName は database/sql に登録されたドライバー名を返します。
func DriverName(backend string) string {
	if backend == config.BackendPostgres {
		return "postgres"
	}
	return "mysql"
}

func portOr(port, def string) string {
	if port == "" {
		return def
	}
	return port
}

// InitDB はデータベース接続を初期化し、todos テーブルを用意します。
func InitDB(backend string, cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := GetDSN(backend, cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(DriverName(backend), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := EnsureSchema(db, backend); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateTableSQL はバックエンドごとの todos テーブル定義を返します。
func CreateTableSQL(backend string) string {
	if backend == config.BackendPostgres {
		return `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGINT PRIMARY KEY,
		text TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	);`
	}
	return `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGINT PRIMARY KEY,
		text TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME(3) NOT NULL
	);`
}

// EnsureSchema は todos テーブルが無ければ作成します。
func EnsureSchema(db *sql.DB, backend string) error {
	if _, err := db.Exec(CreateTableSQL(backend)); err != nil {
		return fmt.Errorf("failed to create todos table: %w", err)
	}
	return nil
}
