// Package config はサーバーとクライアントの設定を読み込みます。
//
// 優先順位は「デフォルト < TOMLファイル < .env < 環境変数」です。
// .env は godotenv で読み込み、既に設定済みの環境変数は上書きしません。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ストアのバックエンド名
const (
	BackendFile     = "file"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

// デフォルト値
const (
	DefaultPort       = 3000
	DefaultDataFile   = "todos.json"
	DefaultConfigFile = "todo.toml"
	DefaultEnvFile    = ".env"
	DefaultServerURL  = "http://localhost:3000"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Client   ClientConfig   `toml:"client"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Port        int      `toml:"port"`
	PublicDir   string   `toml:"public_dir"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StoreConfig はタスクストアの設定です。
type StoreConfig struct {
	Backend        string `toml:"backend"`
	DataFile       string `toml:"data_file"`
	StrictWrites   bool   `toml:"strict_writes"`
	ValidateSchema bool   `toml:"validate_schema"`
}

// DatabaseConfig は mysql / postgres バックエンドの接続情報です。
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Timestamps bool   `toml:"timestamps"`
}

// ClientConfig はCLI/TUIクライアントの設定です。
type ClientConfig struct {
	ServerURL string `toml:"server_url"`
}

// Default はデフォルト設定を返します。
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        DefaultPort,
			CORSOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Backend:        BackendFile,
			DataFile:       DefaultDataFile,
			ValidateSchema: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Timestamps: true,
		},
		Client: ClientConfig{
			ServerURL: DefaultServerURL,
		},
	}
}

// Load は設定を読み込みます。configPath が空なら TODO_CONFIG、次にカレントの todo.toml を探します。
func Load(configPath string) (*Config, error) {
	return LoadWithEnvFile(configPath, DefaultEnvFile)
}

// LoadWithEnvFile は .env のパスを指定して設定を読み込みます。
func LoadWithEnvFile(configPath, envFile string) (*Config, error) {
	// .env は無くてもよい
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()

	path, explicit := resolveConfigPath(configPath)
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigPath(configPath string) (string, bool) {
	if configPath != "" {
		return configPath, true
	}
	if env := os.Getenv("TODO_CONFIG"); env != "" {
		return env, true
	}
	return DefaultConfigFile, false
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	setString(&cfg.Server.PublicDir, "TODO_PUBLIC_DIR")
	if v := os.Getenv("TODO_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	setString(&cfg.Store.Backend, "TODO_STORE")
	setString(&cfg.Store.DataFile, "TODO_DATA_FILE")
	if err := setBool(&cfg.Store.StrictWrites, "TODO_STRICT_WRITES"); err != nil {
		return err
	}
	if err := setBool(&cfg.Store.ValidateSchema, "TODO_VALIDATE_SCHEMA"); err != nil {
		return err
	}

	// DB_* は既存の docker-compose / .env と同じ名前
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASS")
	setString(&cfg.Database.Name, "DB_NAME")

	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	setString(&cfg.Client.ServerURL, "TODO_SERVER")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate は設定値を検証します。
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	for _, origin := range c.Server.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid cors origin %q (want * or an http(s) origin)", origin)
		}
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.DataFile == "" {
			return errors.New("store.data_file is required for the file backend")
		}
	case BackendMySQL, BackendPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q (want file, mysql or postgres)", c.Store.Backend)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Addr は gin / http.Server に渡すリッスンアドレスを返します。
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
