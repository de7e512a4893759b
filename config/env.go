package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Env là cấu hình của ứng dụng
type Env struct {
	Port         string `toml:"port"`
	StoreBackend string `toml:"store_backend"`
	PostgresURI  string `toml:"postgresql_uri"`
	SQLitePath   string `toml:"sqlite_path"`
	GCPProjectID string `toml:"gcp_project_id"`
	JWTSecret    string `toml:"jwt_secret"`
	MQTTURL      string `toml:"mqtt_url"`
	LogLevel     string `toml:"log_level"`
	Debug        bool   `toml:"debug"`
}

func defaultEnv() Env {
	return Env{
		Port:         "3000",
		StoreBackend: "memory",
		SQLitePath:   "data/todos.db",
		LogLevel:     "info",
	}
}

// LoadENV đọc .env (nếu có), file TOML trong TODO_CONFIG_FILE (nếu có),
// sau đó biến môi trường ghi đè lên tất cả.
func LoadENV() (*Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	env := defaultEnv()

	if path := os.Getenv("TODO_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &env); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	overrideString(&env.Port, "PORT")
	overrideString(&env.StoreBackend, "STORE_BACKEND")
	overrideString(&env.PostgresURI, "POSTGRESQL_URI")
	overrideString(&env.SQLitePath, "SQLITE_PATH")
	overrideString(&env.GCPProjectID, "GCP_PROJECT_ID")
	overrideString(&env.JWTSecret, "JWT_SECRET")
	overrideString(&env.MQTTURL, "MQTT_URL")
	overrideString(&env.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG value %q: %w", v, err)
		}
		env.Debug = debug
	}

	if env.JWTSecret == "" {
		return nil, errors.New("you must set your 'JWT_SECRET' environmental variable")
	}
	return &env, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
