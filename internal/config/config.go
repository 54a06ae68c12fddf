package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	JWTSecret       string
	AccessTokenTTL  string
	RefreshTokenTTL string

	Log      string
	LogLevel string
	Env      string // dev|prod

	// Файловое хранилище
	MainFolder      string // корень дерева папок сущностей
	MonitoredFolder string // папка мониторинга (сканы)
	MediaRoot       string // корень медиа, внутри него Pending/

	SyncDefaultCategory string // категория для импортированных документов

	// Режим использования системы: personal|empresa.
	// Влияет на подписи и порядок сущностей в дашборде.
	UsageType string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "15m"),
		RefreshTokenTTL: def(os.Getenv("REFRESH_TOKEN_EXPIRY"), "720h"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		MainFolder:      def(os.Getenv("MAIN_FOLDER"), "storage/main"),
		MonitoredFolder: def(os.Getenv("MONITORED_FOLDER"), "storage/scans"),
		MediaRoot:       def(os.Getenv("MEDIA_ROOT"), "storage/media"),

		SyncDefaultCategory: def(os.Getenv("SYNC_DEFAULT_CATEGORY"), "Documentos Escaneados"),

		UsageType: strings.ToLower(def(os.Getenv("USAGE_TYPE"), "personal")),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	// Критичные: БД
	if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		warnings = append(warnings, "JWT_SECRET is empty")
	}

	if c.UsageType != "personal" && c.UsageType != "empresa" {
		warnings = append(warnings, "USAGE_TYPE is not personal/empresa, falling back to personal")
		c.UsageType = "personal"
	}

	if c.MainFolder == "" {
		warnings = append(warnings, "MAIN_FOLDER is empty, entity folders will not be provisioned")
	}

	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 8080")
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// PendingFolder — папка для рабочих копий импортированных сканов.
func (c *Config) PendingFolder() string {
	return filepath.Join(c.MediaRoot, "Pending")
}
