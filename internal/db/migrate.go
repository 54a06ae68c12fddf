package db

import (
	"doctrac/internal/config"
	"doctrac/internal/logger"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// RunMigrations применяет миграции из папки migrations/.
func RunMigrations(cfg *config.Config) error {
	m, err := migrate.New("file://migrations", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("не удалось создать мигратор: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		logger.Log.Warn("Не удалось получить версию миграций", zap.Error(err))
	}

	if dirty {
		logger.Log.Warn("База в dirty-состоянии, принудительный сброс версии", zap.Uint("version", uint(version)))
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("не удалось сбросить dirty-версию: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Log.Info("Миграции не требуются, схема актуальна")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, _, _ = m.Version()
	logger.Log.Info("Миграции применены", zap.Uint("version", uint(version)))
	return nil
}
