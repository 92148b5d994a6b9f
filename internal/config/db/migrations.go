package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// MigrationsPath — источник файлов миграций для golang-migrate.
var MigrationsPath = "file://./migrations"

// RunMigrations выполняет миграции базы данных PostgreSQL с помощью golang-migrate.
//
// dsn — строка подключения к базе данных PostgreSQL.
//
// Функция ищет миграции в MigrationsPath, применяет их к базе данных,
// логирует процесс и возвращает ошибку, если что-то пошло не так.
// Если миграции не требуются (ErrNoChange), сообщает об этом в логах.
func RunMigrations(dsn string) error {
	m, err := migrate.New(MigrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	logger := zap.L()
	logger.Info("applying migrations", zap.String("source", MigrationsPath))

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to apply, database is up-to-date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations applied successfully")
	return nil
}
