package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// RunMigrations выполняет все встроенные миграции по порядку.
// Файлы должны быть в формате 001_name.sql, 002_name.sql и т.д.
func RunMigrations(ctx context.Context, db *pgxpool.Pool) error {
	// Создаем таблицу для отслеживания миграций, если её нет
	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Получаем список выполненных миграций
	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	entries, err := migrationsFS.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version := migrationVersion(entry.Name())
		if version == 0 {
			log.Warn().Str("file", entry.Name()).Msg("skipping invalid migration file")
			continue
		}

		if applied[version] {
			continue
		}

		if err := applyMigration(ctx, db, entry.Name(), version); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}

		log.Info().Int("version", version).Str("file", entry.Name()).Msg("migration applied")
	}

	return nil
}

// createMigrationsTable создает таблицу для отслеживания миграций
func createMigrationsTable(ctx context.Context, db *pgxpool.Pool) error {
	sql := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)`
	_, err := db.Exec(ctx, sql)
	return err
}

// getAppliedMigrations возвращает список уже примененных миграций
func getAppliedMigrations(ctx context.Context, db *pgxpool.Pool) (map[int]bool, error) {
	rows, err := db.Query(ctx, `SELECT version FROM migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// migrationVersion извлекает версию миграции из имени файла
func migrationVersion(filename string) int {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0
	}
	return version
}

// applyMigration применяет одну миграцию в транзакции
func applyMigration(ctx context.Context, db *pgxpool.Pool, filename string, version int) error {
	content, err := migrationsFS.ReadFile(migrationsDir + "/" + filename)
	if err != nil {
		return err
	}

	// Разделяем миграцию на Up и Down части
	parts := strings.Split(string(content), "-- +migrate Down")
	upSQL := strings.TrimPrefix(parts[0], "-- +migrate Up")
	upSQL = strings.TrimSpace(upSQL)

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, upSQL); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO migrations (version) VALUES ($1)", version); err != nil {
		return fmt.Errorf("failed to mark migration as applied: %w", err)
	}

	return tx.Commit(ctx)
}
