package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ibor-valuation/internal/logging"
)

const clickHouseMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		name String,
		applied_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree
	ORDER BY name
`

// RunClickHouseMigrations applies the .sql files of migrationsPath in name
// order. Applied files are recorded in schema_migrations and skipped on the
// next run.
func RunClickHouseMigrations(ctx context.Context, db *ClickHouseDB, migrationsPath string, logger *logging.Logger) error {
	files, err := clickHouseMigrationFiles(migrationsPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("No ClickHouse migration files found")
		return nil
	}

	if err := db.Exec(ctx, clickHouseMigrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	applied, err := appliedClickHouseMigrations(ctx, db)
	if err != nil {
		return err
	}

	for _, filename := range files {
		if applied[filename] {
			continue
		}
		content, err := os.ReadFile(filepath.Join(migrationsPath, filename)) // #nosec G304 - path is built from trusted migrationsPath
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		log := logger.WithField("migration", filename)
		for i, stmt := range splitSQLStatements(string(content)) {
			log.WithField("statement", i+1).Debugf("Executing %s", truncate(stmt, 80))
			if err := db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute statement %d in %s: %w", i+1, filename, err)
			}
		}

		if err := db.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, filename); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", filename, err)
		}
		log.Info("Applied ClickHouse migration")
	}
	return nil
}

// ClickHouseMigrationStatus returns the applied and pending migration names
func ClickHouseMigrationStatus(ctx context.Context, db *ClickHouseDB, migrationsPath string) (applied, pending []string, err error) {
	files, err := clickHouseMigrationFiles(migrationsPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Exec(ctx, clickHouseMigrationsTable); err != nil {
		return nil, nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	done, err := appliedClickHouseMigrations(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range files {
		if done[f] {
			applied = append(applied, f)
		} else {
			pending = append(pending, f)
		}
	}
	return applied, pending, nil
}

func clickHouseMigrationFiles(migrationsPath string) ([]string, error) {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func appliedClickHouseMigrations(ctx context.Context, db *ClickHouseDB) (map[string]bool, error) {
	var rows []struct {
		Name string `ch:"name"`
	}
	if err := db.Conn().Select(ctx, &rows, `SELECT DISTINCT name FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	applied := make(map[string]bool, len(rows))
	for _, r := range rows {
		applied[r.Name] = true
	}
	return applied, nil
}

// splitSQLStatements splits a script on lines ending in a semicolon.
// Comment-only lines are dropped and the trailing semicolon is removed.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	flush := func() {
		stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			flush()
		}
	}
	flush()
	return statements
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
