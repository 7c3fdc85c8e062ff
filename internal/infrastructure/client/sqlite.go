package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type SQLiteClient struct {
	DB *sqlx.DB
}

// NewSQLiteClient открывает файловую базу SQLite, создавая каталог при
// необходимости. База одна на весь процесс и передается в репозитории явно.
func NewSQLiteClient(path string) (*SQLiteClient, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite плохо переносит несколько писателей на одном файле
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{DB: db}, nil
}

func ensureDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(path, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create db dir %q: %w", dir, err)
	}
	return nil
}

func (c *SQLiteClient) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}

// HealthCheck проверяет состояние базы данных
func (c *SQLiteClient) HealthCheck(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}
