package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromGorm(db, config.DBDriverSQLite)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := NewFromGorm(newTestDB(t), config.DBDriverSQLite)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewSQLiteCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "nested", "ops_logs.db")

	client, err := New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer client.Close()

	if client.Dialect() != "sqlite3" {
		t.Fatalf("expected sqlite3 dialect, got %s", client.Dialect())
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{Driver: "mysql", DSN: "x"}, nil); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestSQLiteDir(t *testing.T) {
	cases := map[string]string{
		"data/ops_logs.db":              "data",
		"file:data/ops.db?cache=shared": "data",
		"file::memory:?cache=shared":    "",
		"ops.db":                        "",
	}
	for dsn, want := range cases {
		if got := sqliteDir(dsn); got != want {
			t.Fatalf("sqliteDir(%q) = %q, want %q", dsn, got, want)
		}
	}
}
