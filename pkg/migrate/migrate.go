package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"strconv"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var embedded embed.FS

// DefaultDir is the on-disk location of the migrations, used by create/validate.
const DefaultDir = "pkg/migrate/migrations"

// Dialects lists the goose dialects that ship migrations.
var Dialects = []string{"sqlite3", "postgres"}

// Source points goose at a migration tree. An empty Dir selects the copy
// embedded in the binary.
type Source struct {
	Dialect string
	Dir     string
}

func (s Source) prepare() (string, error) {
	if s.Dialect == "" {
		return "", fmt.Errorf("dialect is required")
	}
	if err := goose.SetDialect(s.Dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if s.Dir == "" {
		goose.SetBaseFS(embedded)
		return path.Join("migrations", s.Dialect), nil
	}
	goose.SetBaseFS(nil)
	return path.Join(s.Dir, s.Dialect), nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, src Source, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := src.prepare()
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, src Source, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	dir, err := src.prepare()
	if err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
