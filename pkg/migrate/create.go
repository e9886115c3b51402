package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes an empty goose migration for every dialect so the
// sqlite and postgres trees stay in lockstep:
//
//	<dir>/<dialect>/<YYYYMMDDHHMMSS>_<name>.sql
func CreateSQLMigration(dir string, name string, now time.Time) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}

	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	filename := fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), safe)
	template := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe)

	created := make([]string, 0, len(Dialects))
	for _, dialect := range Dialects {
		target := filepath.Join(dir, dialect)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return created, fmt.Errorf("mkdir %q: %w", target, err)
		}
		fullpath := filepath.Join(target, filename)
		if _, err := os.Stat(fullpath); err == nil {
			return created, fmt.Errorf("migration already exists: %s", fullpath)
		}
		if err := os.WriteFile(fullpath, []byte(template), 0o644); err != nil {
			return created, fmt.Errorf("write migration %q: %w", fullpath, err)
		}
		created = append(created, fullpath)
	}
	return created, nil
}
