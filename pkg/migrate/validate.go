package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir validates an on-disk migration tree.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded validates the migrations compiled into the binary.
func ValidateEmbedded() error {
	return ValidateFS(embedded, "migrations")
}

// ValidateFS checks filenames and goose headers per dialect and requires every
// dialect to declare the same set of versions.
func ValidateFS(fsys fs.FS, root string) error {
	var reference []string
	for _, dialect := range Dialects {
		versions, err := validateDialect(fsys, path.Join(root, dialect))
		if err != nil {
			return err
		}
		if reference == nil {
			reference = versions
			continue
		}
		if strings.Join(reference, ",") != strings.Join(versions, ",") {
			return fmt.Errorf("dialect %s versions %v differ from %s versions %v", dialect, versions, Dialects[0], reference)
		}
	}
	return nil
}

func validateDialect(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	versions := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := e.Name()

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name
		versions = append(versions, version)

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}
	sort.Strings(versions)
	return versions, nil
}
