package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

// Migration pairs are stamped with the wall-clock second so that files
// created on different machines still sort into a single history. The
// stamped headers point authors at the storefront schema conventions:
// every tenant-scoped table carries a tenant_id column and the matching
// composite index.

const stampLayout = "20060102150405"

var upTemplate = template.Must(template.New("up").Parse(
	`-- {{.Version}}_{{.Slug}}.up.sql
-- {{.Description}}
--
-- Storefront schema rules:
--   * tenant-scoped tables (categories, products, orders) carry a
--     tenant_id uuid column and an index starting with it
--   * money columns are numeric(12,2), never float
--   * soft deletes are not used; rows are removed in the down step

`))

var downTemplate = template.Must(template.New("down").Parse(
	`-- {{.Version}}_{{.Slug}}.down.sql
-- Reverts: {{.Description}}
--
-- Undo the up step completely. A partial revert leaves the storefront
-- schema version table pointing at a state that never existed.

`))

// MigrationFile describes a freshly created up/down pair.
type MigrationFile struct {
	Version     string
	Slug        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes a timestamped up/down SQL pair into
// migrationsDir, creating the directory if needed. On any write failure
// the partial pair is removed so the directory never holds an up file
// without its down twin.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations dir: %w", err)
	}

	mf := &MigrationFile{
		Version:     time.Now().Format(stampLayout),
		Slug:        slugify(name),
		Description: description,
	}
	base := mf.Version + "_" + mf.Slug
	mf.UpPath = filepath.Join(migrationsDir, base+".up.sql")
	mf.DownPath = filepath.Join(migrationsDir, base+".down.sql")

	if err := renderTo(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := renderTo(mf.DownPath, downTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}
	return mf, nil
}

func renderTo(path string, tmpl *template.Template, mf *MigrationFile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return tmpl.Execute(f, mf)
}

// slugify lowercases a migration name and collapses runs of spaces,
// dashes and underscores into single underscores. Characters outside
// [a-z0-9_] are dropped.
func slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if s := b.String(); len(s) > 0 && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the sorted base names of all migration pairs
// in migrationsDir, one entry per pair. A missing directory is treated
// as an empty history.
func ListMigrations(migrationsDir string) ([]string, error) {
	ups, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("scan migrations dir: %w", err)
	}

	names := make([]string, 0, len(ups))
	for _, p := range ups {
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(p), ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}
