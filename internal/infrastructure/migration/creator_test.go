package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"add product stock column": "add_product_stock_column",
		"Add-Order-Items":          "add_order_items",
		"TENANT_INDEXES":           "tenant_indexes",
		"seed  categories":         "seed_categories",
		"v2 pricing!":              "v2_pricing",
		"  -_- ":                   "",
		"":                         "",
	}
	for input, want := range cases {
		assert.Equal(t, want, slugify(input), "slugify(%q)", input)
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add order items", "Order line items with unit prices")
	require.NoError(t, err)

	t.Run("pair shares a sortable version stamp", func(t *testing.T) {
		assert.Len(t, mf.Version, len(stampLayout))
		assert.Equal(t, mf.Version+"_add_order_items.up.sql", filepath.Base(mf.UpPath))
		assert.Equal(t, mf.Version+"_add_order_items.down.sql", filepath.Base(mf.DownPath))
	})

	t.Run("up header carries description and schema rules", func(t *testing.T) {
		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Order line items with unit prices")
		assert.Contains(t, string(content), "tenant_id")
	})

	t.Run("down header names what it reverts", func(t *testing.T) {
		content, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Reverts: Order line items with unit prices")
	})

	t.Run("missing directory is created", func(t *testing.T) {
		nested := filepath.Join(dir, "db", "migrations")
		_, err := CreateMigration(nested, "seed categories", "Default category tree")
		require.NoError(t, err)
		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestListMigrations(t *testing.T) {
	writePair := func(t *testing.T, dir, base string) {
		t.Helper()
		for _, suffix := range []string{".up.sql", ".down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, base+suffix), []byte("-- sql\n"), 0o644))
		}
	}

	t.Run("one entry per pair, sorted", func(t *testing.T) {
		dir := t.TempDir()
		writePair(t, dir, "20240301120000_add_products")
		writePair(t, dir, "20240101090000_init_schema")
		writePair(t, dir, "20240201100000_add_users")

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20240101090000_init_schema",
			"20240201100000_add_users",
			"20240301120000_add_products",
		}, names)
	})

	t.Run("missing directory reads as empty history", func(t *testing.T) {
		names, err := ListMigrations(filepath.Join(t.TempDir(), "never-created"))
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("strays and directories are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writePair(t, dir, "20240101090000_init_schema")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("docs"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitkeep"), nil, 0o644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0o755))

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"20240101090000_init_schema"}, names)
	})
}

func TestCreateMigration_SlugEndsUpInListing(t *testing.T) {
	dir := t.TempDir()
	mf, err := CreateMigration(dir, "Add Tenant Indexes", "Composite indexes on tenant_id")
	require.NoError(t, err)

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, names, 1)
	assert.True(t, strings.HasPrefix(names[0], mf.Version))
	assert.True(t, strings.HasSuffix(names[0], "_add_tenant_indexes"))
}
