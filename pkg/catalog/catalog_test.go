package catalog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/hozondb/hozon-db/pkg/storage"
)

func openTestCatalog(t *testing.T, path string) (*storage.Pager, *Catalog) {
	t.Helper()

	pager, err := storage.Open(path)
	if err != nil {
		t.Fatalf("failed to open pager: %v", err)
	}
	t.Cleanup(func() { pager.Close() })

	cat, err := Load(pager)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return pager, cat
}

func TestLoadBootstrapsCatalogPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	pager, cat := openTestCatalog(t, path)

	if pager.NumPages() != 2 {
		t.Errorf("expected 2 pages after bootstrap, got %d", pager.NumPages())
	}
	if cat.Len() != 0 {
		t.Errorf("expected empty catalog, got %d tables", cat.Len())
	}
}

func TestCreateTableAllocatesDataPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, cat := openTestCatalog(t, path)

	schema := NewSchema("users", []Column{
		{Name: "id", Type: TypeInteger},
		{Name: "name", Type: TypeText},
	})
	if err := cat.CreateTable(schema); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	meta, ok := cat.Lookup("users")
	if !ok {
		t.Fatal("expected users table in catalog")
	}
	if meta.FirstPage() != storage.FirstDataPageID {
		t.Errorf("expected first data page %d, got %d", storage.FirstDataPageID, meta.FirstPage())
	}
	if meta.Schema.Table != "users" || len(meta.Schema.Columns) != 2 {
		t.Errorf("unexpected schema: %+v", meta.Schema)
	}
}

func TestCatalogPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	pager, cat := openTestCatalog(t, path)
	if err := cat.CreateTable(NewSchema("users", []Column{{Name: "id", Type: TypeInteger}})); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := cat.CreateTable(NewSchema("posts", []Column{{Name: "title", Type: TypeText}})); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := pager.Close(); err != nil {
		t.Fatalf("failed to close pager: %v", err)
	}

	_, reopened := openTestCatalog(t, path)
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 tables after reopen, got %d", reopened.Len())
	}

	users, ok := reopened.Lookup("users")
	if !ok {
		t.Fatal("expected users table after reopen")
	}
	if users.Schema.Columns[0].Type != TypeInteger {
		t.Errorf("unexpected users schema: %+v", users.Schema)
	}
	posts, ok := reopened.Lookup("posts")
	if !ok {
		t.Fatal("expected posts table after reopen")
	}
	if posts.FirstPage() == users.FirstPage() {
		t.Error("expected tables to own distinct pages")
	}
}

func TestCreateTableDuplicateNameOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, cat := openTestCatalog(t, path)

	if err := cat.CreateTable(NewSchema("t", []Column{{Name: "a", Type: TypeInteger}})); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	first, _ := cat.Lookup("t")

	if err := cat.CreateTable(NewSchema("t", []Column{{Name: "b", Type: TypeText}})); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	if cat.Len() != 1 {
		t.Errorf("expected 1 table, got %d", cat.Len())
	}
	meta, _ := cat.Lookup("t")
	if meta.Schema.Columns[0].Name != "b" {
		t.Errorf("expected overwritten schema, got %+v", meta.Schema)
	}
	if meta.FirstPage() == first.FirstPage() {
		t.Error("expected a fresh page for the overwriting table")
	}
}

func TestTablesSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, cat := openTestCatalog(t, path)

	for _, name := range []string{"zebra", "alpha", "mango"} {
		if err := cat.CreateTable(NewSchema(name, []Column{{Name: "x", Type: TypeInteger}})); err != nil {
			t.Fatalf("CreateTable failed: %v", err)
		}
	}

	names := cat.Tables()
	want := []string{"alpha", "mango", "zebra"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("expected %v, got %v", want, names)
			break
		}
	}
}

func TestCreateTableSaveFailureRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	_, cat := openTestCatalog(t, path)

	if err := cat.CreateTable(NewSchema("users", []Column{{Name: "id", Type: TypeInteger}})); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	// A column name longer than a page makes the catalog encoding too
	// large to persist, so saving the new table fails.
	huge := strings.Repeat("x", storage.PageSize+1)
	err := cat.CreateTable(NewSchema("oversized", []Column{{Name: huge, Type: TypeText}}))
	if err == nil {
		t.Fatal("expected CreateTable to fail")
	}

	if _, ok := cat.Lookup("oversized"); ok {
		t.Error("failed create left the table in the catalog")
	}
	if cat.Len() != 1 {
		t.Errorf("expected 1 table after failed create, got %d", cat.Len())
	}
	if _, ok := cat.Lookup("users"); !ok {
		t.Error("existing table disappeared after failed create")
	}
}
