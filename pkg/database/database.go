package database

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hozondb/hozon-db/pkg/backup"
	"github.com/hozondb/hozon-db/pkg/catalog"
	"github.com/hozondb/hozon-db/pkg/compression"
	"github.com/hozondb/hozon-db/pkg/executor"
	"github.com/hozondb/hozon-db/pkg/sql"
	"github.com/hozondb/hozon-db/pkg/storage"
)

// Database is the top-level handle over one database file. Statements run
// one at a time under an internal mutex; cross-process exclusion comes from
// the pager's file lock.
type Database struct {
	mu       sync.Mutex
	pager    *storage.Pager
	catalog  *catalog.Catalog
	executor *executor.Executor
}

// Stats summarizes an open database
type Stats struct {
	Path   string   `json:"path"`
	Pages  uint32   `json:"pages"`
	Tables []string `json:"tables"`
}

// Open opens or creates the database file at path
func Open(path string) (*Database, error) {
	pager, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(pager)
	if err != nil {
		pager.Close()
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return &Database{
		pager:    pager,
		catalog:  cat,
		executor: executor.New(cat, pager),
	}, nil
}

// Exec parses and runs one SQL statement
func (db *Database) Exec(input string) (*executor.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stmt, err := sql.Parse(input)
	if err != nil {
		return nil, err
	}
	return db.executor.Execute(stmt)
}

// ExecStatement runs an already-parsed statement. Callers that build typed
// statements skip the tokenizer this way.
func (db *Database) ExecStatement(stmt sql.Statement) (*executor.Result, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.executor.Execute(stmt)
}

// Schema returns a table's schema
func (db *Database) Schema(table string) (catalog.Schema, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	meta, ok := db.catalog.Lookup(table)
	return meta.Schema, ok
}

// Tables returns the sorted table names
func (db *Database) Tables() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.catalog.Tables()
}

// Stats returns a snapshot of the database's size and contents
func (db *Database) Stats() Stats {
	db.mu.Lock()
	defer db.mu.Unlock()
	return Stats{
		Path:   db.pager.Path(),
		Pages:  db.pager.NumPages(),
		Tables: db.catalog.Tables(),
	}
}

// Path returns the database file path
func (db *Database) Path() string {
	return db.pager.Path()
}

// Backup writes a compressed snapshot of the database file to w. The
// statement mutex is held for the duration, so the image is consistent.
func (db *Database) Backup(w io.Writer, algorithm compression.Algorithm) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	image, err := db.fileImage()
	if err != nil {
		return err
	}
	return backup.Write(w, image, algorithm)
}

func (db *Database) fileImage() ([]byte, error) {
	numPages := db.pager.NumPages()
	image := make([]byte, 0, int(numPages)*storage.PageSize)
	for id := storage.PageID(0); uint32(id) < numPages; id++ {
		page, err := db.pager.ReadPage(id)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d for backup: %w", id, err)
		}
		image = append(image, page...)
	}
	return image, nil
}

// Close releases the database file and its lock
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.pager.Close()
}

// Restore reads a backup stream and writes the database file at path. The
// target must not already exist; restoring over a live database is refused.
func Restore(path string, r io.Reader) error {
	image, err := backup.Read(r)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create restore target: %w", err)
	}
	if _, err := file.Write(image); err != nil {
		file.Close()
		return fmt.Errorf("failed to write restore target: %w", err)
	}
	return file.Close()
}
