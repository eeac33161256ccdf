package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
)

// Pager handles physical page I/O on a single database file. It owns the
// sidecar lock for the file's lifetime and tracks the authoritative page
// count from the file header.
type Pager struct {
	path     string
	file     *os.File
	lock     *FileLock
	numPages uint32
	mu       sync.Mutex
}

// Open opens an existing database file or creates a new one. The sidecar lock
// is acquired before the data file is touched; a held lock fails the open with
// ErrDatabaseBusy.
func Open(path string) (*Pager, error) {
	lock, err := AcquireFileLock(path)
	if err != nil {
		return nil, err
	}

	pager, err := openLocked(path, lock)
	if err != nil {
		// The marker must not outlive a failed open.
		_ = lock.Release()
		return nil, err
	}
	return pager, nil
}

func openLocked(path string, lock *FileLock) (*Pager, error) {
	if _, err := os.Stat(path); err == nil {
		return openExisting(path, lock)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}
	return createNew(path, lock)
}

func openExisting(path string, lock *FileLock) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	header := make([]byte, FileHeaderSize)
	if _, err := file.ReadAt(header, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != MagicNumber {
		file.Close()
		return nil, fmt.Errorf("%w: expected 0x%X, got 0x%X", ErrInvalidMagic, MagicNumber, magic)
	}

	numPages := binary.LittleEndian.Uint32(header[4:8])

	return &Pager{
		path:     path,
		file:     file,
		lock:     lock,
		numPages: numPages,
	}, nil
}

func createNew(path string, lock *FileLock) (*Pager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create data file: %w", err)
	}

	// Fresh files hold a single header page: magic + page count, zero-padded.
	header := make([]byte, PageSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicNumber)
	binary.LittleEndian.PutUint32(header[4:8], 1)

	if _, err := file.WriteAt(header, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write file header: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to sync data file: %w", err)
	}

	return &Pager{
		path:     path,
		file:     file,
		lock:     lock,
		numPages: 1,
	}, nil
}

// NumPages returns the total number of pages in the file
func (p *Pager) NumPages() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numPages
}

// Path returns the database file path
func (p *Pager) Path() string {
	return p.path
}

// AllocatePage extends the file by one page and returns the new page's id.
// The incremented page count is persisted into the header before returning.
// Data pages (id >= FirstDataPageID) get their metadata header initialized.
func (p *Pager) AllocatePage() (PageID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pageID := PageID(p.numPages)
	newCount := p.numPages + 1

	if err := p.file.Truncate(int64(newCount) * PageSize); err != nil {
		return 0, fmt.Errorf("failed to extend data file: %w", err)
	}

	countBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(countBytes, newCount)
	if _, err := p.file.WriteAt(countBytes, 4); err != nil {
		return 0, fmt.Errorf("failed to persist page count: %w", err)
	}

	if pageID >= FirstDataPageID {
		meta := make([]byte, TableMetaSize)
		WriteTableMeta(meta, NewTableMeta())
		if _, err := p.file.WriteAt(meta, int64(pageID)*PageSize); err != nil {
			return 0, fmt.Errorf("failed to initialize page %d metadata: %w", pageID, err)
		}
	}

	if err := p.file.Sync(); err != nil {
		return 0, fmt.Errorf("failed to sync data file: %w", err)
	}

	p.numPages = newCount
	return pageID, nil
}

// WritePage writes data to the page at pageID, padded to the full page size,
// and flushes it durably before returning.
func (p *Pager) WritePage(pageID PageID, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if uint32(pageID) >= p.numPages {
		return fmt.Errorf("%w: %d (max %d)", ErrPageOutOfRange, pageID, p.numPages-1)
	}
	if len(data) > PageSize {
		return fmt.Errorf("%w: %d bytes", ErrPageTooLarge, len(data))
	}

	buf := make([]byte, PageSize)
	copy(buf, data)

	if _, err := p.file.WriteAt(buf, int64(pageID)*PageSize); err != nil {
		return fmt.Errorf("failed to write page %d: %w", pageID, err)
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync page %d: %w", pageID, err)
	}

	return nil
}

// ReadPage returns the full fixed-size content of the page at pageID
func (p *Pager) ReadPage(pageID PageID) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if uint32(pageID) >= p.numPages {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrPageOutOfRange, pageID, p.numPages-1)
	}

	buf := make([]byte, PageSize)
	if _, err := p.file.ReadAt(buf, int64(pageID)*PageSize); err != nil {
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}

	return buf, nil
}

// ReadTableMeta reads the metadata header of the data page at pageID
func (p *Pager) ReadTableMeta(pageID PageID) (TableMeta, error) {
	page, err := p.ReadPage(pageID)
	if err != nil {
		return TableMeta{}, err
	}
	return ReadTableMeta(page), nil
}

// Close syncs and closes the data file and removes the lock marker. The
// marker is removed even when closing the file fails, so a crash-free
// process never leaves the database blocked.
func (p *Pager) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error

	if p.file != nil {
		if err := p.file.Sync(); err != nil {
			firstErr = fmt.Errorf("failed to sync data file: %w", err)
		}
		if err := p.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close data file: %w", err)
		}
		p.file = nil
	}

	if p.lock != nil {
		if err := p.lock.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.lock = nil
	}

	return firstErr
}
