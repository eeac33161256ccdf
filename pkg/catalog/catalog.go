package catalog

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/hozondb/hozon-db/pkg/storage"
)

// PageChain is the ordered list of pages holding a table's rows. Tables own
// exactly one page today; the chain keeps the multi-page extension out of the
// codecs when it lands.
type PageChain []storage.PageID

// SinglePageChain creates a chain of one page
func SinglePageChain(id storage.PageID) PageChain {
	return PageChain{id}
}

// First returns the chain's first page
func (c PageChain) First() storage.PageID {
	return c[0]
}

// Next returns the page following position i, if any
func (c PageChain) Next(i int) (storage.PageID, bool) {
	if i+1 < len(c) {
		return c[i+1], true
	}
	return 0, false
}

// TableMetadata pairs a table's schema with its storage location
type TableMetadata struct {
	Schema Schema
	Pages  PageChain
}

// FirstPage returns the table's data page
func (m TableMetadata) FirstPage() storage.PageID {
	return m.Pages.First()
}

// Catalog is the persistent directory of tables, backed exclusively by the
// catalog page. It is loaded once at open, held in memory for the session,
// and fully rewritten to disk after every mutation.
type Catalog struct {
	pager  *storage.Pager
	tables map[string]TableMetadata
}

// Load reads the catalog from the catalog page. An all-zero page is an empty
// catalog. On a fresh file the catalog page does not exist yet; it is
// allocated here so that table data pages always start after it.
func Load(pager *storage.Pager) (*Catalog, error) {
	c := &Catalog{
		pager:  pager,
		tables: make(map[string]TableMetadata),
	}

	if pager.NumPages() <= uint32(storage.CatalogPageID) {
		id, err := pager.AllocatePage()
		if err != nil {
			return nil, fmt.Errorf("failed to allocate catalog page: %w", err)
		}
		if id != storage.CatalogPageID {
			return nil, fmt.Errorf("catalog page allocated at unexpected id %d", id)
		}
		return c, nil
	}

	page, err := pager.ReadPage(storage.CatalogPageID)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog page: %w", err)
	}

	if allZero(page) {
		return c, nil
	}

	if err := c.decode(page); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) decode(page []byte) error {
	offset := 0

	if len(page) < 4 {
		return fmt.Errorf("%w reading table count", ErrTruncatedData)
	}
	numTables := int(binary.LittleEndian.Uint32(page[offset : offset+4]))
	offset += 4

	for i := 0; i < numTables; i++ {
		schema, consumed, err := DecodeSchema(page[offset:])
		if err != nil {
			return err
		}
		offset += consumed

		if len(page) < offset+4 {
			return fmt.Errorf("%w reading first page id", ErrTruncatedData)
		}
		firstPage := storage.PageID(binary.LittleEndian.Uint32(page[offset : offset+4]))
		offset += 4

		c.tables[schema.Table] = TableMetadata{
			Schema: schema,
			Pages:  SinglePageChain(firstPage),
		}
	}

	return nil
}

// CreateTable allocates a data page for the schema's table, registers it, and
// persists the whole catalog. A repeated table name overwrites the previous
// entry; uniqueness is not enforced at this layer.
func (c *Catalog) CreateTable(schema Schema) error {
	firstPage, err := c.pager.AllocatePage()
	if err != nil {
		return fmt.Errorf("failed to allocate data page for table %q: %w", schema.Table, err)
	}

	previous, existed := c.tables[schema.Table]
	c.tables[schema.Table] = TableMetadata{
		Schema: schema,
		Pages:  SinglePageChain(firstPage),
	}

	if err := c.Save(); err != nil {
		// Keep the in-memory view in step with the page so a failed create
		// does not leave a table that was never persisted.
		if existed {
			c.tables[schema.Table] = previous
		} else {
			delete(c.tables, schema.Table)
		}
		return err
	}
	return nil
}

// Lookup returns a table's metadata. Absence is reported to the caller, not
// treated as an error here.
func (c *Catalog) Lookup(name string) (TableMetadata, bool) {
	meta, ok := c.tables[name]
	return meta, ok
}

// Tables returns all table names, sorted
func (c *Catalog) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tables
func (c *Catalog) Len() int {
	return len(c.tables)
}

// Save rewrites the entire catalog to the catalog page. Entry order within
// the encoded buffer follows map iteration and is not stable across saves;
// decoding reconstructs the name-keyed map regardless.
func (c *Catalog) Save() error {
	if err := c.pager.WritePage(storage.CatalogPageID, c.encode()); err != nil {
		return fmt.Errorf("failed to write catalog page: %w", err)
	}
	return nil
}

func (c *Catalog) encode() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.tables)))
	for _, meta := range c.tables {
		buf = append(buf, meta.Schema.Encode()...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(meta.FirstPage()))
	}

	return buf
}

func allZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
