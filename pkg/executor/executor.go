package executor

import (
	"fmt"

	"github.com/hozondb/hozon-db/pkg/catalog"
	"github.com/hozondb/hozon-db/pkg/sql"
	"github.com/hozondb/hozon-db/pkg/storage"
)

// Result carries the outcome of a statement. Selects fill Columns and Rows;
// statements without a result set fill Message only.
type Result struct {
	Message string
	Columns []string
	Rows    []catalog.Row
}

// Executor runs parsed statements against the catalog and the page store
type Executor struct {
	catalog *catalog.Catalog
	pager   *storage.Pager
}

// New creates an executor over an open catalog and pager
func New(cat *catalog.Catalog, pager *storage.Pager) *Executor {
	return &Executor{catalog: cat, pager: pager}
}

// Execute dispatches a statement to its handler
func (e *Executor) Execute(stmt sql.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case sql.CreateTableStatement:
		return e.executeCreateTable(s)
	case sql.InsertStatement:
		return e.executeInsert(s)
	case sql.SelectStatement:
		return e.executeSelect(s)
	default:
		return nil, fmt.Errorf("unsupported statement type %T", stmt)
	}
}

func (e *Executor) executeCreateTable(stmt sql.CreateTableStatement) (*Result, error) {
	schema := catalog.NewSchema(stmt.Table, stmt.Columns)
	if err := e.catalog.CreateTable(schema); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("table %s created", stmt.Table)}, nil
}

func (e *Executor) executeInsert(stmt sql.InsertStatement) (*Result, error) {
	meta, ok := e.catalog.Lookup(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, stmt.Table)
	}
	schema := meta.Schema

	if len(stmt.Values) != len(schema.Columns) {
		return nil, fmt.Errorf("%w: table %s has %d columns, got %d values",
			ErrValueCountMismatch, stmt.Table, len(schema.Columns), len(stmt.Values))
	}
	for i, value := range stmt.Values {
		if value.IsNull() {
			continue
		}
		if value.Type != schema.Columns[i].Type {
			return nil, fmt.Errorf("%w: column %s expects %s, got %s",
				ErrTypeMismatch, schema.Columns[i].Name, schema.Columns[i].Type, value.Type)
		}
	}

	encoded := catalog.NewRow(stmt.Values).Encode()

	pageID := meta.FirstPage()
	page, err := e.pager.ReadPage(pageID)
	if err != nil {
		return nil, err
	}
	pageMeta := storage.ReadTableMeta(page)

	if len(encoded) > pageMeta.FreeSpace() {
		return nil, fmt.Errorf("%w: row needs %d bytes, page %d has %d free",
			ErrPageFull, len(encoded), pageID, pageMeta.FreeSpace())
	}

	copy(page[pageMeta.FreeOffset:], encoded)
	pageMeta.FreeOffset += uint16(len(encoded))
	pageMeta.RowCount++
	pageMeta.IsFull = pageMeta.FreeSpace() == 0
	storage.WriteTableMeta(page, pageMeta)

	if err := e.pager.WritePage(pageID, page); err != nil {
		return nil, err
	}
	return &Result{Message: "1 row inserted"}, nil
}

func (e *Executor) executeSelect(stmt sql.SelectStatement) (*Result, error) {
	meta, ok := e.catalog.Lookup(stmt.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, stmt.Table)
	}
	schema := meta.Schema

	page, err := e.pager.ReadPage(meta.FirstPage())
	if err != nil {
		return nil, err
	}
	pageMeta := storage.ReadTableMeta(page)

	// An empty table answers with its full column list no matter what the
	// projection asked for, so even an unknown column name succeeds.
	if pageMeta.RowCount == 0 {
		return &Result{Message: "0 rows", Columns: schema.ColumnNames()}, nil
	}

	var indices []int
	var columns []string
	if stmt.AllColumns {
		indices = make([]int, len(schema.Columns))
		for i := range schema.Columns {
			indices[i] = i
		}
		columns = schema.ColumnNames()
	} else {
		for _, name := range stmt.Columns {
			idx, ok := schema.ColumnIndex(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s has no column %s", ErrUnknownColumn, stmt.Table, name)
			}
			indices = append(indices, idx)
			columns = append(columns, name)
		}
	}

	rows := make([]catalog.Row, 0, pageMeta.RowCount)
	offset := storage.TableMetaSize
	for i := uint16(0); i < pageMeta.RowCount; i++ {
		row, consumed, err := catalog.DecodeRow(page[offset:int(pageMeta.FreeOffset)])
		if err != nil {
			return nil, fmt.Errorf("failed to decode row %d on page %d: %w", i, meta.FirstPage(), err)
		}
		offset += consumed

		projected := make([]catalog.Value, len(indices))
		for j, idx := range indices {
			if idx >= len(row.Values) {
				return nil, fmt.Errorf("%w: row %d on page %d has %d values, need column %d",
					catalog.ErrTruncatedData, i, meta.FirstPage(), len(row.Values), idx)
			}
			projected[j] = row.Values[idx]
		}
		rows = append(rows, catalog.NewRow(projected))
	}

	return &Result{
		Message: fmt.Sprintf("%d rows", len(rows)),
		Columns: columns,
		Rows:    rows,
	}, nil
}
