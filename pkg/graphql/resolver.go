package graphql

import (
	"fmt"
	"math"

	"github.com/graphql-go/graphql"

	"github.com/hozondb/hozon-db/pkg/catalog"
	"github.com/hozondb/hozon-db/pkg/database"
	"github.com/hozondb/hozon-db/pkg/executor"
	"github.com/hozondb/hozon-db/pkg/sql"
)

type resolver struct {
	db *database.Database
}

func newResolver(db *database.Database) *resolver {
	return &resolver{db: db}
}

// resultPayload is the Go shape backing the QueryResult GraphQL type
type resultPayload struct {
	Message string          `json:"message"`
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

func newResultPayload(result *executor.Result) resultPayload {
	payload := resultPayload{
		Message: result.Message,
		Columns: result.Columns,
	}
	for _, row := range result.Rows {
		values := make([]interface{}, len(row.Values))
		for i, value := range row.Values {
			values[i] = value.Native()
		}
		payload.Rows = append(payload.Rows, values)
	}
	return payload
}

func (r *resolver) tables(p graphql.ResolveParams) (interface{}, error) {
	return r.db.Tables(), nil
}

func (r *resolver) table(p graphql.ResolveParams) (interface{}, error) {
	name := p.Args["name"].(string)
	schema, ok := r.db.Schema(name)
	if !ok {
		return nil, nil
	}

	columns := make([]map[string]interface{}, len(schema.Columns))
	for i, col := range schema.Columns {
		columns[i] = map[string]interface{}{
			"name": col.Name,
			"type": col.Type.String(),
		}
	}
	return map[string]interface{}{
		"name":    schema.Table,
		"columns": columns,
	}, nil
}

func (r *resolver) query(p graphql.ResolveParams) (interface{}, error) {
	result, err := r.db.Exec(p.Args["sql"].(string))
	if err != nil {
		return nil, err
	}
	return newResultPayload(result), nil
}

func (r *resolver) createTable(p graphql.ResolveParams) (interface{}, error) {
	name := p.Args["name"].(string)

	defs := p.Args["columns"].([]interface{})
	columns := make([]catalog.Column, len(defs))
	for i, def := range defs {
		fields := def.(map[string]interface{})
		colType, err := parseColumnType(fields["type"].(string))
		if err != nil {
			return nil, err
		}
		columns[i] = catalog.Column{Name: fields["name"].(string), Type: colType}
	}

	result, err := r.db.ExecStatement(sql.CreateTableStatement{Table: name, Columns: columns})
	if err != nil {
		return nil, err
	}
	return newResultPayload(result), nil
}

func (r *resolver) insert(p graphql.ResolveParams) (interface{}, error) {
	table := p.Args["table"].(string)

	raw := p.Args["values"].([]interface{})
	values := make([]catalog.Value, len(raw))
	for i, v := range raw {
		value, err := nativeToValue(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values[i] = value
	}

	result, err := r.db.ExecStatement(sql.InsertStatement{Table: table, Values: values})
	if err != nil {
		return nil, err
	}
	return newResultPayload(result), nil
}

func parseColumnType(name string) (catalog.DataType, error) {
	switch name {
	case "INTEGER":
		return catalog.TypeInteger, nil
	case "TEXT":
		return catalog.TypeText, nil
	case "BOOLEAN":
		return catalog.TypeBoolean, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", name)
	}
}

// nativeToValue maps a JSON value to a typed literal. Numbers must be whole
// and fit 32 bits; JSON has no integer type of its own.
func nativeToValue(v interface{}) (catalog.Value, error) {
	switch n := v.(type) {
	case nil:
		return catalog.NewNullValue(), nil
	case bool:
		return catalog.NewBooleanValue(n), nil
	case string:
		return catalog.NewTextValue(n), nil
	case int:
		return catalog.NewIntegerValue(int32(n)), nil
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return catalog.Value{}, fmt.Errorf("integer %d out of range", n)
		}
		return catalog.NewIntegerValue(int32(n)), nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return catalog.Value{}, fmt.Errorf("number %v is not a 32-bit integer", n)
		}
		return catalog.NewIntegerValue(int32(n)), nil
	default:
		return catalog.Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}
