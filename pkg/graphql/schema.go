package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/hozondb/hozon-db/pkg/database"
)

// Schema creates the GraphQL schema over one database
func Schema(db *database.Database) (graphql.Schema, error) {
	columnInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "ColumnInfo",
		Description: "A column of a table",
		Fields: graphql.Fields{
			"name": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Column name",
			},
			"type": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Column type (INTEGER, TEXT or BOOLEAN)",
			},
		},
	})

	tableInfoType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "TableInfo",
		Description: "A table and its schema",
		Fields: graphql.Fields{
			"name": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Table name",
			},
			"columns": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(columnInfoType)),
				Description: "Table columns in declaration order",
			},
		},
	})

	queryResultType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "QueryResult",
		Description: "Result of a SQL statement",
		Fields: graphql.Fields{
			"message": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Human-readable outcome",
			},
			"columns": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "Result column names",
			},
			"rows": &graphql.Field{
				Type:        graphql.NewList(JSONScalar),
				Description: "Result rows, each an array of values",
			},
		},
	})

	columnInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "ColumnInput",
		Description: "A column definition for createTable",
		Fields: graphql.InputObjectConfigFieldMap{
			"name": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Column name",
			},
			"type": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "Column type (INTEGER, TEXT or BOOLEAN)",
			},
		},
	})

	resolver := newResolver(db)

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Query",
		Description: "Root query type",
		Fields: graphql.Fields{
			"tables": &graphql.Field{
				Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
				Description: "List all table names",
				Resolve:     resolver.tables,
			},
			"table": &graphql.Field{
				Type:        tableInfoType,
				Description: "Look up one table's schema",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Table name",
					},
				},
				Resolve: resolver.table,
			},
			"query": &graphql.Field{
				Type:        queryResultType,
				Description: "Run a SELECT statement",
				Args: graphql.FieldConfigArgument{
					"sql": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "SQL text",
					},
				},
				Resolve: resolver.query,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Mutation",
		Description: "Root mutation type",
		Fields: graphql.Fields{
			"createTable": &graphql.Field{
				Type:        queryResultType,
				Description: "Create a table",
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Table name",
					},
					"columns": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(columnInput))),
						Description: "Column definitions",
					},
				},
				Resolve: resolver.createTable,
			},
			"insert": &graphql.Field{
				Type:        queryResultType,
				Description: "Insert one row",
				Args: graphql.FieldConfigArgument{
					"table": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.String),
						Description: "Table name",
					},
					"values": &graphql.ArgumentConfig{
						Type:        graphql.NewNonNull(graphql.NewList(JSONScalar)),
						Description: "Row values in column order. Pass null values through variables.",
					},
				},
				Resolve: resolver.insert,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
