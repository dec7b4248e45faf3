package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	documentsTable = "documents"
	llmEventsTable = "llm_request_events"
)

var (
	documentColumns = []*schema.Column{
		{Name: "doc_key", Type: field.TypeString, Unique: true},
		{Name: "data", Type: field.TypeString, Size: 1 << 24},
		{Name: "updated_at", Type: field.TypeTime},
	}
	documentTable = &schema.Table{
		Name:       documentsTable,
		Columns:    documentColumns,
		PrimaryKey: []*schema.Column{documentColumns[0]},
	}

	llmEventColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 1 << 20, Default: ""},
	}
	llmEventTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    llmEventColumns,
		PrimaryKey: []*schema.Column{llmEventColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmEventColumns[2]}},
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{llmEventColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmEventColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{llmEventColumns[9]}},
		},
	}

	tables = []*schema.Table{documentTable, llmEventTable}
)

// migrate creates missing tables, columns and indexes.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
