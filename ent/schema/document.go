package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// Document is one durable JSON blob keyed by name: the progress record and
// the chat history each live in a single row.
type Document struct {
	ent.Schema
}

func (Document) Fields() []ent.Field {
	return []ent.Field{
		field.String("doc_key").
			Unique().
			Immutable().
			Comment("Storage key, e.g. lessonProgress"),
		field.Text("data").
			Comment("Serialized JSON document"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
