package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMRequestEvent records every chat helper call for cost tracking and
// debugging.
type LLMRequestEvent struct {
	ent.Schema
}

func (LLMRequestEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (LLMRequestEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("provider").
			Comment("Provider name: openrouter, openai, anthropic, gemini"),
		field.String("model").
			Comment("Model ID sent upstream"),
		field.String("purpose").
			Comment("Caller label, e.g. chat"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success"),
		field.String("error_message").
			Default(""),
		field.Text("request_body").
			Default("").
			Comment("Request JSON, truncated"),
		field.Text("response_body").
			Default("").
			Comment("Response JSON, truncated"),
	}
}

func (LLMRequestEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("provider"),
		index.Fields("purpose"),
		index.Fields("success"),
	}
}
