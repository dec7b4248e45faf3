package store

import (
	"context"
	"time"
)

// DocumentRepo stores opaque JSON documents under string keys. It is the
// durable equivalent of browser local storage.
type DocumentRepo interface {
	// Get returns the document stored under key, or ok=false if absent.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Put upserts the document under key.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the document under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event by ID, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
