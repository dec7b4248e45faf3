package progress

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// ClearPrompt is the confirmation question asked before clearing progress.
const ClearPrompt = "Are you sure you want to clear all progress? This cannot be undone."

// ErrInvalidProgress is returned when imported data is not a usable
// progress record.
var ErrInvalidProgress = errors.New("Invalid progress data format")

//go:embed progress.schema.json
var schemaJSON []byte

const schemaURL = "schema://progress.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func recordSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse progress schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ExportFilename is the suggested file name for an export taken at now.
func ExportFilename(now time.Time) string {
	return "ai-change-agent-progress-" + now.Format("2006-01-02") + ".json"
}

// Export serialises the full record as indented JSON.
func (s *Store) Export(now time.Time) (string, []byte, error) {
	rec := s.Snapshot()
	rec.Version = RecordVersion
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("encode progress: %w", err)
	}
	return ExportFilename(now), data, nil
}

// DecodeRecord parses and validates an exported record.
func DecodeRecord(data []byte) (Record, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidProgress, err)
	}
	sch, err := recordSchema()
	if err != nil {
		return Record{}, err
	}
	if err := sch.Validate(parsed); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidProgress, err)
	}

	var rec Record
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidProgress, err)
	}
	if err := checkVersion(rec.Version); err != nil {
		return Record{}, err
	}
	rec.Version = RecordVersion
	if rec.Lessons == nil {
		rec.Lessons = make(map[int]*LessonProgress)
	}
	return rec, nil
}

// checkVersion accepts records without a version (written before versioning)
// and records whose major version matches RecordVersion.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: bad version %q", ErrInvalidProgress, v)
	}
	if semver.Major(v) != semver.Major(RecordVersion) {
		return fmt.Errorf("%w: unsupported version %s", ErrInvalidProgress, v)
	}
	return nil
}

// Import replaces the whole record with data. On any error the current
// record is left untouched.
func (s *Store) Import(ctx context.Context, data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.record
	s.record = rec
	if err := s.persist(ctx); err != nil {
		s.record = prev
		return err
	}
	s.log.Info("progress imported", "lessons", len(rec.Lessons))
	return nil
}

// Clear asks confirm with ClearPrompt and, on yes, removes the saved copy
// and resets the record. A nil confirm skips the question. When the saved
// copy cannot be removed the record is kept.
func (s *Store) Clear(ctx context.Context, confirm func(prompt string) bool) (bool, error) {
	if confirm != nil && !confirm(ClearPrompt) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.docs.Delete(ctx, DocumentKey); err != nil {
		return false, fmt.Errorf("delete saved progress: %w", err)
	}
	s.record = newRecord()
	s.log.Info("progress cleared")
	return true, nil
}
