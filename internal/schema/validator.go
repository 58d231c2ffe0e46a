// Package schema validates Kafka event payloads against their JSON Schemas.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"ai-speech-confidence-service/internal/models"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	ErrUnknownEventType = errors.New("no schema for event type")
	ErrInvalidEvent     = errors.New("event does not match schema")
)

// schemaFileByEventType maps event types to their embedded schema files.
var schemaFileByEventType = map[string]string{
	models.EventTypeTranscriptFinal: "schemas/transcript_final.json",
	models.EventTypeScoreCompleted:  "schemas/score_completed.json",
}

// Validator holds one compiled schema per event type. It is safe for
// concurrent use.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(schemaFileByEventType))}

	for eventType, file := range schemaFileByEventType {
		raw, err := schemaFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", file, err)
		}
		url := "schema://" + eventType + ".json"
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add resource %s: %w", file, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", file, err)
		}
		v.schemas[eventType] = compiled
	}
	return v, nil
}

// MustNew is like New but panics if an embedded schema is broken.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a Go value by its JSON encoding.
func (v *Validator) Validate(eventType string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return v.ValidateJSON(eventType, raw)
}

// ValidateJSON checks a raw JSON payload.
func (v *Validator) ValidateJSON(eventType string, raw []byte) error {
	sch, ok := v.schemas[eventType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", ErrInvalidEvent, err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}
