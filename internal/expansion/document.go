package expansion

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentVersion is the only document version understood.
const DocumentVersion = 1

const schemaURL = "https://goxviet.dev/schema/shortcuts-v1.json"

//go:embed schema/shortcuts-v1.schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Document is the JSON exchange format:
//
//	{"version": 1, "shortcuts": [{"trigger": "vn", "replacement": "Việt Nam"}]}
type Document struct {
	Version   int     `json:"version"`
	Shortcuts []Entry `json:"shortcuts"`
}

// NewDocument wraps entries in a current-version document.
func NewDocument(entries []Entry) Document {
	if entries == nil {
		entries = []Entry{}
	}
	return Document{Version: DocumentVersion, Shortcuts: entries}
}

type entryJSON struct {
	Trigger     string    `json:"trigger"`
	Replacement string    `json:"replacement"`
	Enabled     *bool     `json:"enabled,omitempty"`
	Method      Method    `json:"method"`
	Condition   Condition `json:"condition"`
}

// MarshalJSON writes every field, enabled included.
func (e Entry) MarshalJSON() ([]byte, error) {
	enabled := e.Enabled
	return json.Marshal(entryJSON{
		Trigger:     e.Trigger,
		Replacement: e.Replacement,
		Enabled:     &enabled,
		Method:      e.Method,
		Condition:   e.Condition,
	})
}

// UnmarshalJSON treats a missing "enabled" as true.
func (e *Entry) UnmarshalJSON(b []byte) error {
	var w entryJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Entry{
		Trigger:     w.Trigger,
		Replacement: w.Replacement,
		Enabled:     w.Enabled == nil || *w.Enabled,
		Method:      w.Method,
		Condition:   w.Condition,
	}
	return nil
}

// Decode reads and validates a document. Entries come back normalized.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	s, err := documentSchema()
	if err != nil {
		return Document{}, err
	}
	if err := s.Validate(raw); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	for i := range doc.Shortcuts {
		doc.Shortcuts[i] = doc.Shortcuts[i].Normalize()
	}
	return doc, nil
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
