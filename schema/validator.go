package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed feedback_item.schema.json
var feedbackItemSchemaJSON string

// FeedbackItem is a validated v1 intake payload.
type FeedbackItem struct {
	PayloadVersion string  `json:"payload_version"`
	Department     string  `json:"department"`
	Category       string  `json:"category"`
	Subject        string  `json:"subject"`
	Body           string  `json:"body"`
	SubmittedAt    *string `json:"submitted_at,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateFeedbackItemPayload checks a raw intake payload against the v1
// schema and decodes it. Unknown fields and duplicate keys are rejected.
func ValidateFeedbackItemPayload(payload json.RawMessage) (*FeedbackItem, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var item FeedbackItem
	if err := json.Unmarshal(normalized, &item); err != nil {
		return nil, fmt.Errorf("decode feedback item: %w", err)
	}

	if strings.TrimSpace(item.Department) == "" ||
		strings.TrimSpace(item.Category) == "" ||
		strings.TrimSpace(item.Subject) == "" ||
		strings.TrimSpace(item.Body) == "" {
		return nil, fmt.Errorf("department, category, subject and body must not be blank")
	}

	return &item, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("feedback_item.schema.json", strings.NewReader(feedbackItemSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("feedback_item.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		compiledSchema = schema
	})
	return compiledSchema, compiledSchemaErr
}

func decodeStrictJSON(payload json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := ensureSingleDocument(decoder); err != nil {
		return nil, err
	}
	return value, nil
}

func ensureSingleDocument(decoder *json.Decoder) error {
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("payload must contain exactly one JSON document")
	}
	return nil
}
