package inference

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for generating dictionary entries
type Client interface {
	GenerateEntry(ctx context.Context, params GenerateEntryRequest) (GenerateEntryResponse, error)
}

// GenerateEntryRequest holds the prompt and the session constants sent with it
type GenerateEntryRequest struct {
	Prompt            string
	SystemInstruction string
	// Schema is sent as the response schema when non-nil
	Schema          *Schema
	MaxOutputTokens int
}

// GenerateEntryResponse is the decoded object embedded in the upstream response
type GenerateEntryResponse struct {
	Entry map[string]any
	// Raw is the embedded text exactly as the upstream returned it
	Raw json.RawMessage
}

// SchemaType is a type name in the generative-language schema dialect
type SchemaType string

const (
	TypeObject  SchemaType = "OBJECT"
	TypeArray   SchemaType = "ARRAY"
	TypeString  SchemaType = "STRING"
	TypeNumber  SchemaType = "NUMBER"
	TypeInteger SchemaType = "INTEGER"
	TypeBoolean SchemaType = "BOOLEAN"
)

// Schema describes the structured output requested from the model.
// Field names follow the upstream wire format.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

const (
	DefaultMaxOutputTokens = 1000
)
