// Package lexicon holds the fixed instruction and output schema of a
// dictionary lookup, and checks generated entries against that schema.
package lexicon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/qamus/internal/inference"
	"github.com/xeipuuv/gojsonschema"
)

const SystemInstruction = "You are an expert Arabic linguist and lexicographer. " +
	"Provide a comprehensive, structured dictionary entry for the user's word. " +
	"Your response MUST be a single JSON object strictly following the provided schema. " +
	"Do not include any text outside of the JSON object."

// ErrSchemaMismatch is wrapped by ValidateEntry when an entry does not conform
var ErrSchemaMismatch = errors.New("entry does not match the response schema")

func pairListSchema() *inference.Schema {
	return &inference.Schema{
		Type: inference.TypeArray,
		Items: &inference.Schema{
			Type: inference.TypeObject,
			Properties: map[string]*inference.Schema{
				"arabic":  {Type: inference.TypeString},
				"english": {Type: inference.TypeString},
			},
		},
	}
}

// EntrySchema returns the output schema of a dictionary entry.
// A new value is returned on every call so callers may not alter a shared one.
func EntrySchema() *inference.Schema {
	return &inference.Schema{
		Type: inference.TypeObject,
		Properties: map[string]*inference.Schema{
			"definition_arabic":  {Type: inference.TypeString},
			"definition_english": {Type: inference.TypeString},
			"root_word_arabic":   {Type: inference.TypeString},
			"root_word_english":  {Type: inference.TypeString},
			"synonyms":           pairListSchema(),
			"antonyms":           pairListSchema(),
			"example_sentences":  pairListSchema(),
			"derivations":        pairListSchema(),
			"cultural_notes":     {Type: inference.TypeString},
		},
	}
}

// toJSONSchema translates the upstream schema dialect into JSON Schema
func toJSONSchema(schema *inference.Schema) map[string]any {
	result := map[string]any{}
	if schema == nil {
		return result
	}
	if schema.Type != "" {
		result["type"] = strings.ToLower(string(schema.Type))
	}
	if len(schema.Properties) > 0 {
		properties := make(map[string]any, len(schema.Properties))
		for name, property := range schema.Properties {
			properties[name] = toJSONSchema(property)
		}
		result["properties"] = properties
	}
	if schema.Items != nil {
		result["items"] = toJSONSchema(schema.Items)
	}
	if len(schema.Required) > 0 {
		result["required"] = schema.Required
	}
	return result
}

// ValidateEntry validates the raw JSON of an entry against schema
func ValidateEntry(schema *inference.Schema, raw json.RawMessage) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(toJSONSchema(schema)),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("gojsonschema.Validate > %w", err)
	}
	if result.Valid() {
		return nil
	}

	descriptions := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		descriptions = append(descriptions, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(descriptions, "; "))
}
