package lexicon

import (
	"encoding/json"
	"fmt"

	"github.com/at-ishikawa/qamus/internal/inference"
)

// Options are the per-process constants of a lookup. They never vary by request.
type Options struct {
	SystemInstruction string
	// EnforceSchema sends Schema to the upstream and checks the result against it
	EnforceSchema   bool
	Schema          *inference.Schema
	MaxOutputTokens int
}

// DefaultOptions enforces the dictionary entry schema
func DefaultOptions() Options {
	return Options{
		SystemInstruction: SystemInstruction,
		EnforceSchema:     true,
		Schema:            EntrySchema(),
		MaxOutputTokens:   inference.DefaultMaxOutputTokens,
	}
}

// NewOptions uses the fixed instruction and entry schema.
// A non-positive maxOutputTokens leaves the limit to the upstream.
func NewOptions(enforceSchema bool, maxOutputTokens int) Options {
	return Options{
		SystemInstruction: SystemInstruction,
		EnforceSchema:     enforceSchema,
		Schema:            EntrySchema(),
		MaxOutputTokens:   max(maxOutputTokens, 0),
	}
}

// NewRequest builds the upstream request for prompt
func (o Options) NewRequest(prompt string) inference.GenerateEntryRequest {
	request := inference.GenerateEntryRequest{
		Prompt:            prompt,
		SystemInstruction: o.SystemInstruction,
		MaxOutputTokens:   o.MaxOutputTokens,
	}
	if o.EnforceSchema {
		request.Schema = o.Schema
	}
	return request
}

// Check returns an error when the schema is enforced and raw does not conform.
// Without enforcement any object is accepted.
func (o Options) Check(raw json.RawMessage) error {
	if !o.EnforceSchema || o.Schema == nil {
		return nil
	}
	return ValidateEntry(o.Schema, raw)
}

type Pair struct {
	Arabic  string `json:"arabic" yaml:"arabic"`
	English string `json:"english" yaml:"english"`
}

// Entry is the typed view of an entry generated under EntrySchema
type Entry struct {
	DefinitionArabic  string `json:"definition_arabic" yaml:"definition_arabic"`
	DefinitionEnglish string `json:"definition_english" yaml:"definition_english"`
	RootWordArabic    string `json:"root_word_arabic" yaml:"root_word_arabic"`
	RootWordEnglish   string `json:"root_word_english" yaml:"root_word_english"`
	Synonyms          []Pair `json:"synonyms" yaml:"synonyms"`
	Antonyms          []Pair `json:"antonyms" yaml:"antonyms"`
	ExampleSentences  []Pair `json:"example_sentences" yaml:"example_sentences"`
	Derivations       []Pair `json:"derivations" yaml:"derivations"`
	CulturalNotes     string `json:"cultural_notes" yaml:"cultural_notes"`
}

// ParseEntry decodes raw into an Entry. Unknown keys are ignored.
func ParseEntry(raw json.RawMessage) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("json.Unmarshal > %w", err)
	}
	return entry, nil
}
