package assets

import (
	"fmt"
	"io"

	"github.com/at-ishikawa/qamus/internal/lexicon"
)

// EntryTemplate is the top-level data structure for the entry Markdown template
type EntryTemplate struct {
	Word     string
	Entry    lexicon.Entry
	Sections []EntrySection
}

// EntrySection is a titled list of Arabic/English pairs
type EntrySection struct {
	Title string
	Pairs []lexicon.Pair
}

// NewEntryTemplate orders the pair lists of entry into sections
func NewEntryTemplate(word string, entry lexicon.Entry) EntryTemplate {
	return EntryTemplate{
		Word:  word,
		Entry: entry,
		Sections: []EntrySection{
			{Title: "Synonyms", Pairs: entry.Synonyms},
			{Title: "Antonyms", Pairs: entry.Antonyms},
			{Title: "Example sentences", Pairs: entry.ExampleSentences},
			{Title: "Derivations", Pairs: entry.Derivations},
		},
	}
}

func WriteEntryMarkdown(output io.Writer, templatePath string, templateData EntryTemplate) error {
	tmpl, err := parseTextTemplateWithFallback(templatePath, fallbackEntryTemplate)
	if err != nil {
		return fmt.Errorf("parseTextTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
