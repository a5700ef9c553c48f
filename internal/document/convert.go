package document

import "strings"

// ParagraphSeparator separates blocks in the markdown form of a document.
const ParagraphSeparator = "\n\n"

// ToMarkdown flattens a document into editor markdown. Marks are dropped and
// non-text blocks render as empty paragraphs.
func ToMarkdown(doc Document) string {
	parts := make([]string, len(doc))
	for i, block := range doc {
		parts[i] = block.Text()
	}
	return strings.Join(parts, ParagraphSeparator)
}

// FromMarkdown converts editor markdown into a document with one normal block
// per paragraph. Blank paragraphs are skipped.
func FromMarkdown(text string) Document {
	return FromMarkdownWithKeys(text, NewKeySource())
}

func FromMarkdownWithKeys(text string, keys KeySource) Document {
	doc := Document{}
	for _, paragraph := range strings.Split(text, ParagraphSeparator) {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}

		doc = append(doc, Block{
			Type:     BlockType,
			Key:      keys.Next(),
			Style:    StyleNormal,
			MarkDefs: []MarkDef{},
			Children: []Span{{
				Type:  SpanType,
				Key:   keys.Next(),
				Text:  paragraph,
				Marks: []string{},
			}},
		})
	}
	return doc
}
