package document

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFromMarkdown(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		paragraphs []string
	}{
		{
			name:       "Empty text",
			text:       "",
			paragraphs: nil,
		},
		{
			name:       "Single paragraph",
			text:       "Hello world",
			paragraphs: []string{"Hello world"},
		},
		{
			name:       "Paragraph order is preserved",
			text:       "first\n\nsecond\n\nthird",
			paragraphs: []string{"first", "second", "third"},
		},
		{
			name:       "Single newlines stay inside a paragraph",
			text:       "line one\nline two\n\nnext",
			paragraphs: []string{"line one\nline two", "next"},
		},
		{
			name:       "Whitespace-only paragraphs are dropped",
			text:       "a\n\n   \n\nb",
			paragraphs: []string{"a", "b"},
		},
		{
			name:       "Raw paragraph text is kept",
			text:       "a\n\n\nb",
			paragraphs: []string{"a", "\nb"},
		},
		{
			name:       "Markdown syntax is kept as text",
			text:       "# Title\n\n**bold** and *em*",
			paragraphs: []string{"# Title", "**bold** and *em*"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := FromMarkdownWithKeys(tc.text, NewPrefixedKeySource("k"))

			if len(doc) != len(tc.paragraphs) {
				t.Fatalf("Expected %d blocks, got %d", len(tc.paragraphs), len(doc))
			}

			for i, block := range doc {
				if block.Type != BlockType {
					t.Errorf("Block %d: expected type %q, got %q", i, BlockType, block.Type)
				}
				if block.Style != StyleNormal {
					t.Errorf("Block %d: expected style %q, got %q", i, StyleNormal, block.Style)
				}
				if len(block.Children) != 1 {
					t.Fatalf("Block %d: expected exactly one span, got %d", i, len(block.Children))
				}
				span := block.Children[0]
				if span.Type != SpanType {
					t.Errorf("Block %d: expected span type %q, got %q", i, SpanType, span.Type)
				}
				if span.Text != tc.paragraphs[i] {
					t.Errorf("Block %d: expected text %q, got %q", i, tc.paragraphs[i], span.Text)
				}
				if len(span.Marks) != 0 {
					t.Errorf("Block %d: expected no marks, got %v", i, span.Marks)
				}
			}
		})
	}
}

func TestFromMarkdownKeysAreUnique(t *testing.T) {
	doc := FromMarkdown(strings.Repeat("paragraph\n\n", 50))

	seen := make(map[string]bool)
	for _, block := range doc {
		keys := []string{block.Key}
		for _, span := range block.Children {
			keys = append(keys, span.Key)
		}
		for _, key := range keys {
			if key == "" {
				t.Fatal("Expected non-empty key")
			}
			if seen[key] {
				t.Fatalf("Duplicate key %q", key)
			}
			seen[key] = true
		}
	}

	if len(seen) != 100 {
		t.Errorf("Expected 100 keys, got %d", len(seen))
	}
}

func TestToMarkdown(t *testing.T) {
	testCases := []struct {
		name     string
		doc      Document
		expected string
	}{
		{
			name:     "Empty document",
			doc:      Document{},
			expected: "",
		},
		{
			name:     "Nil document",
			doc:      nil,
			expected: "",
		},
		{
			name: "Spans are concatenated without separator",
			doc: Document{
				{Type: BlockType, Children: []Span{
					{Type: SpanType, Text: "Hello, "},
					{Type: SpanType, Text: "world", Marks: []string{"strong"}},
				}},
			},
			expected: "Hello, world",
		},
		{
			name: "Blocks are joined by a blank line",
			doc: Document{
				{Type: BlockType, Children: []Span{{Type: SpanType, Text: "one"}}},
				{Type: BlockType, Children: []Span{{Type: SpanType, Text: "two"}}},
			},
			expected: "one\n\ntwo",
		},
		{
			name: "Non-text blocks render empty",
			doc: Document{
				{Type: BlockType, Children: []Span{{Type: SpanType, Text: "one"}}},
				{Type: "image"},
				{Type: BlockType, Children: []Span{{Type: SpanType, Text: "two"}}},
			},
			expected: "one\n\n\n\ntwo",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToMarkdown(tc.doc)
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRoundTripIsLossy(t *testing.T) {
	original := Document{
		{Type: BlockType, Key: "a", Style: "h1", Children: []Span{
			{Type: SpanType, Key: "a1", Text: "Bold", Marks: []string{"strong"}},
			{Type: SpanType, Key: "a2", Text: " title"},
		}},
		{Type: "image", Key: "b"},
		{Type: BlockType, Key: "c", Children: []Span{{Type: SpanType, Key: "c1", Text: "Body"}}},
	}

	md := ToMarkdown(original)
	back := FromMarkdown(md)

	if ToMarkdown(back) != "Bold title\n\nBody" {
		t.Errorf("Expected paragraph text to survive, got %q", ToMarkdown(back))
	}
	if len(back) != 2 {
		t.Fatalf("Expected the image block to be dropped, got %d blocks", len(back))
	}
	for _, block := range back {
		if block.Style != StyleNormal {
			t.Errorf("Expected style to reset to normal, got %q", block.Style)
		}
		for _, span := range block.Children {
			if len(span.Marks) != 0 {
				t.Errorf("Expected marks to be lost, got %v", span.Marks)
			}
		}
	}
}

func TestMarkdownRoundTripPreservesParagraphs(t *testing.T) {
	texts := []string{
		"single",
		"first\n\nsecond",
		"# heading\n\n- item\n- item two\n\n> quote",
	}

	for _, text := range texts {
		if got := ToMarkdown(FromMarkdown(text)); got != text {
			t.Errorf("Expected %q, got %q", text, got)
		}
	}
}

func TestBlockJSON(t *testing.T) {
	t.Run("Text blocks encode empty arrays", func(t *testing.T) {
		doc := Document{{Type: BlockType, Key: "k", Style: StyleNormal, Children: []Span{{Type: SpanType, Key: "s", Text: "hi"}}}}

		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		out := string(data)
		if !strings.Contains(out, `"markDefs":[]`) {
			t.Errorf("Expected empty markDefs array, got %s", out)
		}
		if !strings.Contains(out, `"marks":[]`) {
			t.Errorf("Expected empty marks array, got %s", out)
		}
	})

	t.Run("Nil document encodes as array", func(t *testing.T) {
		var doc Document
		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("Expected [], got %s", data)
		}
	})

	t.Run("Unknown block kinds are preserved", func(t *testing.T) {
		input := `[{"_type":"image","_key":"img1","asset":{"_ref":"image-abc","_type":"reference"}},` +
			`{"_type":"block","_key":"b1","style":"normal","markDefs":[],"children":[{"_type":"span","_key":"s1","text":"hi","marks":["em"]}]}]`

		var doc Document
		if err := json.Unmarshal([]byte(input), &doc); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}

		if len(doc) != 2 {
			t.Fatalf("Expected 2 blocks, got %d", len(doc))
		}
		if doc[0].IsText() {
			t.Error("Expected image block not to be a text block")
		}
		if doc[1].Text() != "hi" {
			t.Errorf("Expected text 'hi', got %q", doc[1].Text())
		}

		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"asset":{"_ref":"image-abc","_type":"reference"}`) {
			t.Errorf("Expected image asset to survive re-encoding, got %s", data)
		}
	})

	t.Run("Unknown kinds may reuse field names with other shapes", func(t *testing.T) {
		input := `[{"_type":"table","_key":"t1","children":"not-an-array","style":{"x":1}},` +
			`{"_type":"block","_key":"b1","style":"normal","markDefs":[],"children":[{"_type":"span","_key":"s1","text":"after","marks":[]}]}]`

		var doc Document
		if err := json.Unmarshal([]byte(input), &doc); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		if len(doc) != 2 {
			t.Fatalf("Expected 2 blocks, got %d", len(doc))
		}
		if doc[0].Type != "table" || doc[0].Key != "t1" {
			t.Errorf("Expected table block t1, got %q/%q", doc[0].Type, doc[0].Key)
		}
		if got := ToMarkdown(doc); got != "\n\nafter" {
			t.Errorf("Expected table to read as an empty paragraph, got %q", got)
		}

		data, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if !strings.Contains(string(data), `"children":"not-an-array","style":{"x":1}`) {
			t.Errorf("Expected table block to be written back unchanged, got %s", data)
		}
	})
}
