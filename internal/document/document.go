// Package document models the block-based rich text stored in the content store
// and converts it to and from the flat markdown used by the editor.
package document

import (
	"encoding/json"
	"strings"
)

const (
	BlockType   = "block"
	SpanType    = "span"
	StyleNormal = "normal"
)

// Document is an ordered list of blocks.
type Document []Block

// MarkDef defines an annotation referenced from span marks (links and the like).
type MarkDef map[string]any

type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

// Block is one structural unit of a document. Blocks whose Type is not
// BlockType are carried opaquely: their original encoding is written back
// unchanged.
type Block struct {
	Type     string    `json:"_type"`
	Key      string    `json:"_key"`
	Style    string    `json:"style,omitempty"`
	MarkDefs []MarkDef `json:"markDefs"`
	Children []Span    `json:"children"`

	raw json.RawMessage
}

type blockAlias Block

// blockHeader is the part every block kind shares.
type blockHeader struct {
	Type string `json:"_type"`
	Key  string `json:"_key"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var header blockHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	// Other kinds may shape style or children any way they like.
	if header.Type != BlockType {
		*b = Block{
			Type: header.Type,
			Key:  header.Key,
			raw:  append(json.RawMessage(nil), data...),
		}
		return nil
	}

	var alias blockAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*b = Block(alias)
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	if b.Type != BlockType && len(b.raw) > 0 {
		return b.raw, nil
	}

	alias := blockAlias(b)
	if alias.MarkDefs == nil {
		alias.MarkDefs = []MarkDef{}
	}
	if alias.Children == nil {
		alias.Children = []Span{}
	}
	for i := range alias.Children {
		if alias.Children[i].Marks == nil {
			alias.Children[i].Marks = []string{}
		}
	}
	return json.Marshal(alias)
}

// IsText reports whether the block is a text block the converter understands.
func (b Block) IsText() bool {
	return b.Type == BlockType
}

// Text returns the concatenated text of the block's spans, or "" for any
// other block kind.
func (b Block) Text() string {
	if !b.IsText() {
		return ""
	}
	var s strings.Builder
	for _, child := range b.Children {
		s.WriteString(child.Text)
	}
	return s.String()
}

// IsEmpty reports whether the document has no blocks at all.
func (d Document) IsEmpty() bool {
	return len(d) == 0
}

func (d Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Block(d))
}
