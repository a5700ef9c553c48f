// Package util provides content hashing and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
)

var ErrNoFrontMatter = errors.New("invalid front matter format")

var frontMatterDelimiter = []byte("%%%")

// FrontMatter is the TOML header of a markdown file handed to the publisher.
type FrontMatter struct {
	Title    string    `toml:"title"`
	Subtitle string    `toml:"subtitle"`
	Author   string    `toml:"author"`
	Category string    `toml:"category"`
	Date     time.Time `toml:"date"`
	Image    string    `toml:"image"`

	// Consumed is the number of bytes of the normalised input taken by the
	// header, delimiters included.
	Consumed int `toml:"-"`
}

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

// GetFrontMatter parses a %%%-delimited TOML header at the very start of md
// and returns it together with the markdown body that follows.
func GetFrontMatter(md []byte) (*FrontMatter, []byte, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	if !bytes.HasPrefix(md, frontMatterDelimiter) {
		return nil, nil, ErrNoFrontMatter
	}

	rest := md[len(frontMatterDelimiter):]
	closing := bytes.Index(rest, frontMatterDelimiter)
	if closing == -1 {
		return nil, nil, ErrNoFrontMatter
	}

	header := rest[:closing]
	end := len(frontMatterDelimiter) + closing + len(frontMatterDelimiter)

	info := &FrontMatter{}
	if _, err := toml.Decode(string(header), info); err != nil {
		return nil, nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	body := bytes.TrimLeft(md[end:], "\n")
	info.Consumed = end
	return info, body, nil
}
