package util

import (
	"errors"
	"testing"
	"time"
)

func TestGetFrontMatter(t *testing.T) {
	testCases := []struct {
		name          string
		markdown      []byte
		expectError   bool
		expectedTitle string
		expectedDate  time.Time
		expectedBody  string
	}{
		{
			name: "Valid Front Matter",
			markdown: []byte(`%%%
title = "Hello World"
author = "Ada"
category = "AI Trends"
date = 2025-01-01T00:00:00Z
%%%
First paragraph`),
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedBody:  "First paragraph",
		},
		{
			name: "No Front Matter",
			markdown: []byte(`# Just Content
No front matter here.`),
			expectError: true,
		},
		{
			name:        "Empty File",
			markdown:    []byte(""),
			expectError: true,
		},
		{
			name: "Content Before Front Matter",
			markdown: []byte(`
# This should be ignored
%%%
title = "Hello World"
%%%
# Content`),
			expectError: true,
		},
		{
			name:          "Extra Whitespace And CRLF",
			markdown:      []byte("\r\n\r\n%%%\r\n\r\ntitle = \"Hello World\"\r\ndate = 2025-01-01T00:00:00Z\r\n\r\n%%%\r\n\r\nBody"),
			expectedTitle: "Hello World",
			expectedDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedBody:  "Body",
		},
		{
			name: "Unterminated Front Matter",
			markdown: []byte(`%%%
title = "Incomplete"
# Content`),
			expectError: true,
		},
		{
			name: "Malformed TOML",
			markdown: []byte(`%%%
title = "Incomplete
%%%
# Content`),
			expectError: true,
		},
		{
			name: "Front Matter with No Title",
			markdown: []byte(`%%%
subtitle = "Only a subtitle"
%%%
`),
			expectedTitle: "",
			expectedBody:  "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, body, err := GetFrontMatter(tc.markdown)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected an error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			if info.Title != tc.expectedTitle {
				t.Errorf("Expected title %q, got %q", tc.expectedTitle, info.Title)
			}
			if !info.Date.Equal(tc.expectedDate) {
				t.Errorf("Expected date %v, got %v", tc.expectedDate, info.Date)
			}
			if string(body) != tc.expectedBody {
				t.Errorf("Expected body %q, got %q", tc.expectedBody, string(body))
			}
			if info.Consumed == 0 {
				t.Error("Expected Consumed to be set")
			}
		})
	}

	t.Run("Sentinel error", func(t *testing.T) {
		_, _, err := GetFrontMatter([]byte("no header"))
		if !errors.Is(err, ErrNoFrontMatter) {
			t.Errorf("Expected ErrNoFrontMatter, got %v", err)
		}
	})
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("hello"))
	if len(a) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(a))
	}
	if a != ContentHashString("hello") {
		t.Error("Expected byte and string hashes to match")
	}
	if a == ContentHash([]byte("hello!")) {
		t.Error("Expected different content to hash differently")
	}
}
