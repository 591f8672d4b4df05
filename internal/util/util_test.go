// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "test.txt")
	data := []byte("hello, world!")

	if err := AtomicWriteFile(path, data, 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("got %q, want %q", content, data)
	}
}

func TestAtomicWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")

	if err := AtomicWriteFile(path, []byte("initial"), 0644); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := AtomicWriteFile(path, []byte("updated"), 0644); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "updated" {
		t.Errorf("got %q, want %q", content, "updated")
	}
}

func TestAtomicWriteReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.bin")

	n, err := AtomicWriteReader(path, strings.NewReader("twelve bytes"), 0644, 12)
	if err != nil {
		t.Fatalf("AtomicWriteReader failed: %v", err)
	}
	if n != 12 {
		t.Errorf("got %d bytes, want 12", n)
	}
}

func TestAtomicWriteReader_TooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")

	_, err := AtomicWriteReader(path, strings.NewReader("thirteen byte"), 0644, 12)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("got %v, want ErrTooLarge", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("oversized content should not be written")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.pdf")

	if got := UniquePath(path); got != path {
		t.Errorf("got %q, want %q", got, path)
	}

	os.WriteFile(path, nil, 0644)
	want := filepath.Join(dir, "guide (1).pdf")
	if got := UniquePath(path); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	os.WriteFile(want, nil, 0644)
	want = filepath.Join(dir, "guide (2).pdf")
	if got := UniquePath(path); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	testCases := []struct {
		input    string
		maxRunes int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 0, ""},
		{"hello", 2, "he"},
		{"日本語テキスト", 5, "日本..."},
	}

	for _, tc := range testCases {
		if got := TruncateRunes(tc.input, tc.maxRunes); got != tc.expected {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.expected)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	testCases := []struct {
		input    string
		maxWidth int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"日本語", 6, "日本語"},
		{"日本語テキスト", 7, "日本..."},
		{"hello", 0, ""},
		{"hello", 3, "hel"},
	}

	for _, tc := range testCases {
		if got := TruncateWidth(tc.input, tc.maxWidth); got != tc.expected {
			t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tc.input, tc.maxWidth, got, tc.expected)
		}
	}
}

func TestStringWidth(t *testing.T) {
	if got := StringWidth("abc"); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	if got := StringWidth("日本"); got != 4 {
		t.Errorf("got %d, want 4", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("got %q, want %q", got, "ab  ")
	}
}

func TestWrapText(t *testing.T) {
	testCases := []struct {
		input    string
		width    int
		expected string
	}{
		{"short", 20, "short"},
		{"one two three four", 9, "one two\nthree\nfour"},
		{"keep\nbreaks here", 20, "keep\nbreaks here"},
		{"averyveryverylongword x", 5, "averyveryverylongword\nx"},
		{"anything", 0, "anything"},
	}

	for _, tc := range testCases {
		if got := WrapText(tc.input, tc.width); got != tc.expected {
			t.Errorf("WrapText(%q, %d) = %q, want %q", tc.input, tc.width, got, tc.expected)
		}
	}
}
