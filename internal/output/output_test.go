package output

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"unicode/utf8"
)

// TestSafeBaseName tests title to file name derivation.
func TestSafeBaseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "plain title", title: "Getting Started", want: "Getting Started"},
		{name: "empty title", title: "", want: "page"},
		{name: "whitespace title", title: " \t\n ", want: "page"},
		{name: "illegal characters", title: `a/b\c?d%e*f:g|h"i<j>k`, want: "a-b-c-d-e-f-g-h-i-j-k"},
		{name: "colon in title", title: "Intro: Getting Started", want: "Intro- Getting Started"},
		{name: "control characters are removed", title: "Tab\there\x00\x7f", want: "Tabhere"},
		{name: "whitespace runs collapse", title: "a    b\u00a0\u00a0c\u3000d", want: "a b c d"},
		{name: "trailing dots and spaces", title: "Overview. . .", want: "Overview"},
		{name: "only dots", title: "...", want: "page"},
		{name: "leading and trailing spaces", title: "   Intro   ", want: "Intro"},
		{name: "unicode kept", title: "Übersicht – API", want: "Übersicht – API"},
		{name: "decomposed input is composed", title: "Cafe\u0301", want: "Caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SafeBaseName(tt.title); got != tt.want {
				t.Errorf("SafeBaseName(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

// TestSafeBaseNameTruncation tests the length limit.
func TestSafeBaseNameTruncation(t *testing.T) {
	t.Parallel()

	t.Run("long titles are cut to the limit", func(t *testing.T) {
		t.Parallel()

		got := SafeBaseName(strings.Repeat("ä", 300))
		if n := utf8.RuneCountInString(got); n != MaxBaseNameLength {
			t.Errorf("expected %d characters, got %d", MaxBaseNameLength, n)
		}
	})

	t.Run("space at the cut is trimmed", func(t *testing.T) {
		t.Parallel()

		title := strings.Repeat("a", MaxBaseNameLength-1) + " tail"
		got := SafeBaseName(title)
		if got != strings.Repeat("a", MaxBaseNameLength-1) {
			t.Errorf("expected trailing space to be trimmed, got %q", got)
		}
	})
}

// TestSafeBaseNameProperties tests invariants over arbitrary titles.
func TestSafeBaseNameProperties(t *testing.T) {
	t.Parallel()

	titles := []string{
		"", " ", "../../etc/passwd", "C:\\Windows\\", "a\x00b", "trailing.",
		"ends with space ", "<script>", strings.Repeat("x/", 200), "名前: テスト",
	}
	for _, title := range titles {
		got := SafeBaseName(title)
		if got == "" {
			t.Errorf("SafeBaseName(%q) is empty", title)
		}
		if strings.ContainsAny(got, "/\\?%*:|\"<>") {
			t.Errorf("SafeBaseName(%q) = %q contains illegal characters", title, got)
		}
		if strings.HasSuffix(got, ".") || strings.HasSuffix(got, " ") {
			t.Errorf("SafeBaseName(%q) = %q has a trailing dot or space", title, got)
		}
		if utf8.RuneCountInString(got) > MaxBaseNameLength {
			t.Errorf("SafeBaseName(%q) is too long", title)
		}
	}
}

// TestUniquePath tests collision resolution.
func TestUniquePath(t *testing.T) {
	t.Parallel()

	t.Run("free name is used as is", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		got, err := UniquePath(dir, "page", MarkdownExt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != filepath.Join(dir, "page.md") {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("taken names get a counter", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"page.md", "page-1.md", "page-2.md"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
				t.Fatal(err)
			}
		}
		got, err := UniquePath(dir, "page", MarkdownExt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != filepath.Join(dir, "page-3.md") {
			t.Errorf("unexpected path %q", got)
		}
	})

	t.Run("directories count as taken", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "page.md"), 0750); err != nil {
			t.Fatal(err)
		}
		got, err := UniquePath(dir, "page", MarkdownExt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(got) != "page-1.md" {
			t.Errorf("unexpected path %q", got)
		}
	})
}

// TestWriteUnique tests exclusive page writes.
func TestWriteUnique(t *testing.T) {
	t.Parallel()

	t.Run("collision keeps the first file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		first, err := WriteUnique(dir, SafeBaseName(""), MarkdownExt, []byte("first\n"))
		if err != nil {
			t.Fatalf("first write: %v", err)
		}
		second, err := WriteUnique(dir, SafeBaseName(""), MarkdownExt, []byte("second\n"))
		if err != nil {
			t.Fatalf("second write: %v", err)
		}

		if filepath.Base(first) != "page.md" || filepath.Base(second) != "page-1.md" {
			t.Errorf("unexpected paths %q and %q", first, second)
		}
		data, err := os.ReadFile(first)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "first\n" {
			t.Errorf("first file was overwritten: %q", data)
		}
	})

	t.Run("missing directory is an error", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "missing")
		if _, err := WriteUnique(dir, "page", MarkdownExt, []byte("x")); err == nil {
			t.Error("expected an error for a missing directory")
		}
	})

	t.Run("unwritable directory is an error", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}

		dir := t.TempDir()
		if err := os.Chmod(dir, 0500); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chmod(dir, 0700) }) //nolint:errcheck // cleanup

		if _, err := WriteUnique(dir, "page", MarkdownExt, []byte("x")); err == nil {
			t.Error("expected a permission error")
		}
	})
}

// TestWriteLinks tests the links file format.
func TestWriteLinks(t *testing.T) {
	t.Parallel()

	t.Run("sorted with trailing newline", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "links.txt")
		links := []string{"https://x.test/docs/b", "https://x.test/docs/a"}
		if err := WriteLinks(path, links); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		want := "https://x.test/docs/a\nhttps://x.test/docs/b\n"
		if string(data) != want {
			t.Errorf("got %q, want %q", data, want)
		}
		if links[0] != "https://x.test/docs/b" {
			t.Error("WriteLinks must not reorder the caller's slice")
		}
	})

	t.Run("overwrites previous content", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "links.txt")
		if err := WriteLinks(path, []string{"https://x.test/docs/a", "https://x.test/docs/b"}); err != nil {
			t.Fatal(err)
		}
		if err := WriteLinks(path, []string{"https://x.test/docs/c"}); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "https://x.test/docs/c\n" {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("empty set", func(t *testing.T) {
		t.Parallel()

		if got := FormatLinks(nil); got != "\n" {
			t.Errorf("expected a lone newline, got %q", got)
		}
	})

	t.Run("path is a directory", func(t *testing.T) {
		t.Parallel()

		err := WriteLinks(t.TempDir(), []string{"https://x.test/docs/a"})
		if err == nil {
			t.Fatal("expected an error")
		}
		if errors.Is(err, ErrNoFreeName) {
			t.Errorf("unexpected error kind: %v", err)
		}
	})
}
