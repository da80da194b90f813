package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/pipeline"
)

// TestNewConvertCmd tests the convert command creation.
func TestNewConvertCmd(t *testing.T) {
	t.Parallel()

	cmd := NewConvertCmd()
	if !strings.HasPrefix(cmd.Use, "convert ") {
		t.Errorf("unexpected use %q", cmd.Use)
	}

	defaults := map[string]string{
		"content-selector": config.DefaultContentSelector,
		"timeout":          config.DefaultConvertTimeout.String(),
		"wait-timeout":     config.DefaultWaitTimeout.String(),
		"settle":           config.DefaultConvertSettle.String(),
		"absolute-links":   "false",
		"no-history":       "false",
	}
	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("expected %s flag", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("%s: expected default %q, got %q", name, want, flag.DefValue)
		}
	}
}

// TestRunConvert tests batch conversion against an in-memory site.
func TestRunConvert(t *testing.T) {
	t.Parallel()

	t.Run("content never appears", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		cfg := testConfig()
		cfg.OutputDir = t.TempDir()

		env, stdout, stderr := testEnv(t)
		summary, err := runConvert(context.Background(), cfg, []string{"https://x.test/docs/slow"}, page, env, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.OK != 0 || summary.Failed != 1 {
			t.Errorf("unexpected summary %s", summary)
		}
		if !strings.HasSuffix(stdout.String(), "\nDone. OK: 0 Failed: 1 (Total: 1)\n") {
			t.Errorf("unexpected stdout %q", stdout.String())
		}
		if !strings.Contains(stderr.String(), "❌ [1/1] https://x.test/docs/slow\n   Error: ") {
			t.Errorf("unexpected stderr %q", stderr.String())
		}
		if entries, _ := os.ReadDir(cfg.OutputDir); len(entries) != 0 {
			t.Errorf("expected no files, got %d", len(entries))
		}
	})

	t.Run("converts pages and records them", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.docs["https://x.test/docs/a"] = fakeDoc{
			title:   "Intro: Getting Started",
			content: "<h1>Intro</h1><p>Hello <strong>world</strong></p>",
		}
		page.docs["https://x.test/docs/b"] = fakeDoc{
			title:   "Intro: Getting Started",
			content: "<p>second</p>",
		}
		page.docs["https://x.test/docs/c"] = fakeDoc{content: "<p>untitled</p>"}

		dir := t.TempDir()
		cfg := testConfig()
		cfg.OutputDir = dir
		cfg.ReportFile = filepath.Join(dir, "report", "convert.md")

		env, stdout, stderr := testEnv(t)
		targets := []string{"https://x.test/docs/a", "https://x.test/docs/b", "https://x.test/docs/c"}
		summary, err := runConvert(context.Background(), cfg, targets, page, env, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.OK != 3 || stderr.Len() != 0 {
			t.Errorf("unexpected summary %s, stderr %q", summary, stderr.String())
		}

		first := filepath.Join(dir, "Intro- Getting Started.md")
		second := filepath.Join(dir, "Intro- Getting Started-1.md")
		third := filepath.Join(dir, "page.md")
		for _, path := range []string{first, second, third} {
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected %s: %v", path, err)
			}
		}

		data, err := os.ReadFile(first)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "**world**") || !strings.HasSuffix(string(data), "\n") {
			t.Errorf("unexpected markdown %q", data)
		}

		out := stdout.String()
		for _, line := range []string{
			"✅ [1/3] https://x.test/docs/a\n",
			"   Title: Intro: Getting Started\n",
			"   Saved: " + first + "\n",
			"   Title: (no title)\n",
			"Done. OK: 3 Failed: 0 (Total: 3)\n",
		} {
			if !strings.Contains(out, line) {
				t.Errorf("expected output line %q", line)
			}
		}

		records, err := env.db.ListConversions(context.Background(), 0)
		if err != nil || len(records) != 3 {
			t.Fatalf("expected 3 conversion records, got %d (%v)", len(records), err)
		}
		if records[0].URL != "https://x.test/docs/c" || records[0].Path != third {
			t.Errorf("unexpected newest record %+v", records[0])
		}

		if _, err := os.Stat(cfg.ReportFile); err != nil {
			t.Errorf("expected report file: %v", err)
		}
	})

	t.Run("site settings are resolved per address", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.docs["https://x.test/docs/a"] = fakeDoc{title: "A", content: "<p>a</p>"}
		page.docs["https://y.test/docs/b"] = fakeDoc{title: "B", content: "<p>b</p>"}

		cfg := testConfig()
		cfg.OutputDir = t.TempDir()
		cfg.SiteConfigs.Sites["x.test"] = config.SiteConfig{
			ContentSelector: "main",
			Cookie:          "session=abc",
		}

		env, _, _ := testEnv(t)
		env.db = nil
		targets := []string{"https://x.test/docs/a", "https://y.test/docs/b"}
		if _, err := runConvert(context.Background(), cfg, targets, page, env, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !slices.Equal(page.waited, []string{"main", config.DefaultContentSelector}) {
			t.Errorf("unexpected selectors %v", page.waited)
		}
		if len(page.headers) != 2 || page.headers[0]["Cookie"] != "session=abc" || page.headers[1] != nil {
			t.Errorf("expected cookie for x.test only, got %v", page.headers)
		}
	})

	t.Run("explicit flags win over site settings", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		page.docs["https://x.test/docs/a"] = fakeDoc{title: "A", content: "<p>a</p>"}

		cfg := testConfig()
		cfg.OutputDir = t.TempDir()
		cfg.ContentSelector = "article"
		cfg.SiteConfigs.Sites["x.test"] = config.SiteConfig{ContentSelector: "main"}

		env, _, _ := testEnv(t)
		explicit := func(flag string) bool { return flag == "content-selector" }
		if _, err := runConvert(context.Background(), cfg, []string{"https://x.test/docs/a"}, page, env, explicit); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(page.waited, []string{"article"}) {
			t.Errorf("unexpected selectors %v", page.waited)
		}
	})

	t.Run("unwritable output aborts", func(t *testing.T) {
		t.Parallel()

		notDir := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(notDir, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
		page := newFakePage()
		page.docs["https://x.test/docs/a"] = fakeDoc{title: "A", content: "<p>a</p>"}
		page.docs["https://x.test/docs/b"] = fakeDoc{title: "B", content: "<p>b</p>"}

		cfg := testConfig()
		cfg.OutputDir = notDir

		env, stdout, _ := testEnv(t)
		summary, err := runConvert(context.Background(), cfg, []string{"https://x.test/docs/a", "https://x.test/docs/b"}, page, env, nil)
		if !pipeline.IsAbort(err) {
			t.Fatalf("expected abort error, got %v", err)
		}
		if len(summary.Items) != 1 {
			t.Errorf("expected the batch to stop after the first page, got %d items", len(summary.Items))
		}
		if !strings.Contains(stdout.String(), "Done. OK: 0 Failed: 1 (Total: 2)") {
			t.Errorf("expected summary line, got %q", stdout.String())
		}
	})
}

// TestTitleOrPlaceholder tests the title shown in progress lines.
func TestTitleOrPlaceholder(t *testing.T) {
	t.Parallel()

	if got := titleOrPlaceholder(""); got != "(no title)" {
		t.Errorf("got %q", got)
	}
	if got := titleOrPlaceholder("Intro"); got != "Intro" {
		t.Errorf("got %q", got)
	}
}
