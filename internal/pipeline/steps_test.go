package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/docscrape/internal/mdconv"
	"github.com/nao1215/docscrape/internal/model"
)

var (
	errFakeTimeout  = errors.New("operation timed out")
	errFakeNotFound = errors.New("element not found")
)

// fakePage is an in-memory browser tab serving fixed documents.
type fakePage struct {
	// titles maps addresses to document titles.
	titles map[string]string

	// content maps addresses to the inner markup of the content container.
	// Addresses without an entry have no container.
	content map[string]string

	// navErr makes navigation to an address fail.
	navErr map[string]error

	current  string
	headers  []map[string]string
	calls    []string
	timeouts []time.Duration
}

func newFakePage() *fakePage {
	return &fakePage{
		titles:  make(map[string]string),
		content: make(map[string]string),
		navErr:  make(map[string]error),
	}
}

func (f *fakePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	f.calls = append(f.calls, "navigate "+url)
	f.timeouts = append(f.timeouts, timeout)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.navErr[url]; err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	f.current = url
	return nil
}

func (f *fakePage) WaitVisible(_ context.Context, selector string, timeout time.Duration) error {
	f.calls = append(f.calls, "wait "+selector)
	f.timeouts = append(f.timeouts, timeout)
	if _, ok := f.content[f.current]; !ok || selector != "#page" {
		return fmt.Errorf("wait for %q: %w after %s", selector, errFakeTimeout, timeout)
	}
	return nil
}

func (f *fakePage) Settle(ctx context.Context, d time.Duration) error {
	f.calls = append(f.calls, "settle "+d.String())
	return ctx.Err()
}

func (f *fakePage) Title(_ context.Context) (string, error) {
	f.calls = append(f.calls, "title")
	return f.titles[f.current], nil
}

func (f *fakePage) InnerHTML(_ context.Context, selector string) (string, error) {
	f.calls = append(f.calls, "inner "+selector)
	html, ok := f.content[f.current]
	if !ok || selector != "#page" {
		return "", fmt.Errorf("%w: %q", errFakeNotFound, selector)
	}
	return html, nil
}

func (f *fakePage) SetExtraHeaders(_ context.Context, headers map[string]string) error {
	f.calls = append(f.calls, "headers")
	f.headers = append(f.headers, headers)
	return nil
}

// plainPage hides SetExtraHeaders.
type plainPage struct {
	Page
}

// failingConverter always fails.
type failingConverter struct{}

func (failingConverter) Convert(string, string) (string, error) {
	return "", errors.New("broken markup")
}

// fastPipeline builds the default pipeline without delays.
func fastPipeline(page Page, dir string, opts ...DefaultPipelineOption) *Pipeline {
	opts = append([]DefaultPipelineOption{
		WithPipelineOutputDir(dir),
		WithPipelineSettleDelay(0),
	}, opts...)
	return DefaultPipeline(page, mdconv.New(), nil, opts...)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// TestStepNames tests the names used in logs and records.
func TestStepNames(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	steps := map[string]Step{
		"headers":      NewHeadersStep(page, nil),
		"navigate":     NewNavigateStep(page, time.Second),
		"wait_content": NewWaitContentStep(page, "#page", time.Second),
		"settle":       NewSettleStep(page, 0),
		"title":        NewTitleStep(page),
		"extract":      NewExtractStep(page, "#page"),
		"convert":      NewConvertStep(mdconv.New()),
		"name":         NewNameStep(),
		"write":        NewWriteStep(t.TempDir()),
	}
	for want, step := range steps {
		if step.Name() != want {
			t.Errorf("expected %q, got %q", want, step.Name())
		}
	}
}

// TestDefaultPipeline tests the assembled conversion pipeline.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("step order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(newFakePage(), mdconv.New(), nil)
		want := []string{"navigate", "wait_content", "settle", "title", "extract", "convert", "name", "write"}
		if got := p.StepNames(); !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("headers step comes first", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(newFakePage(), mdconv.New(), nil, WithPipelineHeaders(nil))
		if names := p.StepNames(); names[0] != "headers" || len(names) != 9 {
			t.Errorf("unexpected steps %v", names)
		}
	})

	t.Run("headers step needs a header setter", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(plainPage{newFakePage()}, mdconv.New(), nil,
			WithPipelineHeaders(map[string]string{"Cookie": "a=b"}))
		if p.StepNames()[0] == "headers" {
			t.Error("expected no headers step for a page without SetExtraHeaders")
		}
	})

	t.Run("converts and writes a page", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := newFakePage()
		url := "https://x.test/docs/intro"
		page.titles[url] = "Intro: Getting Started"
		page.content[url] = `<h1>Hello</h1><ul><li>one</li><li>two</li></ul>`

		rec := model.NewPageRecord(url)
		if err := fastPipeline(page, dir).Execute(context.Background(), rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Path != filepath.Join(dir, "Intro- Getting Started.md") {
			t.Errorf("unexpected path %q", rec.Path)
		}
		got := readFile(t, rec.Path)
		if got != rec.Markdown || !strings.Contains(got, "# Hello") || !strings.Contains(got, "- one") {
			t.Errorf("unexpected file content %q", got)
		}
		if rec.Hash == "" || rec.Bytes != len(got) {
			t.Errorf("expected hash and size, got %q %d", rec.Hash, rec.Bytes)
		}
		if rec.Title != "Intro: Getting Started" || rec.BaseName != "Intro- Getting Started" {
			t.Errorf("unexpected title fields %q %q", rec.Title, rec.BaseName)
		}
	})

	t.Run("settings reach the page", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		url := "https://x.test/docs/a"
		page.content[url] = "<p>x</p>"

		p := DefaultPipeline(page, mdconv.New(), nil,
			WithPipelineOutputDir(t.TempDir()),
			WithPipelineNavTimeout(7*time.Second),
			WithPipelineWaitTimeout(3*time.Second),
			WithPipelineSettleDelay(0),
			WithPipelineHeaders(map[string]string{"Cookie": "s=1"}),
		)
		if err := p.Execute(context.Background(), model.NewPageRecord(url)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !slices.Equal(page.timeouts, []time.Duration{7 * time.Second, 3 * time.Second}) {
			t.Errorf("unexpected timeouts %v", page.timeouts)
		}
		if len(page.headers) != 1 || page.headers[0]["Cookie"] != "s=1" {
			t.Errorf("unexpected headers %v", page.headers)
		}
		if page.calls[0] != "headers" {
			t.Errorf("headers must be installed before navigating, calls %v", page.calls)
		}
	})

	t.Run("missing content container fails without writing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := newFakePage()
		url := "https://x.test/docs/empty"
		page.titles[url] = "Empty"

		rec := model.NewPageRecord(url)
		err := fastPipeline(page, dir).Execute(context.Background(), rec)
		if !errors.Is(err, errFakeTimeout) {
			t.Fatalf("expected timeout, got %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("expected no files, got %d", len(entries))
		}
		if slices.Contains(page.calls, "title") {
			t.Error("title must not be read after the wait failed")
		}
	})

	t.Run("custom content selector", func(t *testing.T) {
		t.Parallel()

		page := newFakePage()
		url := "https://x.test/docs/a"
		page.content[url] = "<p>x</p>"

		err := fastPipeline(page, t.TempDir(), WithPipelineContentSelector("main")).
			Execute(context.Background(), model.NewPageRecord(url))
		if err == nil || !slices.Contains(page.calls, "wait main") {
			t.Errorf("expected the wait to use the custom selector, calls %v err %v", page.calls, err)
		}
	})

	t.Run("empty titles never overwrite", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := newFakePage()
		first, second := "https://x.test/docs/1", "https://x.test/docs/2"
		page.content[first] = "<p>first</p>"
		page.content[second] = "<p>second</p>"

		var paths []string
		for _, url := range []string{first, second} {
			rec := model.NewPageRecord(url)
			if err := fastPipeline(page, dir).Execute(context.Background(), rec); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			paths = append(paths, filepath.Base(rec.Path))
		}

		if !slices.Equal(paths, []string{"page.md", "page-1.md"}) {
			t.Errorf("unexpected file names %v", paths)
		}
		if got := readFile(t, filepath.Join(dir, "page.md")); got != "first\n" {
			t.Errorf("first file changed: %q", got)
		}
	})

	t.Run("conversion failure", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := newFakePage()
		url := "https://x.test/docs/a"
		page.content[url] = "<p>x</p>"

		p := DefaultPipeline(page, failingConverter{}, nil, WithPipelineOutputDir(dir), WithPipelineSettleDelay(0))
		if err := p.Execute(context.Background(), model.NewPageRecord(url)); err == nil {
			t.Error("expected conversion error")
		}
		if entries, _ := os.ReadDir(dir); len(entries) != 0 {
			t.Errorf("expected no files, got %d", len(entries))
		}
	})
}
