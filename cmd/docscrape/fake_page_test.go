package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/database"
)

// fakeDoc is one page served by fakePage.
type fakeDoc struct {
	title   string
	nav     []string // hrefs inside the navigation region
	content string   // inner markup of #page; empty means it never renders
}

// fakePage is an in-memory browser tab implementing the page interfaces
// of both the crawler and the conversion pipeline.
type fakePage struct {
	docs    map[string]fakeDoc
	navErr  map[string]error
	current string

	waited  []string
	headers []map[string]string
}

func newFakePage() *fakePage {
	return &fakePage{
		docs:   make(map[string]fakeDoc),
		navErr: make(map[string]error),
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.navErr[url]; err != nil {
		return err
	}
	p.current = url
	return nil
}

func (p *fakePage) Settle(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

func (p *fakePage) Location(context.Context) (string, error) {
	return p.current, nil
}

func (p *fakePage) DocumentHTML(context.Context) (string, error) {
	var sb strings.Builder
	sb.WriteString(`<html><body><div role="navigation">`)
	for _, href := range p.docs[p.current].nav {
		fmt.Fprintf(&sb, `<a href="%s">link</a>`, href)
	}
	sb.WriteString(`</div><div id="page"></div></body></html>`)
	return sb.String(), nil
}

func (p *fakePage) WaitVisible(_ context.Context, selector string, timeout time.Duration) error {
	p.waited = append(p.waited, selector)
	if p.docs[p.current].content == "" {
		return fmt.Errorf("wait for %q: timeout after %s", selector, timeout)
	}
	return nil
}

func (p *fakePage) Title(context.Context) (string, error) {
	return p.docs[p.current].title, nil
}

func (p *fakePage) InnerHTML(_ context.Context, selector string) (string, error) {
	doc := p.docs[p.current]
	if doc.content == "" {
		return "", errors.New("element not found: " + selector)
	}
	return doc.content, nil
}

func (p *fakePage) SetExtraHeaders(_ context.Context, headers map[string]string) error {
	p.headers = append(p.headers, maps.Clone(headers))
	return nil
}

// testEnv returns a runEnv writing to buffers and a fresh history database.
func testEnv(t *testing.T) (*runEnv, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var stdout, stderr bytes.Buffer
	return &runEnv{
		stdout: &stdout,
		stderr: &stderr,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		db:     db,
	}, &stdout, &stderr
}

// testConfig returns a Config with no pauses and an empty site configuration.
func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.DiscoverSettle = 0
	cfg.ConvertSettle = 0
	cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	return cfg
}
