package mdconv

import (
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// parseGFM parses Markdown with GitHub extensions and counts node kinds.
func parseGFM(t *testing.T, md string) (map[ast.NodeKind]int, []bool) {
	t.Helper()

	src := []byte(md)
	doc := goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser().Parse(text.NewReader(src))

	kinds := make(map[ast.NodeKind]int)
	var checks []bool
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		kinds[n.Kind()]++
		if cb, ok := n.(*extast.TaskCheckBox); ok {
			checks = append(checks, cb.IsChecked)
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walk markdown: %v", err)
	}
	return kinds, checks
}

func convert(t *testing.T, c *Converter, fragment, pageURL string) string {
	t.Helper()
	md, err := c.Convert(fragment, pageURL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return md
}

// TestConvert tests the Markdown dialect produced by the converter.
func TestConvert(t *testing.T) {
	t.Parallel()

	c := New()

	t.Run("headings and emphasis", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<h1>Intro</h1><p>Hello <em>docs</em> and <strong>bold</strong>.</p>`, "")
		for _, want := range []string{"# Intro", "*docs*", "**bold**"} {
			if !strings.Contains(md, want) {
				t.Errorf("expected %q in %q", want, md)
			}
		}
	})

	t.Run("dash bullets", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<ul><li>one</li><li>two</li></ul>`, "")
		if !strings.Contains(md, "- one\n- two") {
			t.Errorf("expected dash bullets, got %q", md)
		}
	})

	t.Run("tilde code fences", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<pre><code>x := 1
y := 2</code></pre>`, "")
		if !strings.Contains(md, "~~~\nx := 1\ny := 2\n~~~") {
			t.Errorf("expected tilde fence, got %q", md)
		}
		if strings.Contains(md, "```") {
			t.Errorf("unexpected backtick fence in %q", md)
		}
	})

	t.Run("tables", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<table>
<thead><tr><th>Name</th><th>Value</th></tr></thead>
<tbody><tr><td>timeout</td><td>45s</td></tr><tr><td>settle</td><td>3s</td></tr></tbody>
</table>`, "")
		kinds, _ := parseGFM(t, md)
		if kinds[extast.KindTable] != 1 {
			t.Errorf("expected a GFM table, got %q", md)
		}
		if kinds[extast.KindTableRow] != 2 {
			t.Errorf("expected 2 body rows, got %d in %q", kinds[extast.KindTableRow], md)
		}
	})

	t.Run("strikethrough", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<p>This is <del>deprecated</del> now.</p>`, "")
		kinds, _ := parseGFM(t, md)
		if kinds[extast.KindStrikethrough] != 1 {
			t.Errorf("expected strikethrough, got %q", md)
		}
	})

	t.Run("task lists", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<ul>
<li><input type="checkbox" checked disabled> Install</li>
<li><input type="checkbox" disabled> Configure</li>
</ul>`, "")
		_, checks := parseGFM(t, md)
		if len(checks) != 2 || !checks[0] || checks[1] {
			t.Errorf("expected [checked, unchecked] task items, got %v in %q", checks, md)
		}
		if !strings.HasPrefix(md, "- [x] Install") || !strings.Contains(md, "- [ ] Configure") {
			t.Errorf("expected single-spaced dash task items, got %q", md)
		}
	})

	t.Run("task marker without text spacing", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<ul><li><input type="checkbox" checked>Done</li></ul>`, "")
		if md != "- [x] Done\n" {
			t.Errorf("expected %q, got %q", "- [x] Done\n", md)
		}
	})

	t.Run("adjacent lists carry no separator comment", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<ul><li>one</li></ul><ul><li>two</li></ul><ol><li>three</li></ol>`, "")
		if strings.Contains(md, "<!--") {
			t.Errorf("unexpected HTML comment in %q", md)
		}
		for _, want := range []string{"- one", "- two", "1. three"} {
			if !strings.Contains(md, want) {
				t.Errorf("expected %q in %q", want, md)
			}
		}
	})

	t.Run("other inputs are dropped", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<p>Search <input type="text" value="query"></p>`, "")
		if strings.Contains(md, "query") || strings.Contains(md, "[") {
			t.Errorf("expected text input to be dropped, got %q", md)
		}
	})

	t.Run("scripts are removed", func(t *testing.T) {
		t.Parallel()

		md := convert(t, c, `<script>alert("x")</script><p>body</p>`, "")
		if strings.Contains(md, "alert") {
			t.Errorf("expected script to be removed, got %q", md)
		}
	})
}

// TestConvertTrailingNewline tests that output ends with exactly one newline.
func TestConvertTrailingNewline(t *testing.T) {
	t.Parallel()

	c := New()
	tests := []struct {
		name     string
		fragment string
	}{
		{name: "paragraphs", fragment: "<p>a</p>\n\n<p>b</p>\n\n\n"},
		{name: "surrounding whitespace", fragment: "\n\n  <h2>x</h2>  \n\n"},
		{name: "code block last", fragment: "<pre><code>end</code></pre>"},
		{name: "empty", fragment: ""},
		{name: "whitespace only", fragment: " \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md := convert(t, c, tt.fragment, "")
			if !strings.HasSuffix(md, "\n") || strings.HasSuffix(md, "\n\n") {
				t.Errorf("expected exactly one trailing newline, got %q", md)
			}
			if strings.HasPrefix(md, " ") || (len(md) > 1 && strings.HasPrefix(md, "\n")) {
				t.Errorf("expected leading whitespace to be trimmed, got %q", md)
			}
		})
	}

	if md := convert(t, c, "", ""); md != "\n" {
		t.Errorf("expected empty fragment to give a lone newline, got %q", md)
	}
}

// TestConvertLinks tests relative link handling.
func TestConvertLinks(t *testing.T) {
	t.Parallel()

	fragment := `<p><a href="/docs/next">Next</a> <img src="/img/logo.png" alt="logo"></p>`

	t.Run("relative links are kept by default", func(t *testing.T) {
		t.Parallel()

		md := convert(t, New(), fragment, "https://x.test/docs/a")
		if !strings.Contains(md, "[Next](/docs/next)") {
			t.Errorf("expected relative link, got %q", md)
		}
	})

	t.Run("absolute links when enabled", func(t *testing.T) {
		t.Parallel()

		md := convert(t, New(WithAbsoluteLinks(true)), fragment, "https://x.test/docs/a")
		if !strings.Contains(md, "[Next](https://x.test/docs/next)") {
			t.Errorf("expected absolute link, got %q", md)
		}
		if !strings.Contains(md, "https://x.test/img/logo.png") {
			t.Errorf("expected absolute image, got %q", md)
		}
	})
}
