package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// skipIfShort skips the test if -short flag is set.
// Integration tests drive a real Chrome and take several seconds.
func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode (requires Chrome)")
	}
}

// chromeOrSkip returns a Chrome executable or skips the test.
// This allows tests to pass on CI environments without Chrome installed.
func chromeOrSkip(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skip("skipping integration test: Chrome/Chromium not found")
	return ""
}

// newDocsSite serves a small documentation site whose navigation and
// content are rendered by JavaScript, like a single-page docs app.
func newDocsSite(t *testing.T) *httptest.Server {
	t.Helper()

	page := func(title, body string) string {
		return fmt.Sprintf(`<!doctype html><html><head><title>%s</title></head><body>
<div id="nav"></div><div id="root"></div>
<script>
setTimeout(function () {
  document.getElementById("nav").innerHTML =
    '<div role="navigation"><a href="/docs/intro">Intro</a><a href="/docs/setup#install">Setup</a><a href="/blog/news">News</a><a href="https://elsewhere.test/docs/x">X</a></div>';
  document.getElementById("root").innerHTML = '<div id="page">%s</div>';
}, 50);
</script></body></html>`, title, body)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/docs/intro", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page("Intro", "<h1>Intro</h1><ul><li>one</li><li>two</li></ul>"))
	})
	mux.HandleFunc("/docs/setup", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page("Setup / Install", "<h2>Install</h2><pre><code>go install</code></pre>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestDiscoverAndConvertIntegration runs both tools end to end.
func TestDiscoverAndConvertIntegration(t *testing.T) {
	skipIfShort(t)
	chrome := chromeOrSkip(t)

	site := newDocsSite(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("sites: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	global := []string{"--config", configPath, "--chrome-path", chrome}

	execute := func(args ...string) (string, string, error) {
		var stdout, stderr bytes.Buffer
		cmd := NewRootCmd()
		cmd.SetOut(&stdout)
		cmd.SetErr(&stderr)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return stdout.String(), stderr.String(), err
	}

	linksFile := filepath.Join(dir, "links.txt")
	stdout, stderr, err := execute(append([]string{"discover", "--no-history", "--settle", "500ms"},
		append(global, site.URL+"/docs/intro", "/docs", linksFile)...)...)
	if err != nil {
		t.Fatalf("discover failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "Discovered 2 links -> "+linksFile) {
		t.Errorf("unexpected discover output %q", stdout)
	}

	data, err := os.ReadFile(linksFile)
	if err != nil {
		t.Fatal(err)
	}
	want := site.URL + "/docs/intro\n" + site.URL + "/docs/setup\n"
	if string(data) != want {
		t.Errorf("expected links %q, got %q", want, data)
	}

	outDir := filepath.Join(dir, "out")
	stdout, stderr, err = execute(append([]string{"convert", "--no-history", "--settle", "0s", "--wait-timeout", "10s"},
		append(global, linksFile, outDir)...)...)
	if err != nil {
		t.Fatalf("convert failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "Done. OK: 2 Failed: 0 (Total: 2)") {
		t.Errorf("unexpected convert output %q\n%s", stdout, stderr)
	}

	intro, err := os.ReadFile(filepath.Join(outDir, "Intro.md"))
	if err != nil {
		t.Fatalf("expected Intro.md: %v", err)
	}
	if !strings.Contains(string(intro), "# Intro") || !strings.Contains(string(intro), "- one") {
		t.Errorf("unexpected Intro.md %q", intro)
	}
	if _, err := os.Stat(filepath.Join(outDir, "Setup - Install.md")); err != nil {
		t.Errorf("expected Setup - Install.md: %v", err)
	}
}
