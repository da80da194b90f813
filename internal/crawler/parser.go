package crawler

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parser extracts navigation links from a rendered HTML document.
type Parser struct {
	// baseURL is the location of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// NavResult contains the links found in a page's navigation region.
type NavResult struct {
	// RegionFound is false when no element matched the navigation selector.
	RegionFound bool

	// Links are the absolute anchor targets inside the region, fragment
	// removed, in document order and without duplicates.
	Links []string
}

// NewParser creates a new parser for a document served from baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// ParseNavigation collects the anchors inside the first element matching
// selector. A missing region yields an empty result, not an error.
// A <base href> in the document takes part in resolving relative links,
// as it does in the browser.
func (p *Parser) ParseNavigation(content io.Reader, selector string) (*NavResult, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	base := p.baseURL
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
			base = base.ResolveReference(ref)
		}
	}

	result := &NavResult{Links: make([]string, 0)}

	region := doc.Find(selector).First()
	if region.Length() == 0 {
		return result, nil
	}
	result.RegionFound = true

	unique := make(map[string]struct{})
	region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := resolveHref(base, href)
		if link == "" {
			return
		}
		if _, dup := unique[link]; dup {
			return
		}
		unique[link] = struct{}{}
		result.Links = append(result.Links, link)
	})

	return result, nil
}

// resolveHref resolves href against base and drops the fragment.
// It returns "" when href cannot be parsed.
func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String()
}
