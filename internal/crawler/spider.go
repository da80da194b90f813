package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/docscrape/internal/model"
)

// Page is the browser tab the Spider drives.
type Page interface {
	// Navigate loads url and waits until the document is ready, failing
	// after timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// Settle pauses for d, returning early only if ctx is cancelled.
	Settle(ctx context.Context, d time.Duration) error

	// Location returns the address of the loaded document after redirects.
	Location(ctx context.Context) (string, error)

	// DocumentHTML returns the serialized rendered document.
	DocumentHTML(ctx context.Context) (string, error)
}

// EventKind identifies a progress event emitted during discovery.
type EventKind int

const (
	// EventOpening is emitted before a page is loaded.
	EventOpening EventKind = iota

	// EventVisited is emitted after a page's navigation region was read.
	EventVisited

	// EventFailed is emitted when a page could not be loaded or read.
	EventFailed
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventOpening:
		return "opening"
	case EventVisited:
		return "visited"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event describes progress on a single page.
type Event struct {
	Kind EventKind
	URL  string

	// LinksFound is the number of unique anchors in the navigation region.
	// Set for EventVisited.
	LinksFound int

	// RegionFound is false when the page had no navigation region.
	// Set for EventVisited.
	RegionFound bool

	// Err is set for EventFailed.
	Err error
}

// Spider walks documentation pages breadth-first and collects the
// links of their navigation regions.
type Spider struct {
	// page is the browser tab used for every visit.
	page Page

	// navTimeout bounds each navigation.
	navTimeout time.Duration

	// settle is the pause after each navigation, letting client-side
	// rendering build the navigation tree.
	settle time.Duration

	// navSelector selects the navigation region. Only the first match is read.
	navSelector string

	// follow enqueues newly seen links. Without it only the start page is visited.
	follow bool

	// maxPages caps the number of dequeued pages. 0 means unlimited.
	maxPages int

	// ignorePatterns are path globs excluded from the discovered set.
	ignorePatterns []string

	// hook receives progress events. May be nil.
	hook func(Event)

	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithNavTimeout sets the timeout of each navigation.
func WithNavTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.navTimeout = d
	}
}

// WithSettleDelay sets the pause after each navigation.
func WithSettleDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.settle = d
	}
}

// WithNavSelector sets the CSS selector of the navigation region.
func WithNavSelector(selector string) SpiderOption {
	return func(s *Spider) {
		s.navSelector = selector
	}
}

// WithFollowLinks enables multi-hop traversal: every newly discovered
// link is queued and visited in turn.
func WithFollowLinks(follow bool) SpiderOption {
	return func(s *Spider) {
		s.follow = follow
	}
}

// WithMaxPages caps the number of visited pages. 0 means unlimited.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithIgnorePatterns sets URL path patterns excluded from discovery.
// Patterns use glob syntax (e.g., "/docs/archive/*", "*.pdf").
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithEventHook registers a function called for every progress event.
func WithEventHook(hook func(Event)) SpiderOption {
	return func(s *Spider) {
		s.hook = hook
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider driving page.
func NewSpider(page Page, opts ...SpiderOption) *Spider {
	s := &Spider{
		page:        page,
		navTimeout:  45 * time.Second,
		settle:      3 * time.Second,
		navSelector: `div[role="navigation"]`,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Discover runs a traversal from startURL and returns the discovered
// links under prefix on the start host.
//
// A start address outside the allowed scope is still visited, but it is
// not itself reported. Page failures are recorded and skipped; only an
// invalid start address or a cancelled context end the run with an error.
// On cancellation the partial result is returned along with ctx.Err().
func (s *Spider) Discover(ctx context.Context, startURL, prefix string) (*model.DiscoveryResult, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if !start.IsAbs() {
		return nil, fmt.Errorf("invalid start URL %q: %w", startURL, ErrNotAbsoluteURL)
	}

	result := &model.DiscoveryResult{
		StartURL:   startURL,
		Prefix:     prefix,
		OriginHost: CanonicalHost(start),
		Visits:     make([]model.Visit, 0),
		StartedAt:  time.Now(),
	}

	frontier := NewFrontier()
	if norm, err := NormalizeURL(startURL); err == nil && IsAllowed(norm, result.OriginHost, prefix) {
		frontier.Seed(norm, true)
	} else {
		frontier.Seed(startURL, false)
	}

	finish := func() {
		result.Links = frontier.Links()
		result.FinishedAt = time.Now()
	}

	for s.maxPages == 0 || len(result.Visits) < s.maxPages {
		current, ok := frontier.Next()
		if !ok {
			break
		}

		if err := ctx.Err(); err != nil {
			finish()
			return result, err
		}

		s.emit(Event{Kind: EventOpening, URL: current})
		s.logger.Debug("visiting page", "url", current, "pending", frontier.Pending())

		nav, err := s.visit(ctx, current)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				finish()
				return result, ctxErr
			}
			result.Visits = append(result.Visits, model.Visit{
				URL:   current,
				State: model.VisitFailed,
				Error: err.Error(),
			})
			s.emit(Event{Kind: EventFailed, URL: current, Err: err})
			s.logger.Warn("page failed", "url", current, "error", err)
			continue
		}

		result.Visits = append(result.Visits, model.Visit{
			URL:        current,
			State:      model.VisitVisited,
			LinksFound: len(nav.Links),
		})
		s.emit(Event{
			Kind:        EventVisited,
			URL:         current,
			LinksFound:  len(nav.Links),
			RegionFound: nav.RegionFound,
		})
		if !nav.RegionFound {
			s.logger.Debug("navigation region not found", "url", current, "selector", s.navSelector)
		}

		for _, href := range nav.Links {
			norm, err := NormalizeURL(href)
			if err != nil {
				continue
			}
			if !IsAllowed(norm, result.OriginHost, prefix) || s.isIgnored(norm) {
				continue
			}
			if frontier.Add(norm) && s.follow {
				frontier.Enqueue(norm)
			}
		}
	}

	if frontier.Pending() > 0 {
		s.logger.Info("page limit reached", "max_pages", s.maxPages, "pending", frontier.Pending())
	}

	finish()
	return result, nil
}

// visit loads one page and reads its navigation region.
func (s *Spider) visit(ctx context.Context, pageURL string) (*NavResult, error) {
	if err := s.page.Navigate(ctx, pageURL, s.navTimeout); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := s.page.Settle(ctx, s.settle); err != nil {
		return nil, err
	}

	location, err := s.page.Location(ctx)
	if err != nil || location == "" {
		location = pageURL
	}

	doc, err := s.page.DocumentHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	parser, err := NewParser(location)
	if err != nil {
		return nil, fmt.Errorf("page location %q: %w", location, err)
	}
	return parser.ParseNavigation(strings.NewReader(doc), s.navSelector)
}

func (s *Spider) emit(ev Event) {
	if s.hook != nil {
		s.hook(ev)
	}
}

// isIgnored reports whether the path of link matches an ignore pattern.
func (s *Spider) isIgnored(link string) bool {
	if len(s.ignorePatterns) == 0 {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
//   - "/docs/archive/*" matches "/docs/archive" and everything below it
//   - "*.pdf" matches any path ending in ".pdf"
//   - anything else is matched with filepath.Match
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") && !strings.ContainsAny(ext, "*?[/") {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}
