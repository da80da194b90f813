package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultOperationTimeout bounds operations that have no explicit timeout,
// such as reading the title or the content markup.
const DefaultOperationTimeout = 30 * time.Second

// Browser is one Chrome process with one tab.
// It is not safe for concurrent use.
type Browser struct {
	// headless hides the browser window.
	headless bool

	// execPath is the Chrome executable. Empty means chromedp's lookup.
	execPath string

	// userAgent overrides Chrome's user agent when non-empty.
	userAgent string

	// proxyServer is passed as --proxy-server when non-empty.
	proxyServer string

	// blocked are the resource type names whose requests are failed.
	blocked []string

	// headers are sent with every request.
	headers map[string]string

	// opTimeout bounds operations without an explicit timeout.
	opTimeout time.Duration

	logger *slog.Logger

	allocCancel context.CancelFunc
	tabCtx      context.Context //nolint:containedctx // the tab lives as long as the Browser
	tabCancel   context.CancelFunc
}

// Option configures a Browser.
type Option func(*Browser)

// WithHeadless shows (false) or hides (true) the browser window.
func WithHeadless(headless bool) Option {
	return func(b *Browser) {
		b.headless = headless
	}
}

// WithExecPath sets the Chrome or Chromium executable.
func WithExecPath(path string) Option {
	return func(b *Browser) {
		b.execPath = path
	}
}

// WithUserAgent overrides the user agent.
func WithUserAgent(ua string) Option {
	return func(b *Browser) {
		b.userAgent = ua
	}
}

// WithProxyServer routes traffic through a proxy ("host:port" or a URL).
func WithProxyServer(proxy string) Option {
	return func(b *Browser) {
		b.proxyServer = proxy
	}
}

// WithBlockedResources fails requests for the named resource types,
// e.g. "image", "media", "font". Names are validated by Start.
func WithBlockedResources(names []string) Option {
	return func(b *Browser) {
		b.blocked = names
	}
}

// WithExtraHeaders sends headers with every request.
func WithExtraHeaders(headers map[string]string) Option {
	return func(b *Browser) {
		b.headers = maps.Clone(headers)
	}
}

// WithOperationTimeout sets the bound for operations without an explicit timeout.
func WithOperationTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.opTimeout = d
	}
}

// WithLogger sets the logger. DevTools protocol errors are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Browser) {
		b.logger = logger
	}
}

// New creates a Browser. Call Start to launch Chrome.
func New(opts ...Option) *Browser {
	b := &Browser{
		headless:  true,
		opTimeout: DefaultOperationTimeout,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// allocatorOptions returns the Chrome command line for this Browser.
func (b *Browser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !b.headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}
	if b.proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxyServer))
	}
	return opts
}

// Start launches Chrome, opens the tab and installs request blocking and
// extra headers. Chrome is shut down when ctx is cancelled, but callers
// should still defer Stop.
func (b *Browser) Start(ctx context.Context) error {
	if b.tabCtx != nil {
		return ErrAlreadyStarted
	}

	blocked, err := ParseResourceTypes(b.blocked)
	if err != nil {
		return err
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			b.logger.Debug("devtools", "message", fmt.Sprintf(format, args...))
		}),
	)

	actions := []chromedp.Action{network.Enable()}
	if len(blocked) > 0 {
		chromedp.ListenTarget(tabCtx, b.blockRequests(tabCtx))
		actions = append(actions, fetch.Enable().WithPatterns(blockPatterns(blocked)))
	}
	if len(b.headers) > 0 {
		actions = append(actions, setHeaders(b.headers))
	}

	// The first Run launches Chrome; it must not carry a timeout or the
	// tab would be torn down when the timeout fires.
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("start browser: %w", err)
	}

	b.tabCtx = tabCtx
	b.tabCancel = tabCancel
	b.allocCancel = allocCancel
	b.logger.Debug("browser started", "headless", b.headless, "blocked", b.blocked)
	return nil
}

// blockRequests fails every request paused by the Fetch domain. Only the
// blocked resource types are intercepted, so nothing else is paused.
func (b *Browser) blockRequests(tabCtx context.Context) func(ev any) {
	return func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Listeners run on the event loop; issuing commands there would deadlock.
		go func() {
			c := chromedp.FromContext(tabCtx)
			if c == nil || c.Target == nil {
				return
			}
			exec := cdp.WithExecutor(tabCtx, c.Target)
			if err := fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(exec); err != nil {
				b.logger.Debug("failed to block request", "url", paused.Request.URL, "error", err)
			}
		}()
	}
}

// Stop closes the tab and shuts Chrome down.
// It's safe to call Stop multiple times or on an unstarted Browser.
func (b *Browser) Stop() error {
	if b.tabCtx == nil {
		return nil
	}

	err := chromedp.Cancel(b.tabCtx)
	b.tabCancel()
	b.allocCancel()
	b.tabCtx, b.tabCancel, b.allocCancel = nil, nil, nil

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// IsRunning reports whether Start succeeded and Stop was not called yet.
func (b *Browser) IsRunning() bool {
	return b.tabCtx != nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if b.tabCtx == nil {
		return ErrNotStarted
	}
	if timeout <= 0 {
		timeout = b.opTimeout
	}

	opCtx, cancel := context.WithTimeout(b.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(opCtx, actions...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return err
}

// Navigate loads url in the tab and waits until the DOM is ready.
// Subresources such as images may still be loading when it returns.
func (b *Browser) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := b.run(ctx, timeout, navigateDOMReady(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// navigateDOMReady navigates and waits for DOMContentLoaded instead of
// the load event chromedp.Navigate waits for.
func navigateDOMReady(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		listenCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		ready := make(chan struct{})
		var once sync.Once
		chromedp.ListenTarget(listenCtx, func(ev any) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				once.Do(func() { close(ready) })
			}
		})

		_, loaderID, errorText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errorText != "" {
			return fmt.Errorf("%w: %s", ErrNavigation, errorText)
		}
		// Same-document navigations have no loader and fire no DOM event.
		if loaderID == "" {
			return nil
		}

		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// WaitVisible waits until the first element matching selector is visible.
func (b *Browser) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := b.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

// Settle pauses for d. It returns early with ctx.Err() when ctx is cancelled.
func (b *Browser) Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Title returns the document title, which may be empty.
func (b *Browser) Title(ctx context.Context) (string, error) {
	var title string
	if err := b.run(ctx, 0, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

// Location returns the address of the current document.
func (b *Browser) Location(ctx context.Context) (string, error) {
	var location string
	if err := b.run(ctx, 0, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

// DocumentHTML returns the serialized rendered document.
func (b *Browser) DocumentHTML(ctx context.Context) (string, error) {
	html, found, err := b.OuterHTML(ctx, "html")
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if !found {
		return "", fmt.Errorf("read document: %w: %q", ErrElementNotFound, "html")
	}
	return html, nil
}

// OuterHTML returns the markup of the first element matching selector.
// found is false, with no error, when nothing matches.
func (b *Browser) OuterHTML(ctx context.Context, selector string) (html string, found bool, err error) {
	var nodes []*cdp.Node
	if err := b.run(ctx, 0, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return "", false, fmt.Errorf("query %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return "", false, nil
	}
	if err := b.run(ctx, 0, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", false, fmt.Errorf("read %q: %w", selector, err)
	}
	return html, true, nil
}

// InnerHTML returns the inner markup of the first element matching selector.
// It fails with ErrElementNotFound instead of waiting for the element.
func (b *Browser) InnerHTML(ctx context.Context, selector string) (string, error) {
	var nodes []*cdp.Node
	if err := b.run(ctx, 0, chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
		return "", fmt.Errorf("query %q: %w", selector, err)
	}
	if len(nodes) == 0 {
		return "", fmt.Errorf("%w: %q", ErrElementNotFound, selector)
	}

	var html string
	if err := b.run(ctx, 0, chromedp.InnerHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read %q: %w", selector, err)
	}
	return html, nil
}

// SetExtraHeaders replaces the headers sent with every request.
// A nil or empty map clears them.
func (b *Browser) SetExtraHeaders(ctx context.Context, headers map[string]string) error {
	if err := b.run(ctx, 0, setHeaders(headers)); err != nil {
		return fmt.Errorf("set headers: %w", err)
	}
	b.headers = maps.Clone(headers)
	return nil
}

func setHeaders(headers map[string]string) chromedp.Action {
	h := make(network.Headers, len(headers))
	for k, v := range headers {
		h[k] = v
	}
	return network.SetExtraHTTPHeaders(h)
}
