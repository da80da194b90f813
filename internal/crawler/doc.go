// Package crawler discovers documentation links by walking pages in a browser.
//
// # Components
//
//   - NormalizeURL: strips fragments from absolute addresses
//   - IsAllowed: the exact-host plus path-prefix allow-list
//   - Frontier: the queue, seen and discovered sets of one traversal
//   - Parser: extracts anchor targets from the navigation region of a page
//   - Spider: the breadth-first traversal driving a Page
//
// # Traversal
//
// The Spider visits pages in FIFO order. Each visit navigates, waits a fixed
// settle delay for client-side rendering, reads the rendered document and
// collects the links inside the first element matching the navigation
// selector. Allowed links are added to the discovered set. By default only
// the start page is visited; WithFollowLinks enqueues every newly seen link
// so the whole prefix is walked.
//
// # Usage
//
//	spider := crawler.NewSpider(browserPage,
//	    crawler.WithNavTimeout(45*time.Second),
//	    crawler.WithFollowLinks(true),
//	)
//	result, err := spider.Discover(ctx, "https://docs.example.com/docs/", "/docs")
package crawler
