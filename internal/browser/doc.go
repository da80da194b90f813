// Package browser drives a single Chrome tab through the DevTools protocol.
//
// A Browser owns one Chrome process and one tab. Start launches them and
// Stop releases them; callers defer Stop right after a successful Start so
// the process never outlives the run. Every operation is bounded by a
// timeout and by the caller's context.
//
// Requests for configured resource types (images, media, fonts by default
// during discovery) are failed in the browser before they hit the network,
// and per-site headers such as cookies are attached to every request.
//
// # Usage
//
//	b := browser.New(browser.WithUserAgent(ua), browser.WithBlockedResources([]string{"image"}))
//	if err := b.Start(ctx); err != nil {
//	    return err
//	}
//	defer b.Stop()
//	err := b.Navigate(ctx, "https://docs.example.com/docs/", 45*time.Second)
package browser
