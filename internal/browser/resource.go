package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
)

// resourceTypes maps the lower-case names accepted on the command line to
// DevTools resource types.
var resourceTypes = map[string]network.ResourceType{
	"document":    network.ResourceTypeDocument,
	"stylesheet":  network.ResourceTypeStylesheet,
	"image":       network.ResourceTypeImage,
	"media":       network.ResourceTypeMedia,
	"font":        network.ResourceTypeFont,
	"script":      network.ResourceTypeScript,
	"texttrack":   network.ResourceTypeTextTrack,
	"xhr":         network.ResourceTypeXHR,
	"fetch":       network.ResourceTypeFetch,
	"eventsource": network.ResourceTypeEventSource,
	"websocket":   network.ResourceTypeWebSocket,
	"manifest":    network.ResourceTypeManifest,
	"ping":        network.ResourceTypePing,
	"other":       network.ResourceTypeOther,
}

// ParseResourceTypes converts resource type names such as "image" or
// "Font" to DevTools resource types. Duplicates are dropped.
func ParseResourceTypes(names []string) ([]network.ResourceType, error) {
	types := make([]network.ResourceType, 0, len(names))
	seen := make(map[network.ResourceType]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		rt, ok := resourceTypes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownResourceType, name)
		}
		if seen[rt] {
			continue
		}
		seen[rt] = true
		types = append(types, rt)
	}
	return types, nil
}

// blockPatterns returns one interception pattern per blocked type.
func blockPatterns(types []network.ResourceType) []*fetch.RequestPattern {
	patterns := make([]*fetch.RequestPattern, 0, len(types))
	for _, rt := range types {
		patterns = append(patterns, &fetch.RequestPattern{
			URLPattern:   "*",
			ResourceType: rt,
		})
	}
	return patterns
}
