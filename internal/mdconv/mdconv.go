package mdconv

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

var (
	// listSeparator is the comment html-to-markdown puts between adjacent lists.
	listSeparator = regexp.MustCompile(`(?m)^<!--THE END-->\n*`)

	// taskMarker matches a task marker at the start of a list item, with
	// whatever spacing separates it from the item text.
	taskMarker = regexp.MustCompile(`(?m)^([ \t]*(?:[-*+]|\d+[.)]) \[[ x]\])[ \t]*(\S)`)
)

// Converter turns the inner markup of a content container into Markdown.
type Converter struct {
	conv *converter.Converter

	// absoluteLinks resolves relative link and image targets against the page URL.
	absoluteLinks bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithAbsoluteLinks rewrites relative links and images to absolute
// addresses based on the page URL passed to Convert.
func WithAbsoluteLinks(absolute bool) Option {
	return func(c *Converter) {
		c.absoluteLinks = absolute
	}
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithBulletListMarker("-"),
					commonmark.WithEmDelimiter("*"),
					commonmark.WithStrongDelimiter("**"),
					commonmark.WithCodeBlockFence("~~~"),
				),
				table.NewTablePlugin(),
				strikethrough.NewStrikethroughPlugin(),
				&taskListPlugin{},
			),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert converts an HTML fragment to Markdown. pageURL is only used
// when absolute links are enabled. The result is trimmed and terminated
// by a single newline, so an empty fragment yields "\n".
func (c *Converter) Convert(fragment, pageURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if c.absoluteLinks && pageURL != "" {
		opts = append(opts, converter.WithDomain(pageURL))
	}

	md, err := c.conv.ConvertString(fragment, opts...)
	if err != nil {
		return "", fmt.Errorf("convert HTML to Markdown: %w", err)
	}
	md = listSeparator.ReplaceAllString(md, "")
	md = taskMarker.ReplaceAllString(md, "$1 $2")
	return strings.TrimSpace(md) + "\n", nil
}
