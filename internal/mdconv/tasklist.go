package mdconv

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/net/html"
)

// taskListPlugin renders checkbox inputs as GFM task markers ("[ ]" and "[x]").
// The space after the marker comes from the item text. Other inputs render
// as nothing.
type taskListPlugin struct{}

func (*taskListPlugin) Name() string {
	return "task-list"
}

func (p *taskListPlugin) Init(conv *converter.Converter) error {
	conv.Register.TagType("input", converter.TagTypeInline, converter.PriorityEarly)
	conv.Register.RendererFor("input", converter.TagTypeInline, p.renderInput, converter.PriorityEarly)
	return nil
}

func (*taskListPlugin) renderInput(_ converter.Context, w converter.Writer, n *html.Node) converter.RenderStatus {
	if !strings.EqualFold(attr(n, "type"), "checkbox") {
		return converter.RenderSuccess
	}

	if hasAttr(n, "checked") {
		_, _ = w.WriteString("[x]")
	} else {
		_, _ = w.WriteString("[ ]")
	}
	return converter.RenderSuccess
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
