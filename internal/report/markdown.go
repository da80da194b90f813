package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteDiscovery outputs a discovery run in Markdown format.
func (w *MarkdownWriter) WriteDiscovery(result *model.DiscoveryResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Link Discovery Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", code(result.StartURL)},
			{"Host", code(result.OriginHost)},
			{"Prefix", code(result.Prefix)},
			{"Started", result.StartedAt.Format(timeFormat)},
			{"Duration", result.Duration().Round(time.Millisecond).String()},
			{"Pages Visited", strconv.Itoa(result.VisitedCount())},
			{"Pages Failed", strconv.Itoa(result.FailedCount())},
			{"Links Discovered", strconv.Itoa(len(result.Links))},
		},
	})
	md.PlainText("")

	switch {
	case result.VisitedCount() == 0 && result.FailedCount() > 0:
		md.Cautionf("No page could be loaded. %d page(s) failed.", result.FailedCount())
	case result.FailedCount() > 0:
		md.Warningf("%d page(s) failed to load; the link set may be incomplete.", result.FailedCount())
	case len(result.Links) == 0:
		md.Importantf("No links were found under %s on %s.", result.Prefix, result.OriginHost)
	default:
		md.Tip("All pages loaded.")
	}
	md.PlainText("")

	md.H2("Visits")
	md.PlainText("")
	if len(result.Visits) == 0 {
		md.PlainText("No pages visited.")
	} else {
		rows := make([][]string, len(result.Visits))
		for i, v := range result.Visits {
			detail := strconv.Itoa(v.LinksFound)
			if v.State == model.VisitFailed {
				detail = "-"
			}
			rows[i] = []string{strconv.Itoa(i + 1), code(v.URL), stateText(v.State), detail, dash(truncateString(v.Error, 60))}
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "URL", "State", "Links", "Error"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	md.H2("Discovered Links")
	md.PlainText("")
	if len(result.Links) == 0 {
		md.PlainText("No links discovered.")
	} else {
		md.BulletList(codeAll(result.Links)...)
	}
	md.PlainText("")

	writeMarkdownFooter(md)
	return len(md.String()), md.Build()
}

// WriteBatch outputs a conversion batch in Markdown format.
func (w *MarkdownWriter) WriteBatch(summary *model.BatchSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Conversion Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", summary.StartedAt.Format(timeFormat)},
			{"Duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String()},
			{"Total", strconv.Itoa(summary.Total)},
			{"✅ OK", strconv.Itoa(summary.OK)},
			{"❌ Failed", strconv.Itoa(summary.Failed)},
		},
	})
	md.PlainText("")

	if summary.OK > 0 && summary.Failed > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Conversion Results"),
			piechart.WithShowData(true),
		)
		chart.LabelAndIntValue("OK", uint64(summary.OK))
		chart.LabelAndIntValue("Failed", uint64(summary.Failed))

		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case summary.Total > 0 && summary.OK == 0:
		md.Cautionf("All %d page(s) failed.", summary.Failed)
	case summary.Failed > 0:
		md.Warningf("%d of %d page(s) failed.", summary.Failed, summary.Total)
	case summary.Total == 0:
		md.Note("Nothing to convert.")
	default:
		md.Tip("All pages converted.")
	}
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	if len(summary.Items) == 0 {
		md.PlainText("No pages processed.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(summary.Items))
		for i, item := range summary.Items {
			status := "✅"
			file := code(item.Page.Path)
			if !item.OK() {
				status = "❌"
				file = "-"
			}
			rows[i] = []string{
				strconv.Itoa(item.Index),
				status,
				code(item.Page.URL),
				escapeCell(titleOrPlaceholder(item.Page.Title)),
				file,
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Status", "URL", "Title", "File"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, item := range summary.Items {
			if !item.OK() {
				md.Details(item.Page.URL, item.Error)
			}
		}
		md.PlainText("")
	}

	writeMarkdownFooter(md)
	return len(md.String()), md.Build()
}

// WriteComparison outputs a run comparison in Markdown format.
func (w *MarkdownWriter) WriteComparison(c *model.LinkComparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Discovery Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Previous", "Current"},
		Rows: [][]string{
			{"Run ID", strconv.FormatInt(c.PreviousRun.ID, 10), strconv.FormatInt(c.CurrentRun.ID, 10)},
			{"Date", c.PreviousRun.Timestamp.Format(timeFormat), c.CurrentRun.Timestamp.Format(timeFormat)},
			{"Links", strconv.Itoa(c.PreviousRun.LinkCount), strconv.Itoa(c.CurrentRun.LinkCount)},
		},
	})
	md.PlainText("")
	md.PlainTextf("Start URL: %s", code(c.StartURL))
	md.PlainText("")

	if !c.HasChanges() {
		md.Tip("No links were added or removed.")
		md.PlainText("")
	} else {
		md.Importantf("%d link(s) added, %d removed, %d unchanged.", len(c.Added), len(c.Removed), c.UnchangedCount)
		md.PlainText("")
	}

	if len(c.Added) > 0 {
		md.H2("Added")
		md.PlainText("")
		md.BulletList(codeAll(c.Added)...)
		md.PlainText("")
	}
	if len(c.Removed) > 0 {
		md.H2("Removed")
		md.PlainText("")
		md.BulletList(codeAll(c.Removed)...)
		md.PlainText("")
	}

	writeMarkdownFooter(md)
	return len(md.String()), md.Build()
}

// writeMarkdownFooter writes the report footer.
func writeMarkdownFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by docscrape*")
}

func stateText(s model.VisitState) string {
	if s == model.VisitFailed {
		return "❌ " + s.String()
	}
	return "✅ " + s.String()
}

func code(s string) string {
	if s == "" {
		return "-"
	}
	return "`" + s + "`"
}

func codeAll(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = code(s)
	}
	return out
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escapeCell keeps pipes in titles from splitting table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
