package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/docscrape/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether empty sections are shown.
	showEmpty bool

	// verbose adds per-page details.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteDiscovery outputs a discovery run in human-readable format.
func (w *SimpleWriter) WriteDiscovery(result *model.DiscoveryResult) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "LINK DISCOVERY REPORT")

	fmt.Fprintf(&sb, "Start URL:   %s\n", result.StartURL)
	fmt.Fprintf(&sb, "Scope:       %s%s\n", result.OriginHost, result.Prefix)
	fmt.Fprintf(&sb, "Started:     %s\n", result.StartedAt.Format(timeFormat))
	fmt.Fprintf(&sb, "Duration:    %s\n", result.Duration().Round(time.Millisecond))
	fmt.Fprintf(&sb, "Pages:       %d visited, %d failed\n", result.VisitedCount(), result.FailedCount())
	fmt.Fprintf(&sb, "Links:       %d\n", len(result.Links))
	sb.WriteString("\n")

	if w.verbose || result.FailedCount() > 0 || w.showEmpty {
		writeSection(&sb, "VISITS")
		if len(result.Visits) == 0 {
			sb.WriteString("  No pages visited\n")
		}
		for _, v := range result.Visits {
			if v.State != model.VisitFailed && !w.verbose {
				continue
			}
			fmt.Fprintf(&sb, "  [%s] %s", v.State, v.URL)
			if v.State == model.VisitFailed {
				fmt.Fprintf(&sb, " (%s)", v.Error)
			} else {
				fmt.Fprintf(&sb, " (%d links)", v.LinksFound)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(result.Links) > 0 || w.showEmpty {
		writeSection(&sb, "DISCOVERED LINKS")
		if len(result.Links) == 0 {
			sb.WriteString("  No links discovered\n")
		}
		for _, link := range result.Links {
			fmt.Fprintf(&sb, "  %s\n", link)
		}
		sb.WriteString("\n")
	}

	writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs a conversion batch in human-readable format.
func (w *SimpleWriter) WriteBatch(summary *model.BatchSummary) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "CONVERSION REPORT")

	fmt.Fprintf(&sb, "Started:     %s\n", summary.StartedAt.Format(timeFormat))
	fmt.Fprintf(&sb, "Duration:    %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&sb, "Total:       %d\n", summary.Total)
	fmt.Fprintf(&sb, "OK:          %d\n", summary.OK)
	fmt.Fprintf(&sb, "Failed:      %d\n", summary.Failed)
	sb.WriteString("\n")

	if len(summary.Items) > 0 || w.showEmpty {
		writeSection(&sb, "PAGES")
		if len(summary.Items) == 0 {
			sb.WriteString("  No pages processed\n")
		}
		for _, item := range summary.Items {
			if item.OK() {
				fmt.Fprintf(&sb, "  [OK]   %s\n", item.Page.URL)
				fmt.Fprintf(&sb, "         Saved: %s\n", item.Page.Path)
				if w.verbose {
					fmt.Fprintf(&sb, "         Title: %s\n", titleOrPlaceholder(item.Page.Title))
					fmt.Fprintf(&sb, "         SHA-256: %s\n", item.Page.Hash)
				}
			} else {
				fmt.Fprintf(&sb, "  [FAIL] %s\n", item.Page.URL)
				fmt.Fprintf(&sb, "         Error: %s\n", item.Error)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(summary.String())
	sb.WriteString("\n\n")

	writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

// WriteComparison outputs a run comparison in human-readable format.
func (w *SimpleWriter) WriteComparison(c *model.LinkComparison) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "DISCOVERY COMPARISON")

	fmt.Fprintf(&sb, "Start URL:   %s\n", c.StartURL)
	fmt.Fprintf(&sb, "Previous:    #%d  %s  (%d links)\n",
		c.PreviousRun.ID, c.PreviousRun.Timestamp.Format(timeFormat), c.PreviousRun.LinkCount)
	fmt.Fprintf(&sb, "Current:     #%d  %s  (%d links)\n",
		c.CurrentRun.ID, c.CurrentRun.Timestamp.Format(timeFormat), c.CurrentRun.LinkCount)
	fmt.Fprintf(&sb, "Unchanged:   %d\n", c.UnchangedCount)
	sb.WriteString("\n")

	if !c.HasChanges() {
		sb.WriteString("No changes between the two runs.\n\n")
	}

	writeLinkList(&sb, "ADDED", "+", c.Added, w.showEmpty)
	writeLinkList(&sb, "REMOVED", "-", c.Removed, w.showEmpty)

	writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

func writeLinkList(sb *strings.Builder, title, marker string, links []string, showEmpty bool) {
	if len(links) == 0 && !showEmpty {
		return
	}
	writeSection(sb, fmt.Sprintf("%s (%d)", title, len(links)))
	if len(links) == 0 {
		sb.WriteString("  None\n")
	}
	for _, link := range links {
		fmt.Fprintf(sb, "  [%s] %s\n", marker, link)
	}
	sb.WriteString("\n")
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := max((ruleWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by docscrape\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func titleOrPlaceholder(title string) string {
	if title == "" {
		return "(no title)"
	}
	return title
}
