package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/docscrape/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteDiscovery outputs the discovery run in JSON format.
func (w *JSONWriter) WriteDiscovery(result *model.DiscoveryResult) (int, error) {
	return w.writeJSON(result)
}

// WriteBatch outputs the batch in JSON format.
func (w *JSONWriter) WriteBatch(summary *model.BatchSummary) (int, error) {
	return w.writeJSON(summary)
}

// WriteComparison outputs the comparison in JSON format.
func (w *JSONWriter) WriteComparison(comparison *model.LinkComparison) (int, error) {
	return w.writeJSON(comparison)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a result with the version that produced it.
type JSONReport struct {
	// Version is the docscrape version that generated this report.
	Version string `json:"version"`

	// Kind is "discovery", "batch" or "comparison".
	Kind string `json:"kind"`

	// Report is the wrapped result.
	Report any `json:"report"`
}

// FullJSONWriter outputs results inside a JSONReport wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the docscrape version string.
	version string
}

// NewFullJSONWriter creates a writer for wrapped results.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// WriteDiscovery outputs the discovery run wrapped with metadata.
func (w *FullJSONWriter) WriteDiscovery(result *model.DiscoveryResult) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Kind: "discovery", Report: result})
}

// WriteBatch outputs the batch wrapped with metadata.
func (w *FullJSONWriter) WriteBatch(summary *model.BatchSummary) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Kind: "batch", Report: summary})
}

// WriteComparison outputs the comparison wrapped with metadata.
func (w *FullJSONWriter) WriteComparison(comparison *model.LinkComparison) (int, error) {
	return w.writeJSON(&JSONReport{Version: w.version, Kind: "comparison", Report: comparison})
}
