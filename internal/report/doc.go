// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown documents for sharing run results
//
// Every writer renders the three kinds of results docscrape produces:
// a link discovery run, a conversion batch and a comparison of two
// discovery runs.
package report
