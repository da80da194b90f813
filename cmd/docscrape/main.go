// Package main provides the entry point for the docscrape CLI.
//
// docscrape turns browser-rendered documentation sites into Markdown.
// It has two tools:
//
//	docscrape discover <start_url> [prefix] [out]   collect documentation links
//	docscrape convert <url_or_file> [output_dir]    save pages as Markdown
//
// See --help for all available options.
package main

// main is the entry point for docscrape.
func main() {
	Execute()
}
