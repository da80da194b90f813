// Package output writes what docscrape produces to the filesystem: Markdown
// pages under names derived from their titles, and the sorted links file.
//
// Page files are never overwritten. A name that is taken gets a numeric
// suffix ("page.md", "page-1.md", "page-2.md", ...), and the file is created
// exclusively so two writers racing for the same name cannot clobber each other.
package output
