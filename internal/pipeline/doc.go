// Package pipeline converts documentation pages to Markdown files.
//
// Each address runs through a Pipeline of Steps sharing one
// model.PageRecord: navigate, wait for the content container, settle,
// read the title, extract the content markup, convert it, derive a file
// name and write the file. The first failing step ends the pipeline for
// that address.
//
// BatchRunner processes a list of addresses strictly in order on a single
// browser tab. A failed address is counted and the batch moves on.
package pipeline
