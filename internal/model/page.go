package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// PageRecord carries one address through the conversion pipeline.
// Each step fills in the fields it produces; later steps read them.
type PageRecord struct {
	// URL is the address being converted.
	URL string `json:"url"`

	// Title is the document title. It may be empty.
	Title string `json:"title"`

	// HTML is the inner markup of the content container.
	HTML string `json:"-"`

	// Markdown is the converted text, ending with exactly one newline.
	Markdown string `json:"-"`

	// BaseName is the filesystem-safe name derived from Title.
	BaseName string `json:"base_name,omitempty"`

	// Path is the file the Markdown was written to.
	Path string `json:"path,omitempty"`

	// Hash is the SHA-256 hash of Markdown, hex encoded.
	Hash string `json:"hash,omitempty"`

	// Bytes is the size of the written file.
	Bytes int `json:"bytes,omitempty"`

	// Steps lists the pipeline steps that completed, in order.
	Steps []string `json:"steps,omitempty"`
}

// NewPageRecord creates a record for url.
func NewPageRecord(url string) *PageRecord {
	return &PageRecord{URL: url}
}

// ComputeHash sets Hash from the current Markdown text.
func (p *PageRecord) ComputeHash() {
	sum := sha256.Sum256([]byte(p.Markdown))
	p.Hash = hex.EncodeToString(sum[:])
}
