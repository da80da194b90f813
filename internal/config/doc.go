// Package config provides configuration structures and utilities for docscrape.
// It holds the defaults for link discovery and page conversion, loads the
// optional .docscrape YAML file and merges per-site overrides into a run.
package config
