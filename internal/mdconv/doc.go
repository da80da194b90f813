// Package mdconv converts HTML fragments to GitHub flavored Markdown.
//
// The output uses "-" list bullets, "*" emphasis, "**" strong emphasis and
// "~~~" code fences, renders tables, strikethrough and task lists, and
// always ends with exactly one newline.
package mdconv
