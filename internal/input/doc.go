// Package input reads the addresses the converter should process.
package input
