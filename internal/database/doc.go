// Package database provides SQLite-based history storage for docscrape.
//
// The HistoryDB stores:
//   - Discovery runs with their discovered link sets, so runs of the same
//     start address can be compared later
//   - Conversion results (address, title, written file, content hash)
//
// SQLite is used through modernc.org/sqlite, a CGO-free driver, so the
// history is a single file in the XDG data directory.
package database
