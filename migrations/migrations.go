// Package migrations embeds the document store schema changes.
//
// Each file holds a JSON array of database commands run in order by the
// golang-migrate mongodb driver.
package migrations

import "embed"

//go:embed *.json
var FS embed.FS
