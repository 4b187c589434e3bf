// Package migrations embeds the schema migrations so the server binary
// carries its own schema and does not depend on the working directory.
package migrations

import "embed"

// FS holds the numbered up/down SQL pairs at its root.
//
//go:embed *.sql
var FS embed.FS
