// Package migrations embeds the SQL schema files so the binary can apply
// them without access to the source tree at runtime.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
