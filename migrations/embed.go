// Package migrations embeds the SQL schema migrations for the checkout
// service's primary store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
