// Package examples embeds the bundled board scenarios.
package examples

import "embed"

// FS holds the bundled .lua scenarios.
//
//go:embed *.lua
var FS embed.FS
