// Package service runs the MCP server over stdio.
//
// It dials the board, waits for it to report healthy and registers the
// handlers from the domain package.
package service
