// Package domain translates MCP tool calls into board control requests.
//
// Each tool forwards to the board gRPC service and returns a structured result
// MCP clients can render. Rejected inputs surface the board's localized message.
package domain
