// Package timeouts defines the timeouts shared by board servers and clients.
package timeouts

import "time"

// GRPCDial caps the wait for a board gRPC peer to become healthy.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single control call from the MCP bridge.
const GRPCRequest = 2 * time.Second

// ReadHeader limits how long the web view waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests on exit.
const Shutdown = 5 * time.Second
