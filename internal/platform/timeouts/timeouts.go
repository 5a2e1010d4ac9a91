// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ContentFetch caps a single navigator content request.
const ContentFetch = 10 * time.Second

// Analytics caps a fire-and-forget page view report.
const Analytics = 2 * time.Second
