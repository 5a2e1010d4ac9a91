// Package domain defines the MCP tools that expose the content catalog.
//
// Handlers depend only on a PageSource so they can be exercised without a
// running MCP session.
package domain
