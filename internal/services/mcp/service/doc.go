// Package service runs the content MCP server over stdio.
package service
