// Package storage declares persistence interfaces for web-owned analytics data.
//
// Page content is never persisted here; it always comes from the content
// catalog.
package storage
