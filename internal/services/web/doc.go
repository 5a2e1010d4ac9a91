// Package web serves the content site: full page shells for first loads,
// HTMX fragments for in-place swaps, and the JSON endpoints the navigation
// client talks to.
package web
