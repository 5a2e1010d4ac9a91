// Package content loads content documents from a source directory into an
// immutable route-keyed catalog and serves lookups from it.
//
// Documents carry inline metadata markers, one per line, of the shape
//
//	<span id="x-title">Getting started</span>
//	<span id="x-rel">/docs/start</span>
//
// Marker lines are stripped; every other line becomes the page body. A
// document without an x-rel marker has no route and is left out of the
// catalog.
//
// The Store publishes catalogs through a single atomic pointer. A rebuild
// constructs a brand-new catalog and swaps it in only once complete, so
// concurrent lookups observe either the previous catalog or the new one, never
// a partial mix.
package content
