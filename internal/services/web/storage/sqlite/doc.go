// Package sqlite provides the page view persistence adapter backed by SQLite.
package sqlite
