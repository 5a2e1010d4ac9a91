// Package navigator keeps a client view in step with in-place navigation.
//
// Every navigation takes the next value of a per-Synchronizer counter and
// fetches its page asynchronously. When a response arrives it is applied
// only if its id still equals the counter, so a slow response for an
// earlier navigation can never overwrite a later one. Taking an id and
// applying a response exclude each other, so once a later navigation has
// begun no earlier response can still be applied. Initializers run after the
// view update, outside that exclusion, and may start navigations of their own.
package navigator
