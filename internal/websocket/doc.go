// Package websocket implements the live filter channel. A presenter opens one
// session per browser tab, sends a filter request whenever a control changes,
// and receives the recomputed dashboard as a dashboard:update message.
//
// Each session evaluates its requests sequentially against the read-only
// datasets, so replies arrive in request order and sessions never observe
// each other's filters.
package websocket
