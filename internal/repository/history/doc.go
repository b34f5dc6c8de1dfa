// Package history records zone output transitions in SQLite.
//
// Every event the controller publishes becomes one row of zone_events; the
// REST surface reads the newest rows back.
package history
