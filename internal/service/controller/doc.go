// Package controller runs one security zone.
//
// A single loop goroutine owns the zone machine: it evaluates the zone on
// every heartbeat and applies manual surveillance commands from a queue, so
// ticks and commands never overlap. Queued commands are drained before each
// tick's delay evaluation. Output changes are written to the output registry
// and fanned out to the configured publishers. Tick failures are logged and
// never stop the loop.
package controller
