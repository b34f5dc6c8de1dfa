// Package rest exposes the zone over HTTP with JSON payloads.
//
// It serves the health probe, the zone snapshot, the surveillance command and
// the transition history. Requests are logged through the application logger.
package rest
