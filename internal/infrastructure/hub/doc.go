// Package hub talks to the home automation hub that owns the sensors.
//
// Client polls the binary sensors through the hub JSON API and issues switch
// commands. Every poll is bounded by the configured timeout; any failure is
// reported as zone.ErrPoll so the caller keeps its previous state.
package hub
