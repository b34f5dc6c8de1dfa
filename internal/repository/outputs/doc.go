// Package outputs implements the registry of the zone output devices.
//
// The FileRegistry stores the boolean outputs as JSON on disk and exposes a
// Registry interface that the zone controller depends on. Ensure creates the
// devices that do not exist yet, default off.
package outputs
