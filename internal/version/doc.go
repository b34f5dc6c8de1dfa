// Package version exposes build metadata shared by the zone controller and
// its command line tools.
//
// Version, Commit and BuildTime are injected via ldflags. Full is printed by
// the version subcommand, UserAgent is sent to the sensor hub.
package version
